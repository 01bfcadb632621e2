package leaderboardservice

import (
	"bytes"
	"fmt"
	"sort"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used when rendering leaderboard charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	TextColor  drawing.Color
}

// DefaultChartPalette is a dark theme that reads well in Discord embeds.
func DefaultChartPalette() ChartPalette {
	return ChartPalette{
		Background: drawing.Color{R: 0x0f, G: 0x0f, B: 0x23, A: 0xff},
		Bar:        drawing.Color{R: 0xff, G: 0xff, B: 0x66, A: 0xff},
		TextColor:  drawing.Color{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
	}
}

// maxChartMembers caps the bar count so labels stay legible at 800px wide.
const maxChartMembers = 15

// GenerateStarChart produces a PNG bar chart of star counts per member,
// highest first.
func GenerateStarChart(snapshot leaderboarddomain.Snapshot, palette ChartPalette) ([]byte, error) {
	type entry struct {
		name  string
		stars int
	}

	entries := make([]entry, 0, len(snapshot.Members))
	for memberID, member := range snapshot.Members {
		stars := 0
		for _, day := range member.Days {
			stars += day.Stars()
		}
		if stars == 0 {
			continue
		}
		entries = append(entries, entry{name: snapshot.MemberName(memberID), stars: stars})
	}
	if len(entries) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].stars != entries[j].stars {
			return entries[i].stars > entries[j].stars
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > maxChartMembers {
		entries = entries[:maxChartMembers]
	}

	bars := make([]chart.Value, len(entries))
	for i, e := range entries {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%s (%d)", e.name, e.stars),
			Value: float64(e.stars),
			Style: chart.Style{
				FillColor:   palette.Bar,
				StrokeColor: palette.Bar,
			},
		}
	}

	graph := chart.BarChart{
		Title:  "Stars",
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		BarWidth: 40,
		Bars:     bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No stars collected yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
