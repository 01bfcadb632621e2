package leaderboardservice

import (
	"bytes"
	"fmt"
	"sort"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Leaderboard"

// ExportSnapshotXLSX renders a snapshot as a spreadsheet: one row per member,
// one column per day. Cells hold "**" for both parts, "*" for part one only.
// Members are ordered by star count, ties broken by name.
func ExportSnapshotXLSX(snapshot leaderboarddomain.Snapshot, totalDays int) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []interface{}{"Member", "Stars"}
	for day := 1; day <= totalDays; day++ {
		header = append(header, fmt.Sprintf("Day %d", day))
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	type entry struct {
		id    leaderboarddomain.MemberID
		name  string
		stars int
	}
	entries := make([]entry, 0, len(snapshot.Members))
	for memberID, member := range snapshot.Members {
		stars := 0
		for _, day := range member.Days {
			stars += day.Stars()
		}
		entries = append(entries, entry{id: memberID, name: snapshot.MemberName(memberID), stars: stars})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].stars != entries[j].stars {
			return entries[i].stars > entries[j].stars
		}
		return entries[i].name < entries[j].name
	})

	for i, e := range entries {
		member := snapshot.Members[e.id]
		row := []interface{}{e.name, e.stars}
		for day := 1; day <= totalDays; day++ {
			progress := member.Days[day]
			switch progress.Stars() {
			case 2:
				row = append(row, "**")
			case 1:
				row = append(row, "*")
			default:
				row = append(row, "")
			}
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buffer := bytes.NewBuffer(nil)
	if err := f.Write(buffer); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buffer.Bytes(), nil
}
