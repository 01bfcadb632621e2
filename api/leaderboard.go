package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	leaderboardservice "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/application"
)

// GetLeaderboard returns the persisted snapshot for the active period.
func (s *Server) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.leaderboardService.CurrentSnapshot(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch leaderboard: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Error("Failed to encode leaderboard response", "error", err)
	}
}

// GetLeaderboardChart renders the star-count bar chart as a PNG.
func (s *Server) GetLeaderboardChart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.leaderboardService.CurrentSnapshot(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch leaderboard: %v", err), http.StatusInternalServerError)
		return
	}

	png, err := leaderboardservice.GenerateStarChart(snapshot, leaderboardservice.DefaultChartPalette())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// GetLeaderboardExport returns the snapshot as a spreadsheet.
func (s *Server) GetLeaderboardExport(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.leaderboardService.CurrentSnapshot(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch leaderboard: %v", err), http.StatusInternalServerError)
		return
	}

	data, err := leaderboardservice.ExportSnapshotXLSX(snapshot, s.totalDays)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build export: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "leaderboard-"+snapshot.Period+".xlsx"))
	_, _ = w.Write(data)
}
