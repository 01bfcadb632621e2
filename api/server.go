// Package api exposes the operational HTTP surface: health, metrics, link
// management, and leaderboard views.
package api

import (
	"log/slog"
	"net/http"

	leaderboardservice "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/application"
	userservice "github.com/Black-And-White-Club/advent-bot/app/modules/user/application"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	leaderboardService leaderboardservice.Service
	userService        userservice.Service
	registry           *prometheus.Registry
	totalDays          int
	logger             *slog.Logger
}

func NewServer(
	leaderboardService leaderboardservice.Service,
	userService userservice.Service,
	registry *prometheus.Registry,
	totalDays int,
	logger *slog.Logger,
) *Server {
	return &Server{
		leaderboardService: leaderboardService,
		userService:        userService,
		registry:           registry,
		totalDays:          totalDays,
		logger:             logger,
	}
}

// Routes builds the chi router for the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Healthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/links", s.CreateLink)
		r.Delete("/links/{discordID}", s.DeleteLink)
		r.Get("/links", s.ListLinks)

		r.Get("/leaderboard", s.GetLeaderboard)
		r.Get("/leaderboard/chart.png", s.GetLeaderboardChart)
		r.Get("/leaderboard/export.xlsx", s.GetLeaderboardExport)
	})

	return r
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
