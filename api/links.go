package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	userdomain "github.com/Black-And-White-Club/advent-bot/app/modules/user/domain"
	"github.com/go-chi/chi/v5"
)

// CreateLinkRequest is the input for linking an AoC account to a Discord user.
type CreateLinkRequest struct {
	AoCID     string `json:"aoc_id"`
	DiscordID string `json:"discord_id"`
}

// CreateLink stores an identity link. Relinking the same Discord user to a
// different AoC account replaces the previous link.
func (s *Server) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	link, err := s.userService.Link(r.Context(), req.AoCID, req.DiscordID)
	if err != nil {
		if errors.Is(err, userdomain.ErrInvalidAoCID) || errors.Is(err, userdomain.ErrInvalidDiscordID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to store link: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(link); err != nil {
		s.logger.Error("Failed to encode link response", "error", err)
	}
}

// DeleteLink removes the link for a Discord user.
func (s *Server) DeleteLink(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")

	if _, err := s.userService.Unlink(r.Context(), discordID); err != nil {
		if errors.Is(err, userdomain.ErrNotLinked) {
			http.Error(w, "link not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to remove link: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLinks returns every stored identity link.
func (s *Server) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.userService.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list links: %v", err), http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []userdomain.Link{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(links); err != nil {
		s.logger.Error("Failed to encode links response", "error", err)
	}
}
