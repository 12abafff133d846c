// Package api — handlers.go contains the request handlers and the JSON
// envelope helpers. Every failure is a recoverable JSON response; sentinel
// errors from internal/common pick the status code.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/verdantedu/greenledger/internal/common"
	"github.com/verdantedu/greenledger/internal/features/credits"
	"github.com/verdantedu/greenledger/internal/features/users"
)

type awardRequest struct {
	UserID       uuid.UUID               `json:"userId"`
	ActivityKind string                  `json:"activityKind"`
	Details      credits.ActivityDetails `json:"details"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps sentinel errors onto HTTP status codes. Anything
// unrecognized is a storage-level failure.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrMissingValue), errors.Is(err, common.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrUserNotFound), errors.Is(err, common.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrAlreadyVerified):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
}

func (s *Server) handleAward(w http.ResponseWriter, r *http.Request) {
	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == uuid.Nil || req.ActivityKind == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "userId and activityKind are required"})
		return
	}

	result, err := s.writer.Award(r.Context(), req.UserID, credits.ActivityKind(req.ActivityKind), req.Details)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	classType := users.ClassType(r.URL.Query().Get("classType"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	board, err := s.rank.Leaderboard(r.Context(), classType, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "leaderboard": board})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userID")
	if !ok {
		return
	}

	stats, err := s.rank.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userID")
	if !ok {
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.history.ListByUser(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entries": entries})
}

func (s *Server) handleStreakCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(w, r, "userID")
	if !ok {
		return
	}

	awarded, err := s.streaks.CheckStreak(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "streakAwarded": awarded})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	entryID, ok := parseUUIDParam(w, r, "entryID")
	if !ok {
		return
	}

	var req struct {
		VerifiedBy uuid.UUID `json:"verifiedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VerifiedBy == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "verifiedBy is required"})
		return
	}

	if err := s.writer.VerifyEntry(r.Context(), entryID, req.VerifiedBy); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string          `json:"email"`
		FirstName string          `json:"firstName"`
		LastName  string          `json:"lastName"`
		ClassType users.ClassType `json:"classType"`
		Role      users.Role      `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Email == "" || req.FirstName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and firstName are required"})
		return
	}

	u := &users.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ClassType: req.ClassType,
		Role:      req.Role,
	}
	if err := s.registry.Register(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": u.ID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: name + " must be a valid uuid"})
		return uuid.Nil, false
	}
	return id, true
}
