package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantedu/greenledger/internal/common"
	"github.com/verdantedu/greenledger/internal/features/credits"
	"github.com/verdantedu/greenledger/internal/features/ranking"
	"github.com/verdantedu/greenledger/internal/features/users"
)

type stubWriter struct {
	result    *credits.AwardResult
	err       error
	verifyErr error

	gotUserID uuid.UUID
	gotKind   credits.ActivityKind
}

func (s *stubWriter) Award(_ context.Context, userID uuid.UUID, kind credits.ActivityKind, _ credits.ActivityDetails) (*credits.AwardResult, error) {
	s.gotUserID = userID
	s.gotKind = kind
	return s.result, s.err
}

func (s *stubWriter) VerifyEntry(_ context.Context, _, _ uuid.UUID) error {
	return s.verifyErr
}

type stubRanking struct {
	board    []*ranking.LeaderboardEntry
	stats    *ranking.UserStats
	err      error
	gotLimit int
	gotClass users.ClassType
}

func (s *stubRanking) Leaderboard(_ context.Context, classType users.ClassType, limit int) ([]*ranking.LeaderboardEntry, error) {
	s.gotClass = classType
	s.gotLimit = limit
	return s.board, s.err
}

func (s *stubRanking) Stats(_ context.Context, _ uuid.UUID) (*ranking.UserStats, error) {
	return s.stats, s.err
}

type stubStreaks struct {
	awarded bool
	err     error
}

func (s *stubStreaks) CheckStreak(_ context.Context, _ uuid.UUID) (bool, error) {
	return s.awarded, s.err
}

type stubHistory struct {
	entries []*credits.CreditEntry
	err     error
}

func (s *stubHistory) ListByUser(_ context.Context, _ uuid.UUID, _ int) ([]*credits.CreditEntry, error) {
	return s.entries, s.err
}

type stubRegistry struct {
	err error
	got *users.User
}

func (s *stubRegistry) Register(_ context.Context, u *users.User) error {
	if s.err != nil {
		return s.err
	}
	u.ID = uuid.New()
	s.got = u
	return nil
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

type serverStubs struct {
	writer   *stubWriter
	rank     *stubRanking
	streaks  *stubStreaks
	history  *stubHistory
	registry *stubRegistry
	pinger   *stubPinger
}

func newTestServer() (*Server, *serverStubs) {
	st := &serverStubs{
		writer:   &stubWriter{},
		rank:     &stubRanking{},
		streaks:  &stubStreaks{},
		history:  &stubHistory{},
		registry: &stubRegistry{},
		pinger:   &stubPinger{},
	}
	return NewServer(st.writer, st.rank, st.streaks, st.history, st.registry, st.pinger), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleAward_Success(t *testing.T) {
	srv, st := newTestServer()
	userID := uuid.New()
	st.writer.result = &credits.AwardResult{
		Success:        true,
		CreditsAwarded: 2,
		Message:        "Awarded 2 credits",
	}

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/credits/award", map[string]any{
		"userId":       userID,
		"activityKind": "energy_saved",
		"details":      map[string]any{"value": 250},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, st.writer.gotUserID)
	assert.Equal(t, credits.ActivityEnergySaved, st.writer.gotKind)

	var resp credits.AwardResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.CreditsAwarded)
}

func TestHandleAward_MissingFields(t *testing.T) {
	srv, _ := newTestServer()

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/credits/award", map[string]any{
		"activityKind": "peer_review",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Router(), http.MethodPost, "/api/credits/award", map[string]any{
		"userId": uuid.New(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAward_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing value", common.ErrMissingValue, http.StatusBadRequest},
		{"unknown user", common.ErrUserNotFound, http.StatusNotFound},
		{"storage failure", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, st := newTestServer()
			st.writer.err = tc.err

			rec := doJSON(t, srv.Router(), http.MethodPost, "/api/credits/award", map[string]any{
				"userId":       uuid.New(),
				"activityKind": "energy_saved",
			})
			assert.Equal(t, tc.want, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleLeaderboard(t *testing.T) {
	srv, st := newTestServer()
	st.rank.board = []*ranking.LeaderboardEntry{
		{ID: uuid.New(), FirstName: "John", LastName: "Green", ClassType: users.ClassEngineering, TotalCredits: 150},
		{ID: uuid.New(), FirstName: "Jane", LastName: "Rivers", ClassType: users.ClassLandUse, TotalCredits: 120},
	}

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/credits/leaderboard?classType=engineering&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.ClassEngineering, st.rank.gotClass)
	assert.Equal(t, 5, st.rank.gotLimit)

	var resp struct {
		Success     bool                        `json:"success"`
		Leaderboard []*ranking.LeaderboardEntry `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Leaderboard, 2)
	assert.Equal(t, "John", resp.Leaderboard[0].FirstName)
}

func TestHandleLeaderboard_BadLimit(t *testing.T) {
	srv, _ := newTestServer()
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/credits/leaderboard?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Router(), http.MethodGet, "/api/credits/leaderboard?limit=-3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	srv, st := newTestServer()
	st.rank.stats = &ranking.UserStats{
		TotalCredits:      55,
		TotalTransactions: 3,
		WeeklyCredits:     10,
		MonthlyCredits:    25,
		Rank:              2,
		AveragePerWeek:    14,
	}

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/credits/users/"+uuid.NewString()+"/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool              `json:"success"`
		Stats   ranking.UserStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 55, resp.Stats.TotalCredits)
	assert.Equal(t, 2, resp.Stats.Rank)
}

func TestHandleStats_BadUUID(t *testing.T) {
	srv, _ := newTestServer()
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/credits/users/not-a-uuid/stats", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStreakCheck(t *testing.T) {
	srv, st := newTestServer()
	st.streaks.awarded = true

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/credits/users/"+uuid.NewString()+"/streak-check", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success       bool `json:"success"`
		StreakAwarded bool `json:"streakAwarded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.StreakAwarded)
}

func TestHandleVerify(t *testing.T) {
	srv, _ := newTestServer()
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/credits/entries/"+uuid.NewString()+"/verify", map[string]any{
		"verifiedBy": uuid.New(),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleVerify_AlreadyVerified(t *testing.T) {
	srv, st := newTestServer()
	st.writer.verifyErr = common.ErrAlreadyVerified

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/credits/entries/"+uuid.NewString()+"/verify", map[string]any{
		"verifiedBy": uuid.New(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleVerify_MissingVerifier(t *testing.T) {
	srv, _ := newTestServer()
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/credits/entries/"+uuid.NewString()+"/verify", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateUser(t *testing.T) {
	srv, st := newTestServer()

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/users", map[string]any{
		"email":     "jane@verdant.edu",
		"firstName": "Jane",
		"lastName":  "Rivers",
		"classType": "land_use",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, st.registry.got)
	assert.Equal(t, "jane@verdant.edu", st.registry.got.Email)
	assert.Equal(t, users.ClassLandUse, st.registry.got.ClassType)

	var resp struct {
		Success bool      `json:"success"`
		ID      uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEqual(t, uuid.Nil, resp.ID)
}

func TestHandleCreateUser_MissingEmail(t *testing.T) {
	srv, _ := newTestServer()
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/users", map[string]any{
		"firstName": "Jane",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv, st := newTestServer()

	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	st.pinger.err = fmt.Errorf("dial tcp: connection refused")
	rec = doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
