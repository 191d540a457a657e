package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventvote/internal/config"
	"eventvote/internal/container"
	"eventvote/internal/domain"
	"eventvote/internal/repository"
	"eventvote/pkg/errors"
	"eventvote/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router    *chi.Mux
	container *container.Container
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		AllowedOrigins:   []string{"*"},
		Environment:      "test",
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		AdminPassword:    "admin-pass",
		VotingClearDelay: time.Minute,
		VoteLockTTL:      time.Second,
	}
	repos, _ := repository.NewMemoryRepositories()
	c := container.NewWithRepositories(cfg, logger.NewNop(), repos, nil)
	t.Cleanup(func() { _ = c.Close() })

	live := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	return &testServer{router: NewRouter(c, live), container: c}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, name string) domain.AuthResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Name:               name,
		Members:            "Ann\nBob",
		ProjectDescription: name + " project",
		Email:              name + "@example.com",
		Password:           "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp domain.AuthResponse
	decode(t, rec, &resp)
	return resp
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/admin/login", "", domain.LoginRequest{Password: "admin-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp domain.AuthResponse
	decode(t, rec, &resp)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var body errors.ErrorResponse
	decode(t, rec, &body)
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "memory", resp.Store)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "alpha")
	assert.NotEmpty(t, reg.Token)
	require.NotNil(t, reg.Team)
	assert.Equal(t, "alpha@example.com", reg.Team.Email)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Name: "Other", Members: "C", ProjectDescription: "P", Email: "ALPHA@example.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errors.ErrorTypeConflict, errorBody(t, rec).Error.Type)

	rec = s.do(t, http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Name: "Weak", Members: "C", ProjectDescription: "P", Email: "weak@example.com", Password: "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: "alpha@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: "alpha@example.com", Password: "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/me", reg.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var me domain.Team
	decode(t, rec, &me)
	assert.Equal(t, reg.Team.ID, me.ID)
}

func TestUnknownFieldsRejected(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@example.com", "pasword": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrorTypeValidation, errorBody(t, rec).Error.Type)
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)
	team := s.register(t, "alpha")

	rec := s.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/leaderboard", team.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/login", "", domain.LoginRequest{Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVotingFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)
	a := s.register(t, "alpha")
	b := s.register(t, "bravo")

	// Nothing on stage
	rec := s.do(t, http.MethodPost, "/api/voting/vote", b.Token, domain.VoteRequest{Rating: 4})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "voting_closed", errorBody(t, rec).Error.Details["reason"])

	rec = s.do(t, http.MethodPost, "/api/admin/voting/start", admin, domain.StartVotingRequest{TeamID: a.Team.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/voting/state", "", nil)
	var state VotingStateResponse
	decode(t, rec, &state)
	assert.Equal(t, domain.PhasePresenting, state.Phase)
	require.NotNil(t, state.PresentingTeam)
	assert.Equal(t, "alpha", state.PresentingTeam.Name)

	rec = s.do(t, http.MethodPost, "/api/voting/vote", b.Token, domain.VoteRequest{Rating: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/voting/vote", b.Token, domain.VoteRequest{Rating: 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/voting/vote", b.Token, domain.VoteRequest{Rating: 5})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_voted", errorBody(t, rec).Error.Details["reason"])

	rec = s.do(t, http.MethodPost, "/api/voting/vote", a.Token, domain.VoteRequest{Rating: 5})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "self_vote", errorBody(t, rec).Error.Details["reason"])

	rec = s.do(t, http.MethodGet, "/api/voting/eligibility/"+a.Team.ID, b.Token, nil)
	var eligibility domain.Eligibility
	decode(t, rec, &eligibility)
	assert.True(t, eligibility.HasVoted)
	assert.False(t, eligibility.CanVote)

	rec = s.do(t, http.MethodGet, "/api/voting/eligibility/missing", b.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/teams/"+a.Team.ID+"/votes", "", nil)
	var votes []domain.Vote
	decode(t, rec, &votes)
	require.Len(t, votes, 1)
	assert.Equal(t, b.Team.ID, votes[0].VoterTeamID)

	rec = s.do(t, http.MethodGet, "/api/teams/"+a.Team.ID, "", nil)
	var stats domain.TeamStats
	decode(t, rec, &stats)
	assert.Equal(t, 4.0, stats.AverageRating)
	assert.Equal(t, 1, stats.VoteCount)

	rec = s.do(t, http.MethodPost, "/api/admin/voting/end", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	c := s.register(t, "charlie")
	rec = s.do(t, http.MethodPost, "/api/voting/vote", c.Token, domain.VoteRequest{Rating: 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "voting_closed", errorBody(t, rec).Error.Details["reason"])

	rec = s.do(t, http.MethodPost, "/api/admin/voting/reset", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/voting/state", "", nil)
	decode(t, rec, &state)
	assert.Equal(t, domain.PhaseIdle, state.Phase)
}

func TestLeaderboardVisibility(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)
	s.register(t, "alpha")

	rec := s.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board domain.Leaderboard
	decode(t, rec, &board)
	assert.True(t, board.Visible)
	assert.Len(t, board.Entries, 1)

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	s.router.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/leaderboard-visibility", admin, domain.VisibilityRequest{IsVisible: false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	decode(t, rec, &board)
	assert.False(t, board.Visible)
	assert.Empty(t, board.Entries)

	rec = s.do(t, http.MethodGet, "/api/admin/leaderboard", admin, nil)
	decode(t, rec, &board)
	assert.False(t, board.Visible)
	assert.Len(t, board.Entries, 1)
}

func TestAdminEdits(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)
	a := s.register(t, "alpha")
	b := s.register(t, "bravo")

	rec := s.do(t, http.MethodPost, "/api/admin/voting/start", admin, domain.StartVotingRequest{TeamID: a.Team.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/voting/vote", b.Token, domain.VoteRequest{Rating: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	var submitted domain.VoteResponse
	decode(t, rec, &submitted)

	rec = s.do(t, http.MethodPut, "/api/admin/votes/"+submitted.Vote.ID, admin, domain.RatingUpdate{Rating: 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/admin/votes/"+submitted.Vote.ID, admin, domain.RatingUpdate{Rating: 5})
	require.Equal(t, http.StatusOK, rec.Code)

	name := "Alpha Prime"
	rec = s.do(t, http.MethodPut, "/api/admin/teams/"+a.Team.ID, admin, domain.TeamUpdate{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Team
	decode(t, rec, &updated)
	assert.Equal(t, "Alpha Prime", updated.Name)

	rec = s.do(t, http.MethodDelete, "/api/admin/teams/"+a.Team.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]interface{}
	decode(t, rec, &result)
	assert.Equal(t, float64(1), result["votes_removed"])

	rec = s.do(t, http.MethodGet, "/api/teams/"+a.Team.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/admin/votes/"+submitted.Vote.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "vote went with the team")

	// The deleted team's account is gone as well
	rec = s.do(t, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Email: "alpha@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSelfEdit(t *testing.T) {
	s := newTestServer(t)
	a := s.register(t, "alpha")

	members := "Ann\nBob\nCid"
	rec := s.do(t, http.MethodPut, "/api/me", a.Token, domain.TeamUpdate{Members: &members})
	require.Equal(t, http.StatusOK, rec.Code)
	var team domain.Team
	decode(t, rec, &team)
	assert.Equal(t, []string{"Ann", "Bob", "Cid"}, team.MemberList())

	blank := "   "
	rec = s.do(t, http.MethodPut, "/api/me", a.Token, domain.TeamUpdate{Name: &blank})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetVotingState(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	rec := s.do(t, http.MethodPost, "/api/admin/voting-state/init", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/admin/voting-state", admin, domain.VotingSession{
		PresentingTeam: &domain.PresentingTeam{ID: "t9", Name: "Nine"},
		IsActive:       true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/voting/state", "", nil)
	var state VotingStateResponse
	decode(t, rec, &state)
	assert.True(t, state.IsActive)
	assert.Equal(t, "Nine", state.PresentingTeam.Name)

	rec = s.do(t, http.MethodPost, "/api/admin/voting/start", admin, domain.StartVotingRequest{TeamID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.ErrorTypeNotFound, errorBody(t, rec).Error.Type)

	rec = s.do(t, http.MethodGet, "/api/live", "", nil)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
