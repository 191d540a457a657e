package service

import (
	"context"
	"testing"
	"time"

	"eventvote/internal/domain"
	"eventvote/internal/repository"
	"eventvote/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	repos       *repository.Repositories
	store       *repository.MemoryStore
	notifier    *LocalNotifier
	auth        *AuthService
	teams       *TeamService
	voting      *VotingService
	session     *SessionService
	leaderboard *LeaderboardService
	admin       *AdminService
}

func newTestEnv(t *testing.T, redisClient *redis.Client) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	repos, store := repository.NewMemoryRepositories()
	notifier := NewLocalNotifier(logger)
	auth := NewAuthService("test-secret", time.Hour, "admin-pass", logger)

	env := &testEnv{
		repos:       repos,
		store:       store,
		notifier:    notifier,
		auth:        auth,
		teams:       NewTeamService(repos.Team, repos.Account, auth, notifier, logger),
		voting:      NewVotingService(repos.Team, repos.Vote, repos.Settings, redisClient, notifier, time.Second, logger),
		session:     NewSessionService(repos.Settings, repos.Team, notifier, 50*time.Millisecond, logger),
		leaderboard: NewLeaderboardService(repos.Team, repos.Vote, repos.Settings, notifier, logger),
		admin:       NewAdminService(repos.Team, repos.Vote, repos.Account, notifier, logger),
	}
	t.Cleanup(env.session.Stop)
	return env
}

func (e *testEnv) addTeam(t *testing.T, name string) domain.Team {
	t.Helper()
	team := domain.Team{Name: name, Members: "Ann\nBob", ProjectDescription: name + " project", Email: name + "@example.com"}
	require.NoError(t, e.repos.Team.CreateTeam(context.Background(), &team))
	return team
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
