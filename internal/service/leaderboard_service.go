package service

import (
	"context"
	"fmt"

	"eventvote/internal/domain"
	"eventvote/internal/repository"

	"go.uber.org/zap"
)

// LeaderboardService computes rankings from a fresh snapshot on every call
type LeaderboardService struct {
	teams    repository.TeamRepository
	votes    repository.VoteRepository
	settings repository.SettingsRepository
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(teams repository.TeamRepository, votes repository.VoteRepository, settings repository.SettingsRepository, notifier ChangeNotifier, logger *zap.Logger) *LeaderboardService {
	return &LeaderboardService{
		teams:    teams,
		votes:    votes,
		settings: settings,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *LeaderboardService) load(ctx context.Context) ([]domain.Team, []domain.Vote, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load teams: %w", err)
	}
	votes, err := s.votes.ListVotes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load votes: %w", err)
	}
	return teams, votes, nil
}

// Leaderboard ranks every team regardless of visibility
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	teams, votes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(teams, votes), nil
}

// PublicLeaderboard hides the entries while visibility is off
func (s *LeaderboardService) PublicLeaderboard(ctx context.Context) (*domain.Leaderboard, error) {
	visible, err := s.GetLeaderboardVisibility(ctx)
	if err != nil {
		return nil, err
	}
	if !visible {
		return &domain.Leaderboard{Visible: false, Entries: []domain.LeaderboardEntry{}}, nil
	}

	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Leaderboard{Visible: true, Entries: entries}, nil
}

// TeamStats returns one team's aggregate and received votes
func (s *LeaderboardService) TeamStats(ctx context.Context, teamID string) (*domain.TeamStats, error) {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.ListVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	received := TeamVotes(votes, teamID)
	return &domain.TeamStats{
		Team:          *team,
		AverageRating: AverageRating(received, teamID),
		VoteCount:     len(received),
		Votes:         received,
	}, nil
}

// GetLeaderboardVisibility returns the flag, true when never set
func (s *LeaderboardService) GetLeaderboardVisibility(ctx context.Context) (bool, error) {
	visible, set, err := s.settings.GetLeaderboardVisibility(ctx)
	if err != nil {
		return false, err
	}
	if !set {
		return true, nil
	}
	return visible, nil
}

// SetLeaderboardVisibility stores the flag
func (s *LeaderboardService) SetLeaderboardVisibility(ctx context.Context, visible bool) error {
	if err := s.settings.SetLeaderboardVisibility(ctx, visible); err != nil {
		return err
	}
	s.logger.Info("Leaderboard visibility changed", zap.Bool("visible", visible))
	s.notifier.Publish(ctx, CollectionSettings)
	return nil
}

// Snapshot assembles the full state pushed to live clients. The leaderboard
// is always included; clients apply the visibility flag.
func (s *LeaderboardService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	teams, votes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	session, _, err := s.settings.GetVotingSession(ctx)
	if err != nil {
		return nil, err
	}
	visible, err := s.GetLeaderboardVisibility(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		Teams:              teams,
		Votes:              votes,
		Leaderboard:        Rank(teams, votes),
		Session:            session,
		LeaderboardVisible: visible,
	}, nil
}
