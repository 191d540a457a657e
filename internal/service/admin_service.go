package service

import (
	"context"

	"eventvote/internal/domain"
	"eventvote/internal/repository"

	"go.uber.org/zap"
)

// AdminService performs privileged edits
type AdminService struct {
	teams    repository.TeamRepository
	votes    repository.VoteRepository
	accounts repository.AccountRepository
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(teams repository.TeamRepository, votes repository.VoteRepository, accounts repository.AccountRepository, notifier ChangeNotifier, logger *zap.Logger) *AdminService {
	return &AdminService{
		teams:    teams,
		votes:    votes,
		accounts: accounts,
		notifier: notifier,
		logger:   logger,
	}
}

// DeleteTeamResult describes a completed team deletion
type DeleteTeamResult struct {
	TeamID       string `json:"team_id"`
	Email        string `json:"email"`
	VotesRemoved int64  `json:"votes_removed"`
}

// DeleteTeam removes a team and every vote it received. The linked account
// is removed first on a best-effort basis; its failure never blocks the
// team deletion. Votes the team cast for others are kept.
func (s *AdminService) DeleteTeam(ctx context.Context, teamID string) (*DeleteTeamResult, error) {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.DeleteAccountByEmail(ctx, team.Email); err != nil {
		s.logger.Warn("Failed to delete team account, continuing with team deletion",
			zap.String("team_id", teamID),
			zap.String("email", team.Email),
			zap.Error(err))
	}

	removed, err := s.teams.DeleteTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Team deleted",
		zap.String("team_id", teamID),
		zap.Int64("votes_removed", removed))
	s.notifier.Publish(ctx, CollectionTeams)
	s.notifier.Publish(ctx, CollectionVotes)

	return &DeleteTeamResult{TeamID: teamID, Email: team.Email, VotesRemoved: removed}, nil
}

// DeleteVote removes a single vote
func (s *AdminService) DeleteVote(ctx context.Context, voteID string) error {
	if err := s.votes.DeleteVote(ctx, voteID); err != nil {
		return err
	}
	s.logger.Info("Vote deleted", zap.String("vote_id", voteID))
	s.notifier.Publish(ctx, CollectionVotes)
	return nil
}

// UpdateVoteRating overrides a rating. The value must lie in 1..5.
func (s *AdminService) UpdateVoteRating(ctx context.Context, voteID string, rating int) (*domain.Vote, error) {
	if !domain.ValidRating(rating) {
		return nil, domain.ErrInvalidRating
	}

	vote, err := s.votes.UpdateVoteRating(ctx, voteID, rating)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vote rating updated", zap.String("vote_id", voteID), zap.Int("rating", rating))
	s.notifier.Publish(ctx, CollectionVotes)
	return vote, nil
}
