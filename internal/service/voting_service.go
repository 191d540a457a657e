package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventvote/internal/domain"
	"eventvote/internal/metrics"
	"eventvote/internal/repository"
	"eventvote/pkg/redis"

	"go.uber.org/zap"
)

type VotingService struct {
	teams    repository.TeamRepository
	votes    repository.VoteRepository
	settings repository.SettingsRepository
	redis    *redis.Client // optional
	notifier ChangeNotifier
	lockTTL  time.Duration
	logger   *zap.Logger
}

func NewVotingService(teams repository.TeamRepository, votes repository.VoteRepository, settings repository.SettingsRepository, redisClient *redis.Client, notifier ChangeNotifier, lockTTL time.Duration, logger *zap.Logger) *VotingService {
	if lockTTL <= 0 {
		lockTTL = redis.TTLVoteLock
	}
	return &VotingService{
		teams:    teams,
		votes:    votes,
		settings: settings,
		redis:    redisClient,
		notifier: notifier,
		lockTTL:  lockTTL,
		logger:   logger,
	}
}

// TryVoteLock attempts to acquire the submission lock for a (voter, target) pair.
// Returns true if acquired, false if another submission for the pair is in flight.
func (s *VotingService) TryVoteLock(ctx context.Context, voterTeamID, targetTeamID string) (bool, error) {
	if s.redis == nil {
		return true, nil
	}
	return s.redis.SetNX(ctx, s.redis.KeyBuilder.KeyVoteLock(voterTeamID, targetTeamID), "1", s.lockTTL)
}

func (s *VotingService) releaseVoteLock(voterTeamID, targetTeamID string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyVoteLock(voterTeamID, targetTeamID)); err != nil {
		s.logger.Warn("Failed to release vote lock", zap.Error(err))
	}
}

func (s *VotingService) reject(err error, targetTeamID, voterTeamID string) error {
	reason := domain.EligibilityReason(err)
	if errors.Is(err, domain.ErrInvalidRating) {
		reason = "invalid_rating"
	}
	metrics.RecordRejection(reason)
	s.logger.Info("Vote rejected",
		zap.String("target_team_id", targetTeamID),
		zap.String("voter_team_id", voterTeamID),
		zap.String("reason", err.Error()))
	return err
}

// SubmitVote records voter's rating of target. Checks run in order: self vote,
// duplicate against the latest snapshot, rating bounds, then the insert, whose
// unique key rejects a duplicate that raced past the snapshot check.
func (s *VotingService) SubmitVote(ctx context.Context, targetTeamID string, rating int, voterTeamID string) (*domain.Vote, error) {
	if targetTeamID == voterTeamID {
		return nil, s.reject(domain.ErrSelfVote, targetTeamID, voterTeamID)
	}

	votes, err := s.votes.ListVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	if HasVoted(votes, targetTeamID, voterTeamID) {
		return nil, s.reject(domain.ErrAlreadyVoted, targetTeamID, voterTeamID)
	}

	if !domain.ValidRating(rating) {
		return nil, s.reject(domain.ErrInvalidRating, targetTeamID, voterTeamID)
	}

	acquired, err := s.TryVoteLock(ctx, voterTeamID, targetTeamID)
	switch {
	case err != nil:
		// The storage unique key still guards the pair
		s.logger.Warn("Vote lock unavailable, relying on storage constraint", zap.Error(err))
	case !acquired:
		return nil, s.reject(domain.ErrAlreadyVoted, targetTeamID, voterTeamID)
	}

	vote := &domain.Vote{
		TeamID:      targetTeamID,
		VoterTeamID: voterTeamID,
		Rating:      rating,
	}
	if err := s.votes.CreateVote(ctx, vote); err != nil {
		s.releaseVoteLock(voterTeamID, targetTeamID)
		if domain.IsEligibilityError(err) || errors.Is(err, domain.ErrInvalidRating) {
			return nil, s.reject(err, targetTeamID, voterTeamID)
		}
		return nil, err
	}

	metrics.VotesSubmitted.Inc()
	s.logger.Info("Vote submitted",
		zap.String("vote_id", vote.ID),
		zap.String("target_team_id", targetTeamID),
		zap.String("voter_team_id", voterTeamID),
		zap.Int("rating", rating))
	s.notifier.Publish(ctx, CollectionVotes)

	return vote, nil
}

// SubmitPresentingVote rates the team currently on stage
func (s *VotingService) SubmitPresentingVote(ctx context.Context, voterTeamID string, rating int) (*domain.Vote, error) {
	session, _, err := s.settings.GetVotingSession(ctx)
	if err != nil {
		return nil, err
	}
	if !session.AcceptsVotes() {
		return nil, s.reject(domain.ErrVotingClosed, "", voterTeamID)
	}
	return s.SubmitVote(ctx, session.PresentingTeam.ID, rating, voterTeamID)
}

// Eligibility reports whether voter has rated target and whether it still may
func (s *VotingService) Eligibility(ctx context.Context, targetTeamID, voterTeamID string) (*domain.Eligibility, error) {
	if _, err := s.teams.GetTeam(ctx, targetTeamID); err != nil {
		return nil, err
	}
	votes, err := s.votes.ListVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	eligibility := EvaluateEligibility(votes, targetTeamID, voterTeamID)
	return &eligibility, nil
}

// HasVoted checks the latest snapshot for a vote of target by voter
func (s *VotingService) HasVoted(ctx context.Context, targetTeamID, voterTeamID string) (bool, error) {
	e, err := s.Eligibility(ctx, targetTeamID, voterTeamID)
	if err != nil {
		return false, err
	}
	return e.HasVoted, nil
}

// CanVote checks the latest snapshot for whether voter may rate target
func (s *VotingService) CanVote(ctx context.Context, targetTeamID, voterTeamID string) (bool, error) {
	e, err := s.Eligibility(ctx, targetTeamID, voterTeamID)
	if err != nil {
		return false, err
	}
	return e.CanVote, nil
}

// GetTeamVotes returns the votes targeting teamID in insertion order
func (s *VotingService) GetTeamVotes(ctx context.Context, teamID string) ([]domain.Vote, error) {
	if _, err := s.teams.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	votes, err := s.votes.ListVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	return TeamVotes(votes, teamID), nil
}
