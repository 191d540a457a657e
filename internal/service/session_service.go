package service

import (
	"context"
	"sync"
	"time"

	"eventvote/internal/domain"
	"eventvote/internal/repository"

	"go.uber.org/zap"
)

// SessionService owns the voting window singleton and the deferred clear
// that runs after voting ends
type SessionService struct {
	settings   repository.SettingsRepository
	teams      repository.TeamRepository
	notifier   ChangeNotifier
	clearDelay time.Duration
	now        func() time.Time
	logger     *zap.Logger

	mu         sync.Mutex
	clearTimer *time.Timer
	clearGen   uint64
}

// NewSessionService creates a session service. clearDelay is how long the
// ended team stays referenced after EndVoting.
func NewSessionService(settings repository.SettingsRepository, teams repository.TeamRepository, notifier ChangeNotifier, clearDelay time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{
		settings:   settings,
		teams:      teams,
		notifier:   notifier,
		clearDelay: clearDelay,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// InitVotingState creates the idle session if none exists
func (s *SessionService) InitVotingState(ctx context.Context) (domain.VotingSession, error) {
	created, err := s.settings.InitVotingSession(ctx, domain.VotingSession{})
	if err != nil {
		return domain.VotingSession{}, err
	}
	if created {
		s.logger.Info("Voting state initialized")
		s.notifier.Publish(ctx, CollectionSession)
	}
	return s.GetVotingState(ctx)
}

// GetVotingState returns the session, or the idle state if it was never stored
func (s *SessionService) GetVotingState(ctx context.Context) (domain.VotingSession, error) {
	session, _, err := s.settings.GetVotingSession(ctx)
	if err != nil {
		return domain.VotingSession{}, err
	}
	return session, nil
}

// SetVotingState replaces the session in full and cancels any pending clear
func (s *SessionService) SetVotingState(ctx context.Context, session domain.VotingSession) (domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelClearLocked()
	return s.saveLocked(ctx, session, "Voting state replaced")
}

// StartVoting puts teamID on stage and opens voting
func (s *SessionService) StartVoting(ctx context.Context, teamID string) (domain.VotingSession, error) {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return domain.VotingSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelClearLocked()
	session := domain.VotingSession{
		PresentingTeam: &domain.PresentingTeam{ID: team.ID, Name: team.Name},
		IsActive:       true,
	}
	return s.saveLocked(ctx, session, "Voting started")
}

// EndVoting closes voting and schedules the presenting team to be cleared
// after the configured delay
func (s *SessionService) EndVoting(ctx context.Context) (domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, _, err := s.settings.GetVotingSession(ctx)
	if err != nil {
		return domain.VotingSession{}, err
	}

	end := s.now()
	session.IsActive = false
	session.EndTime = &end

	saved, err := s.saveLocked(ctx, session, "Voting ended")
	if err != nil {
		return domain.VotingSession{}, err
	}

	s.cancelClearLocked()
	gen := s.clearGen
	s.clearTimer = time.AfterFunc(s.clearDelay, func() { s.clearPresentingTeam(gen) })
	return saved, nil
}

// ResetVotingState returns to idle immediately and cancels any pending clear
func (s *SessionService) ResetVotingState(ctx context.Context) (domain.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelClearLocked()
	return s.saveLocked(ctx, domain.VotingSession{}, "Voting state reset")
}

// HasPendingClear reports whether a deferred clear is scheduled
func (s *SessionService) HasPendingClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearTimer != nil
}

// Stop cancels the pending clear. Used on shutdown.
func (s *SessionService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelClearLocked()
}

func (s *SessionService) saveLocked(ctx context.Context, session domain.VotingSession, msg string) (domain.VotingSession, error) {
	if err := s.settings.SaveVotingSession(ctx, session); err != nil {
		return domain.VotingSession{}, err
	}

	fields := []zap.Field{zap.Bool("is_active", session.IsActive)}
	if session.PresentingTeam != nil {
		fields = append(fields, zap.String("team_id", session.PresentingTeam.ID))
	}
	s.logger.Info(msg, fields...)
	s.notifier.Publish(ctx, CollectionSession)

	return session, nil
}

// cancelClearLocked stops the pending timer. Bumping the generation also
// neutralises a timer that already fired and is waiting on mu.
func (s *SessionService) cancelClearLocked() {
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
	s.clearGen++
}

func (s *SessionService) clearPresentingTeam(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.clearGen {
		return
	}
	s.clearTimer = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, _, err := s.settings.GetVotingSession(ctx)
	if err != nil {
		s.logger.Error("Failed to load voting state for deferred clear", zap.Error(err))
		return
	}
	session.PresentingTeam = nil
	if _, err := s.saveLocked(ctx, session, "Presenting team cleared"); err != nil {
		s.logger.Error("Failed to clear presenting team", zap.Error(err))
	}
}
