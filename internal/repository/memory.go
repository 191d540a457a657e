package repository

import (
	"context"
	"sync"
	"time"

	"eventvote/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in process. It enforces the same
// constraints as the Postgres schema and is used when no DATABASE_URL is set.
type MemoryStore struct {
	mu         sync.RWMutex
	teams      []domain.Team
	votes      []domain.Vote
	accounts   map[string]domain.Account // by email
	session    *domain.VotingSession
	visibility *bool
	now        func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]domain.Account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewMemoryRepositories returns a Repositories backed by one MemoryStore
func NewMemoryRepositories() (*Repositories, *MemoryStore) {
	store := NewMemoryStore()
	return &Repositories{
		Team:     store,
		Vote:     store,
		Account:  store,
		Settings: store,
	}, store
}

func (s *MemoryStore) teamIndex(id string) int {
	for i := range s.teams {
		if s.teams[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) voteIndex(id string) int {
	for i := range s.votes {
		if s.votes[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateTeam implements TeamRepository
func (s *MemoryStore) CreateTeam(ctx context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.teams {
		if existing.Email == team.Email {
			return domain.ErrEmailTaken
		}
	}

	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := s.now()
	team.CreatedAt = now
	team.UpdatedAt = now
	s.teams = append(s.teams, *team)
	return nil
}

// GetTeam implements TeamRepository
func (s *MemoryStore) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.teamIndex(id)
	if i < 0 {
		return nil, domain.ErrTeamNotFound
	}
	team := s.teams[i]
	return &team, nil
}

// GetTeamByEmail implements TeamRepository
func (s *MemoryStore) GetTeamByEmail(ctx context.Context, email string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.teams {
		if team.Email == email {
			t := team
			return &t, nil
		}
	}
	return nil, domain.ErrTeamNotFound
}

// ListTeams implements TeamRepository
func (s *MemoryStore) ListTeams(ctx context.Context) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]domain.Team, len(s.teams))
	copy(teams, s.teams)
	return teams, nil
}

// UpdateTeam implements TeamRepository
func (s *MemoryStore) UpdateTeam(ctx context.Context, id string, update domain.TeamUpdate) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teamIndex(id)
	if i < 0 {
		return nil, domain.ErrTeamNotFound
	}
	update.Apply(&s.teams[i])
	s.teams[i].UpdatedAt = s.now()
	team := s.teams[i]
	return &team, nil
}

// DeleteTeam implements TeamRepository
func (s *MemoryStore) DeleteTeam(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teamIndex(id)
	if i < 0 {
		return 0, domain.ErrTeamNotFound
	}
	s.teams = append(s.teams[:i], s.teams[i+1:]...)

	kept := s.votes[:0]
	var removed int64
	for _, vote := range s.votes {
		if vote.TeamID == id {
			removed++
			continue
		}
		kept = append(kept, vote)
	}
	s.votes = kept
	return removed, nil
}

// CreateVote implements VoteRepository
func (s *MemoryStore) CreateVote(ctx context.Context, vote *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vote.TeamID == vote.VoterTeamID {
		return domain.ErrSelfVote
	}
	if !domain.ValidRating(vote.Rating) {
		return domain.ErrInvalidRating
	}
	if s.teamIndex(vote.TeamID) < 0 {
		return domain.ErrTeamNotFound
	}
	for _, existing := range s.votes {
		if existing.TeamID == vote.TeamID && existing.VoterTeamID == vote.VoterTeamID {
			return domain.ErrAlreadyVoted
		}
	}

	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	vote.CreatedAt = s.now()
	s.votes = append(s.votes, *vote)
	return nil
}

// GetVote implements VoteRepository
func (s *MemoryStore) GetVote(ctx context.Context, id string) (*domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.voteIndex(id)
	if i < 0 {
		return nil, domain.ErrVoteNotFound
	}
	vote := s.votes[i]
	return &vote, nil
}

// ListVotes implements VoteRepository
func (s *MemoryStore) ListVotes(ctx context.Context) ([]domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	votes := make([]domain.Vote, len(s.votes))
	copy(votes, s.votes)
	return votes, nil
}

// DeleteVote implements VoteRepository
func (s *MemoryStore) DeleteVote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.voteIndex(id)
	if i < 0 {
		return domain.ErrVoteNotFound
	}
	s.votes = append(s.votes[:i], s.votes[i+1:]...)
	return nil
}

// UpdateVoteRating implements VoteRepository
func (s *MemoryStore) UpdateVoteRating(ctx context.Context, id string, rating int) (*domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.ValidRating(rating) {
		return nil, domain.ErrInvalidRating
	}
	i := s.voteIndex(id)
	if i < 0 {
		return nil, domain.ErrVoteNotFound
	}
	s.votes[i].Rating = rating
	vote := s.votes[i]
	return &vote, nil
}

// CreateAccount implements AccountRepository
func (s *MemoryStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Email]; ok {
		return domain.ErrEmailTaken
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = s.now()
	s.accounts[account.Email] = *account
	return nil
}

// GetAccountByEmail implements AccountRepository
func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

// DeleteAccountByEmail implements AccountRepository
func (s *MemoryStore) DeleteAccountByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[email]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(s.accounts, email)
	return nil
}

// GetVotingSession implements SettingsRepository
func (s *MemoryStore) GetVotingSession(ctx context.Context) (domain.VotingSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return domain.VotingSession{}, false, nil
	}
	return copySession(*s.session), true, nil
}

// SaveVotingSession implements SettingsRepository
func (s *MemoryStore) SaveVotingSession(ctx context.Context, session domain.VotingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copySession(session)
	stored.UpdatedAt = s.now()
	s.session = &stored
	return nil
}

// InitVotingSession implements SettingsRepository
func (s *MemoryStore) InitVotingSession(ctx context.Context, session domain.VotingSession) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return false, nil
	}
	stored := copySession(session)
	stored.UpdatedAt = s.now()
	s.session = &stored
	return true, nil
}

// GetLeaderboardVisibility implements SettingsRepository
func (s *MemoryStore) GetLeaderboardVisibility(ctx context.Context) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.visibility == nil {
		return false, false, nil
	}
	return *s.visibility, true, nil
}

// SetLeaderboardVisibility implements SettingsRepository
func (s *MemoryStore) SetLeaderboardVisibility(ctx context.Context, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visibility = &visible
	return nil
}

// copySession detaches the pointer fields so callers cannot mutate stored state
func copySession(session domain.VotingSession) domain.VotingSession {
	out := session
	if session.PresentingTeam != nil {
		team := *session.PresentingTeam
		out.PresentingTeam = &team
	}
	if session.EndTime != nil {
		end := *session.EndTime
		out.EndTime = &end
	}
	return out
}
