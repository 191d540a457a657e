package repository

import (
	"context"

	"eventvote/internal/domain"
)

// TeamRepository defines the interface for team data operations
type TeamRepository interface {
	// CreateTeam inserts a team, assigning its id and timestamps
	CreateTeam(ctx context.Context, team *domain.Team) error

	// GetTeam retrieves a team by id
	GetTeam(ctx context.Context, id string) (*domain.Team, error)

	// GetTeamByEmail retrieves a team by its registration email
	GetTeamByEmail(ctx context.Context, email string) (*domain.Team, error)

	// ListTeams returns every team in registration order
	ListTeams(ctx context.Context) ([]domain.Team, error)

	// UpdateTeam merges a partial edit and returns the stored team
	UpdateTeam(ctx context.Context, id string, update domain.TeamUpdate) (*domain.Team, error)

	// DeleteTeam removes the team and every vote targeting it in one step.
	// Votes the team cast for others are kept. Returns the number of votes removed.
	DeleteTeam(ctx context.Context, id string) (int64, error)
}

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	// CreateVote inserts a vote unless one already exists for the same
	// (target, voter) pair, in which case it returns domain.ErrAlreadyVoted
	CreateVote(ctx context.Context, vote *domain.Vote) error

	// GetVote retrieves a vote by id
	GetVote(ctx context.Context, id string) (*domain.Vote, error)

	// ListVotes returns every vote in insertion order
	ListVotes(ctx context.Context) ([]domain.Vote, error)

	// DeleteVote removes a vote by id
	DeleteVote(ctx context.Context, id string) error

	// UpdateVoteRating overrides the rating of a stored vote
	UpdateVoteRating(ctx context.Context, id string, rating int) (*domain.Vote, error)
}

// AccountRepository defines the interface for login credentials
type AccountRepository interface {
	// CreateAccount inserts an account; duplicate emails return domain.ErrEmailTaken
	CreateAccount(ctx context.Context, account *domain.Account) error

	// GetAccountByEmail retrieves credentials by email
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// DeleteAccountByEmail removes the account linked to email
	DeleteAccountByEmail(ctx context.Context, email string) error
}

// SettingsRepository stores the voting session and leaderboard visibility singletons
type SettingsRepository interface {
	// GetVotingSession returns the stored session and whether the row exists
	GetVotingSession(ctx context.Context) (domain.VotingSession, bool, error)

	// SaveVotingSession replaces the session in full
	SaveVotingSession(ctx context.Context, session domain.VotingSession) error

	// InitVotingSession stores session only if no row exists yet
	InitVotingSession(ctx context.Context, session domain.VotingSession) (bool, error)

	// GetLeaderboardVisibility returns the flag and whether it was ever set
	GetLeaderboardVisibility(ctx context.Context) (bool, bool, error)

	// SetLeaderboardVisibility stores the flag
	SetLeaderboardVisibility(ctx context.Context, visible bool) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Team     TeamRepository
	Vote     VoteRepository
	Account  AccountRepository
	Settings SettingsRepository
}
