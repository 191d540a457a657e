package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventvote/internal/domain"
	"eventvote/pkg/database"

	"github.com/jackc/pgx/v5"
)

const (
	votingStateID         = "current"
	settingLeaderboardKey = "leaderboard_visible"
)

type SettingsRepositoryPG struct {
	db *database.PostgresDB
}

func NewSettingsRepository(db *database.PostgresDB) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{db: db}
}

// GetVotingSession reads the singleton session row
func (r *SettingsRepositoryPG) GetVotingSession(ctx context.Context) (domain.VotingSession, bool, error) {
	var (
		session  domain.VotingSession
		teamID   *string
		teamName *string
	)
	query := `
		SELECT presenting_team_id, presenting_team_name, is_active, end_time, updated_at
		FROM voting_state
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, votingStateID).Scan(
		&teamID,
		&teamName,
		&session.IsActive,
		&session.EndTime,
		&session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.VotingSession{}, false, nil
	}
	if err != nil {
		return domain.VotingSession{}, false, fmt.Errorf("failed to get voting state: %w", err)
	}

	if teamID != nil {
		session.PresentingTeam = &domain.PresentingTeam{ID: *teamID}
		if teamName != nil {
			session.PresentingTeam.Name = *teamName
		}
	}
	return session, true, nil
}

func sessionArgs(session domain.VotingSession) (*string, *string, bool, *time.Time) {
	var teamID, teamName *string
	if session.PresentingTeam != nil {
		teamID = &session.PresentingTeam.ID
		teamName = &session.PresentingTeam.Name
	}
	return teamID, teamName, session.IsActive, session.EndTime
}

// SaveVotingSession upserts the singleton session row
func (r *SettingsRepositoryPG) SaveVotingSession(ctx context.Context, session domain.VotingSession) error {
	teamID, teamName, active, endTime := sessionArgs(session)
	query := `
		INSERT INTO voting_state (id, presenting_team_id, presenting_team_name, is_active, end_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			presenting_team_id = EXCLUDED.presenting_team_id,
			presenting_team_name = EXCLUDED.presenting_team_name,
			is_active = EXCLUDED.is_active,
			end_time = EXCLUDED.end_time,
			updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, votingStateID, teamID, teamName, active, endTime); err != nil {
		return fmt.Errorf("failed to save voting state: %w", err)
	}
	return nil
}

// InitVotingSession inserts the session row if it does not exist yet
func (r *SettingsRepositoryPG) InitVotingSession(ctx context.Context, session domain.VotingSession) (bool, error) {
	teamID, teamName, active, endTime := sessionArgs(session)
	query := `
		INSERT INTO voting_state (id, presenting_team_id, presenting_team_name, is_active, end_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, votingStateID, teamID, teamName, active, endTime)
	if err != nil {
		return false, fmt.Errorf("failed to init voting state: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetLeaderboardVisibility reads the visibility flag
func (r *SettingsRepositoryPG) GetLeaderboardVisibility(ctx context.Context) (bool, bool, error) {
	var visible bool
	err := r.db.Pool.QueryRow(ctx, `SELECT bool_value FROM app_settings WHERE key = $1`, settingLeaderboardKey).Scan(&visible)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get leaderboard visibility: %w", err)
	}
	return visible, true, nil
}

// SetLeaderboardVisibility upserts the visibility flag
func (r *SettingsRepositoryPG) SetLeaderboardVisibility(ctx context.Context, visible bool) error {
	query := `
		INSERT INTO app_settings (key, bool_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET bool_value = EXCLUDED.bool_value, updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, settingLeaderboardKey, visible); err != nil {
		return fmt.Errorf("failed to set leaderboard visibility: %w", err)
	}
	return nil
}

// NewPostgresRepositories wires every repository to one pool
func NewPostgresRepositories(db *database.PostgresDB) *Repositories {
	return &Repositories{
		Team:     NewTeamRepository(db),
		Vote:     NewVoteRepository(db),
		Account:  NewAccountRepository(db),
		Settings: NewSettingsRepository(db),
	}
}
