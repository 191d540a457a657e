package repository

import (
	"context"
	"errors"
	"fmt"

	"eventvote/internal/domain"
	"eventvote/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const teamColumns = `id, name, members, project_description, email, created_at, updated_at`

type TeamRepositoryPG struct {
	db *database.PostgresDB
}

func NewTeamRepository(db *database.PostgresDB) *TeamRepositoryPG {
	return &TeamRepositoryPG{db: db}
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Members,
		&team.ProjectDescription,
		&team.Email,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// CreateTeam inserts a new team
func (r *TeamRepositoryPG) CreateTeam(ctx context.Context, team *domain.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}

	query := `
		INSERT INTO teams (id, name, members, project_description, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		team.ID,
		team.Name,
		team.Members,
		team.ProjectDescription,
		team.Email,
	).Scan(&team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return mapPgError("create team", err)
	}
	return nil
}

// GetTeam gets a team by id
func (r *TeamRepositoryPG) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetTeamByEmail gets a team by registration email
func (r *TeamRepositoryPG) GetTeamByEmail(ctx context.Context, email string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE email = $1`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by email: %w", err)
	}
	return team, nil
}

// ListTeams returns all teams in registration order
func (r *TeamRepositoryPG) ListTeams(ctx context.Context) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY seq`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]domain.Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// UpdateTeam applies a partial edit. Nil fields keep their stored value.
func (r *TeamRepositoryPG) UpdateTeam(ctx context.Context, id string, update domain.TeamUpdate) (*domain.Team, error) {
	query := `
		UPDATE teams SET
			name = COALESCE($2, name),
			members = COALESCE($3, members),
			project_description = COALESCE($4, project_description),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + teamColumns

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, id, update.Name, update.Members, update.ProjectDescription))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam removes the team and the votes it received in one transaction
func (r *TeamRepositoryPG) DeleteTeam(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM votes WHERE team_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete team votes: %w", err)
		}
		removed = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTeamNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
