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

const voteColumns = `id, team_id, voter_team_id, rating, created_at`

type VoteRepositoryPG struct {
	db *database.PostgresDB
}

func NewVoteRepository(db *database.PostgresDB) *VoteRepositoryPG {
	return &VoteRepositoryPG{db: db}
}

func scanVote(row pgx.Row) (*domain.Vote, error) {
	var vote domain.Vote
	if err := row.Scan(&vote.ID, &vote.TeamID, &vote.VoterTeamID, &vote.Rating, &vote.CreatedAt); err != nil {
		return nil, err
	}
	return &vote, nil
}

// CreateVote inserts a vote. The (team_id, voter_team_id) unique key turns a
// concurrent duplicate into domain.ErrAlreadyVoted.
func (r *VoteRepositoryPG) CreateVote(ctx context.Context, vote *domain.Vote) error {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}

	query := `
		INSERT INTO votes (id, team_id, voter_team_id, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, vote.ID, vote.TeamID, vote.VoterTeamID, vote.Rating).Scan(&vote.CreatedAt)
	if err != nil {
		return mapPgError("create vote", err)
	}
	return nil
}

// GetVote gets a vote by id
func (r *VoteRepositoryPG) GetVote(ctx context.Context, id string) (*domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes WHERE id = $1`

	vote, err := scanVote(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return vote, nil
}

// ListVotes returns all votes in insertion order
func (r *VoteRepositoryPG) ListVotes(ctx context.Context) ([]domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes ORDER BY seq`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := make([]domain.Vote, 0)
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, *vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}

// DeleteVote removes a vote by id
func (r *VoteRepositoryPG) DeleteVote(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM votes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVoteNotFound
	}
	return nil
}

// UpdateVoteRating overrides a rating
func (r *VoteRepositoryPG) UpdateVoteRating(ctx context.Context, id string, rating int) (*domain.Vote, error) {
	query := `
		UPDATE votes SET rating = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + voteColumns

	vote, err := scanVote(r.db.Pool.QueryRow(ctx, query, id, rating))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVoteNotFound
	}
	if err != nil {
		return nil, mapPgError("update vote rating", err)
	}
	return vote, nil
}
