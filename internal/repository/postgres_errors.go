package repository

import (
	"errors"
	"fmt"

	"eventvote/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names created by cmd/migrate
const (
	ConstraintTeamEmail     = "teams_email_key"
	ConstraintAccountEmail  = "accounts_email_key"
	ConstraintVotePair      = "votes_team_voter_key"
	ConstraintVoteRating    = "votes_rating_check"
	ConstraintVoteNoSelf    = "votes_no_self_vote"
	ConstraintVoteTargetRef = "votes_team_id_fkey"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapPgError translates constraint violations into domain errors and wraps
// everything else with op
func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case ConstraintVotePair:
				return domain.ErrAlreadyVoted
			case ConstraintTeamEmail, ConstraintAccountEmail:
				return domain.ErrEmailTaken
			}
		case pgCheckViolation:
			switch pgErr.ConstraintName {
			case ConstraintVoteRating:
				return domain.ErrInvalidRating
			case ConstraintVoteNoSelf:
				return domain.ErrSelfVote
			}
		case pgForeignKeyViolation:
			if pgErr.ConstraintName == ConstraintVoteTargetRef {
				return domain.ErrTeamNotFound
			}
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
