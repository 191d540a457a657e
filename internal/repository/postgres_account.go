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

type AccountRepositoryPG struct {
	db *database.PostgresDB
}

func NewAccountRepository(db *database.PostgresDB) *AccountRepositoryPG {
	return &AccountRepositoryPG{db: db}
}

// CreateAccount inserts credentials
func (r *AccountRepositoryPG) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	query := `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, account.ID, account.Email, account.PasswordHash).Scan(&account.CreatedAt)
	if err != nil {
		return mapPgError("create account", err)
	}
	return nil
}

// GetAccountByEmail gets credentials by email
func (r *AccountRepositoryPG) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`

	err := r.db.Pool.QueryRow(ctx, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// DeleteAccountByEmail removes credentials by email
func (r *AccountRepositoryPG) DeleteAccountByEmail(ctx context.Context, email string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM accounts WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
