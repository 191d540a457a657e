package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const usage = "Usage: go run ./cmd/migrate [drop|up|seed|init-state]"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		password := os.Getenv("SEED_PASSWORD")
		if password == "" {
			password = "changeme"
		}
		if err := seedData(ctx, conn, password); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	case "init-state":
		if err := initState(ctx, conn); err != nil {
			log.Fatalf("Failed to initialize voting state: %v", err)
		}
		fmt.Println("✅ Voting state initialized")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS votes CASCADE`,
		`DROP TABLE IF EXISTS teams CASCADE`,
		`DROP TABLE IF EXISTS accounts CASCADE`,
		`DROP TABLE IF EXISTS voting_state CASCADE`,
		`DROP TABLE IF EXISTS app_settings CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL NOT NULL,
			name TEXT NOT NULL,
			members TEXT NOT NULL,
			project_description TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT teams_email_key UNIQUE (email)
		)`,

		// voter_team_id has no foreign key: votes a deleted team cast are kept
		`CREATE TABLE IF NOT EXISTS votes (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL NOT NULL,
			team_id TEXT NOT NULL,
			voter_team_id TEXT NOT NULL,
			rating INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT votes_team_id_fkey FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
			CONSTRAINT votes_team_voter_key UNIQUE (team_id, voter_team_id),
			CONSTRAINT votes_rating_check CHECK (rating BETWEEN 1 AND 5),
			CONSTRAINT votes_no_self_vote CHECK (team_id <> voter_team_id)
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT accounts_email_key UNIQUE (email)
		)`,

		`CREATE TABLE IF NOT EXISTS voting_state (
			id TEXT PRIMARY KEY CHECK (id = 'current'),
			presenting_team_id TEXT,
			presenting_team_name TEXT,
			is_active BOOLEAN NOT NULL DEFAULT false,
			end_time TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			bool_value BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_teams_seq ON teams(seq)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_seq ON votes(seq)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_voter_team_id ON votes(voter_team_id)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
		fmt.Printf("  Created: %s\n", getTableName(query))
	}

	return nil
}

type seedTeam struct {
	name        string
	members     string
	description string
	email       string
}

var seedTeams = []seedTeam{
	{"Alpha", "Ann\nBen", "Offline-first field notes", "alpha@example.com"},
	{"Bravo", "Cara\nDev\nEli", "Carbon tracker for campus buildings", "bravo@example.com"},
	{"Charlie", "Fay\nGus", "Peer tutoring marketplace", "charlie@example.com"},
	{"Delta", "Hana\nIvo", "Accessible transit alerts", "delta@example.com"},
}

func seedData(ctx context.Context, conn *pgx.Conn, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, team := range seedTeams {
		if _, err := tx.Exec(ctx, `
			INSERT INTO accounts (id, email, password_hash) VALUES ($1, $2, $3)
			ON CONFLICT (email) DO NOTHING`,
			uuid.NewString(), team.email, string(hash)); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", team.email, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO teams (id, name, members, project_description, email) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET
				name = EXCLUDED.name,
				members = EXCLUDED.members,
				project_description = EXCLUDED.project_description,
				updated_at = NOW()`,
			uuid.NewString(), team.name, team.members, team.description, team.email); err != nil {
			return fmt.Errorf("failed to seed team %s: %w", team.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	fmt.Printf("  Seeded %d teams\n", len(seedTeams))
	return nil
}

func initState(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`INSERT INTO voting_state (id, is_active) VALUES ('current', false) ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO app_settings (key, bool_value) VALUES ('leaderboard_visible', true) ON CONFLICT (key) DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

func getTableName(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > 50 {
		return query[:50] + "..."
	}
	return query
}
