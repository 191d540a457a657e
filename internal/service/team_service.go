package service

import (
	"context"
	"errors"
	"strings"

	"eventvote/internal/domain"
	"eventvote/internal/repository"

	"go.uber.org/zap"
)

const minPasswordLength = 6

// TeamService handles registration, login and team profile edits
type TeamService struct {
	teams    repository.TeamRepository
	accounts repository.AccountRepository
	auth     *AuthService
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewTeamService creates a new team service
func NewTeamService(teams repository.TeamRepository, accounts repository.AccountRepository, auth *AuthService, notifier ChangeNotifier, logger *zap.Logger) *TeamService {
	return &TeamService{
		teams:    teams,
		accounts: accounts,
		auth:     auth,
		notifier: notifier,
		logger:   logger,
	}
}

func validateRegistration(req *domain.RegisterRequest) error {
	if req.Name == "" || req.Members == "" || req.ProjectDescription == "" || req.Email == "" || req.Password == "" {
		return domain.ErrMissingField
	}
	if len(req.Password) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	return nil
}

// RegisterTeam creates the login account and the team record, then signs a team token
func (s *TeamService) RegisterTeam(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	req.Normalize()
	if err := validateRegistration(&req); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{Email: req.Email, PasswordHash: hash}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	team := &domain.Team{
		Name:               req.Name,
		Members:            req.Members,
		ProjectDescription: req.ProjectDescription,
		Email:              req.Email,
	}
	if err := s.teams.CreateTeam(ctx, team); err != nil {
		// Roll back the account so the email can be registered again
		if delErr := s.accounts.DeleteAccountByEmail(ctx, req.Email); delErr != nil {
			s.logger.Warn("Failed to roll back account after team creation failure",
				zap.String("email", req.Email),
				zap.Error(delErr))
		}
		return nil, err
	}

	token, expiresAt, err := s.auth.IssueTeamToken(team)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Team registered", zap.String("team_id", team.ID), zap.String("name", team.Name))
	s.notifier.Publish(ctx, CollectionTeams)

	return &domain.AuthResponse{Token: token, ExpiresAt: expiresAt, Team: team}, nil
}

// Login checks team credentials and signs a team token
func (s *TeamService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	email := domain.NormalizeEmail(req.Email)

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.auth.CheckPassword(account.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	team, err := s.teams.GetTeamByEmail(ctx, email)
	if errors.Is(err, domain.ErrTeamNotFound) {
		// Account outlived its team
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.auth.IssueTeamToken(team)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{Token: token, ExpiresAt: expiresAt, Team: team}, nil
}

// GetTeam returns a team by id
func (s *TeamService) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	return s.teams.GetTeam(ctx, id)
}

// GetTeamByEmail returns a team by registration email
func (s *TeamService) GetTeamByEmail(ctx context.Context, email string) (*domain.Team, error) {
	return s.teams.GetTeamByEmail(ctx, domain.NormalizeEmail(email))
}

// ListTeams returns every team in registration order
func (s *TeamService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	return s.teams.ListTeams(ctx)
}

// UpdateTeam applies a partial edit. Provided fields must not be blank.
func (s *TeamService) UpdateTeam(ctx context.Context, id string, update domain.TeamUpdate) (*domain.Team, error) {
	for _, field := range []*string{update.Name, update.Members, update.ProjectDescription} {
		if field == nil {
			continue
		}
		*field = strings.TrimSpace(*field)
		if *field == "" {
			return nil, domain.ErrMissingField
		}
	}
	if update.IsEmpty() {
		return nil, domain.ErrMissingField
	}

	team, err := s.teams.UpdateTeam(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Team updated", zap.String("team_id", id))
	s.notifier.Publish(ctx, CollectionTeams)
	return team, nil
}
