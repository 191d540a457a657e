package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"eventvote/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Token roles
const (
	RoleTeam  = "team"
	RoleAdmin = "admin"
)

const tokenIssuer = "eventvote"

// Claims represents JWT claims for teams and admins
type Claims struct {
	TeamID string `json:"team_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and validates tokens and hashes passwords
type AuthService struct {
	secret        []byte
	ttl           time.Duration
	adminPassword string
	now           func() time.Time
	logger        *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(secret string, ttl time.Duration, adminPassword string, logger *zap.Logger) *AuthService {
	return &AuthService{
		secret:        []byte(secret),
		ttl:           ttl,
		adminPassword: adminPassword,
		now:           time.Now,
		logger:        logger,
	}
}

// HashPassword hashes a password with bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with its bcrypt hash
func (s *AuthService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueTeamToken signs a token for team
func (s *AuthService) IssueTeamToken(team *domain.Team) (string, time.Time, error) {
	return s.sign(Claims{TeamID: team.ID, Email: team.Email, Role: RoleTeam}, team.ID)
}

// IssueAdminToken signs an admin token
func (s *AuthService) IssueAdminToken() (string, time.Time, error) {
	return s.sign(Claims{Role: RoleAdmin}, RoleAdmin)
}

func (s *AuthService) sign(claims Claims, subject string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ParseToken validates a signed token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// AdminLogin exchanges the admin password for an admin token
func (s *AuthService) AdminLogin(password string) (*domain.AuthResponse, error) {
	if s.adminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		s.logger.Info("Rejected admin login")
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.IssueAdminToken()
	if err != nil {
		return nil, err
	}
	s.logger.Info("Admin logged in")
	return &domain.AuthResponse{Token: token, ExpiresAt: expiresAt}, nil
}
