package container

import (
	"context"
	"fmt"

	"eventvote/internal/config"
	"eventvote/internal/repository"
	"eventvote/internal/service"
	"eventvote/pkg/database"
	"eventvote/pkg/logger"
	"eventvote/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB // nil when running on the in-memory store
	RedisClient  *redis.Client        // nil when Redis is not configured or unreachable
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container. A database failure is
// fatal; a Redis failure only disables the vote lock and cross-instance
// notifications.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	var (
		db    *database.PostgresDB
		repos *repository.Repositories
	)
	if cfg.DatabaseURL != "" {
		pg, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db = pg
		repos = repository.NewPostgresRepositories(db)
		logger.Info("Using PostgreSQL store")
	} else {
		repos, _ = repository.NewMemoryRepositories()
		logger.Warn("DATABASE_URL not configured, using in-memory store")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without vote lock")
		} else {
			redisClient = client
			logger.WithField("key_prefix", client.KeyBuilder.GetPrefix()).Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, using in-process notifications")
	}

	c := NewWithRepositories(cfg, logger, repos, redisClient)
	c.DB = db
	return c, nil
}

// NewWithRepositories wires the services on top of existing repositories
func NewWithRepositories(cfg *config.Config, logger *logger.Logger, repos *repository.Repositories, redisClient *redis.Client) *Container {
	log := logger.Logger

	var notifier service.ChangeNotifier
	if redisClient != nil {
		notifier = service.NewRedisNotifier(redisClient, log)
	} else {
		notifier = service.NewLocalNotifier(log)
	}

	auth := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL, cfg.AdminPassword, log)

	services := &service.Services{
		Auth:        auth,
		Teams:       service.NewTeamService(repos.Team, repos.Account, auth, notifier, log),
		Voting:      service.NewVotingService(repos.Team, repos.Vote, repos.Settings, redisClient, notifier, cfg.VoteLockTTL, log),
		Session:     service.NewSessionService(repos.Settings, repos.Team, notifier, cfg.VotingClearDelay, log),
		Leaderboard: service.NewLeaderboardService(repos.Team, repos.Vote, repos.Settings, notifier, log),
		Admin:       service.NewAdminService(repos.Team, repos.Vote, repos.Account, notifier, log),
		Notifier:    notifier,
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
	}
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// HasDatabase returns true when backed by PostgreSQL
func (c *Container) HasDatabase() bool {
	return c.DB != nil
}

// HealthChecks returns a check per configured backend
func (c *Container) HealthChecks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if c.DB != nil {
		checks["database"] = c.DB.Health
	}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient.Health
	}
	return checks
}

// Close stops background work and releases connections
func (c *Container) Close() error {
	c.Services.Session.Stop()

	var firstErr error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Error("Failed to close Redis connection")
			firstErr = fmt.Errorf("redis close: %w", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	return firstErr
}
