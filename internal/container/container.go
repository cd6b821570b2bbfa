package container

import (
	"context"
	"fmt"
	"time"

	"courtracker/internal/annict"
	"courtracker/internal/auth"
	"courtracker/internal/cache"
	"courtracker/internal/config"
	"courtracker/internal/datastore"
	"courtracker/internal/jikan"
	"courtracker/internal/logger"
	"courtracker/internal/models"
	"courtracker/internal/progress"
	"courtracker/internal/services"
	"courtracker/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Container struct {
	DB           *pgxpool.Pool
	Redis        *redis.Client
	Logger       *logrus.Logger
	AnimeService *services.AnimeService
	Overrides    *datastore.OverrideStore
	Progress     *progress.Store
	Auth         *auth.Manager
}

func New(ctx context.Context) (*Container, error) {
	logger := logger.Get()

	c := &Container{Logger: logger}

	store, err := c.newStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	jsonStore := storage.NewJSONStore(store, logger)

	annictURL, annictToken := config.AnnictConfig()
	metadata := annict.NewClient(annict.Config{
		APIURL: annictURL,
		Token:  annictToken,
		Logger: logger,
	})
	ratings := jikan.NewClient(jikan.Config{
		BaseURL: config.JikanConfig(),
		Logger:  logger,
	})

	overrides := datastore.New(jsonStore, logger)
	passwordHash, jwtSecret := config.AdminConfig()

	c.Overrides = overrides
	c.Progress = progress.New(jsonStore)
	c.Auth = auth.NewManager(jwtSecret, passwordHash)
	c.AnimeService = services.NewAnimeService(
		metadata,
		ratings,
		cache.New[models.Anime](cache.SeasonPrefix, jsonStore, logger),
		cache.New[models.Anime](cache.AdminPrefix, jsonStore, logger),
		overrides,
		logger,
	)
	return c, nil
}

func (c *Container) Close() {
	if c.Redis != nil {
		c.Redis.Close()
		c.Logger.Info("Redis connection closed")
	}
	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("Database connection closed")
	}
}

// newStore builds the key-value store adapter selected by STORE_BACKEND.
func (c *Container) newStore(ctx context.Context) (storage.Store, error) {
	switch backend := config.StoreBackend(); backend {
	case "postgres":
		pool, err := newDatabase(ctx)
		if err != nil {
			return nil, err
		}
		c.DB = pool
		store := storage.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			c.DB = nil
			return nil, err
		}
		return store, nil
	case "redis":
		client, err := newRedis(ctx)
		if err != nil {
			return nil, err
		}
		c.Redis = client
		return storage.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func newDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	host, port, user, password, databaseName := config.DatabaseConfig()

	if host == "" || port == "" || user == "" || password == "" || databaseName == "" {
		return nil, fmt.Errorf("missing required database configuration")
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, databaseName)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Get().Info("Database connection successful")
	return pool, nil
}

func newRedis(ctx context.Context) (*redis.Client, error) {
	host, port, password := config.RedisConfig()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Get().Info("Redis connection successful")
	return client, nil
}
