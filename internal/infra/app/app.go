package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/port"
	"github.com/arklim/user-permission-service/internal/infra/config"
	"github.com/arklim/user-permission-service/internal/infra/database"
	kafkainfra "github.com/arklim/user-permission-service/internal/infra/kafka"
	"github.com/arklim/user-permission-service/internal/infra/logger"
	redisinfra "github.com/arklim/user-permission-service/internal/infra/redis"
	"github.com/arklim/user-permission-service/internal/infra/security"
	"github.com/arklim/user-permission-service/internal/infra/telemetry"
	postgresrepo "github.com/arklim/user-permission-service/internal/repository/postgres"
	redisrepo "github.com/arklim/user-permission-service/internal/repository/redis"
	"github.com/arklim/user-permission-service/internal/transport/http/routes"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// Application wires configuration, storage, services, and transport
// into one runnable unit.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

// New assembles the application. Redis and Kafka are optional: with no
// Redis host the in-process cache store is used, and with no Kafka
// brokers events go to the logging stub.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	app := &Application{cfg: cfg, logger: log, pool: pool}

	var store port.CacheStore
	if cfg.Redis.Host != "" {
		redisClient, err := redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		app.redis = redisClient
		store = redisrepo.NewCacheStore(redisClient.Client())
	} else {
		log.Info("redis not configured, using in-process cache store")
		store = cache.NewMemoryStore()
	}

	var publisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			publisher = kafkainfra.NewStubPublisher(log)
		} else {
			app.kafka = producer
			publisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		publisher = kafkainfra.NewStubPublisher(log)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	hasher := security.NewHasher(cfg.Security.HashAlgo, security.Argon2Config{
		Memory:      cfg.Security.Argon2Memory,
		Iterations:  cfg.Security.Argon2Iterations,
		Parallelism: cfg.Security.Argon2Parallelism,
		SaltLength:  cfg.Security.Argon2SaltLength,
		KeyLength:   cfg.Security.Argon2KeyLength,
	})

	tokens, err := security.NewTokenIssuer(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.AccessTokenTTL,
		security.WithLeeway(cfg.JWT.Leeway),
	)
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	passwords := security.NewPasswordValidator(security.MinLengthRule(cfg.Security.PasswordMinLength))
	invalidator := cache.NewInvalidator(store, log)

	userRepo := postgresrepo.NewUserRepository(pool)
	roleRepo := postgresrepo.NewRoleRepository(pool)
	permissionRepo := postgresrepo.NewPermissionRepository(pool)
	menuRepo := postgresrepo.NewMenuRepository(pool)

	resolver := usecase.NewPermissionResolver(roleRepo, store, cfg.Cache.PermissionTTL)

	authService, err := usecase.NewAuthService(usecase.AuthServiceDeps{
		Users:       userRepo,
		Roles:       roleRepo,
		Hasher:      hasher,
		Tokens:      tokens,
		Resolver:    resolver,
		Passwords:   passwords,
		Store:       store,
		Invalidator: invalidator,
		Publisher:   publisher,
		CacheTTL:    cfg.Cache.UserTTL,
		Metrics:     metrics,
		Logger:      log,
	})
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	userService, err := usecase.NewUserService(usecase.UserServiceDeps{
		Users:       userRepo,
		Roles:       roleRepo,
		Hasher:      hasher,
		Passwords:   passwords,
		Store:       store,
		Invalidator: invalidator,
		Publisher:   publisher,
		CacheTTL:    cfg.Cache.ListTTL,
		Logger:      log,
	})
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("init user service: %w", err)
	}

	roleService, err := usecase.NewRoleService(usecase.RoleServiceDeps{
		Roles:       roleRepo,
		Permissions: permissionRepo,
		Store:       store,
		Invalidator: invalidator,
		Publisher:   publisher,
		CacheTTL:    cfg.Cache.ListTTL,
		Logger:      log,
	})
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("init role service: %w", err)
	}

	permissionService, err := usecase.NewPermissionService(usecase.PermissionServiceDeps{
		Permissions: permissionRepo,
		Store:       store,
		Invalidator: invalidator,
		Publisher:   publisher,
		CacheTTL:    cfg.Cache.ListTTL,
		Logger:      log,
	})
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("init permission service: %w", err)
	}

	menuService, err := usecase.NewMenuService(usecase.MenuServiceDeps{
		Menus:       menuRepo,
		Resolver:    resolver,
		Store:       store,
		Invalidator: invalidator,
		Publisher:   publisher,
		CacheTTL:    cfg.Cache.ListTTL,
		Logger:      log,
	})
	if err != nil {
		app.closeBackends()
		return nil, fmt.Errorf("init menu service: %w", err)
	}

	app.engine = routes.Register(routes.Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
		DB:      pool,
		Services: routes.ServiceSet{
			Auth:        authService,
			Users:       userService,
			Roles:       roleService,
			Permissions: permissionService,
			Menus:       menuService,
		},
	})

	return app, nil
}

// Run starts the HTTP server and blocks until the context is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.closeBackends()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting user permission API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func (a *Application) closeBackends() {
	if a.kafka != nil {
		_ = a.kafka.Close()
		a.kafka = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
