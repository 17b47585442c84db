package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/proximahq/proxima/pkg/api"
	"github.com/proximahq/proxima/pkg/auth"
	"github.com/proximahq/proxima/pkg/config"
	"github.com/proximahq/proxima/pkg/manage"
	"github.com/proximahq/proxima/pkg/middleware"
	"github.com/proximahq/proxima/pkg/observability"
	"github.com/proximahq/proxima/pkg/rbac"
	"github.com/proximahq/proxima/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.LogLevel), os.Stdout)

	db, err := openDatabase(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to connect to postgres")
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := openRedis(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	codec, err := auth.NewCodec([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)
	if err != nil {
		logger.WithError(err).Error("failed to build credential codec")
		os.Exit(1)
	}

	blobs, err := storage.NewBlobStore(cfg.Upload.Dir)
	if err != nil {
		logger.WithError(err).Error("failed to prepare upload directory")
		os.Exit(1)
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hasher := auth.NewPasswordHasher()
	sessions := auth.NewSessionStore(redisClient)
	resolver := rbac.NewResolver(db)
	userStore := manage.NewUserStore(db)

	authService := auth.NewService(userStore, resolver, sessions, codec, hasher, cfg.Auth.TokenTTL, logger)

	server := api.NewServer(api.ServerConfig{
		AuthService:      authService,
		UserService:      manage.NewUserService(userStore, hasher, logger),
		RoleService:      manage.NewRoleService(manage.NewRoleStore(db), resolver, logger),
		AuthorityService: manage.NewAuthorityService(manage.NewAuthorityStore(db), logger),
		FileService:      storage.NewFileService(blobs, storage.NewFileStore(db), logger),
		Authenticator:    middleware.NewAuthenticator(codec, sessions, cfg.Auth.TokenTTL, metrics),
		LoginLimiter:     middleware.NewLoginRateLimiter(redisClient, cfg.Auth.LoginRateLimit, time.Minute),
		Health:           observability.NewHealthChecker(db, redisClient),
		Metrics:          metrics,
		Logger:           logger,
		MaxUploadSize:    cfg.Upload.MaxUploadSize,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return redisClient.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return db.Close()
	})

	go func() {
		defer observability.RecoverPanic(logger, "http server")
		logger.WithField("addr", httpServer.Addr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown failed")
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openRedis(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB >= 0 {
		opts.DB = cfg.Redis.DB
	}
	if cfg.Redis.PoolSize > 0 {
		opts.PoolSize = cfg.Redis.PoolSize
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
