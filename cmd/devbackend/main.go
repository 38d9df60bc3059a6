package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serenespa/admin-console/handlers"
	"github.com/serenespa/admin-console/internal/admins"
	"github.com/serenespa/admin-console/internal/catalog/repository"
	"github.com/serenespa/admin-console/internal/config"
	"github.com/serenespa/admin-console/internal/database"
	"github.com/serenespa/admin-console/internal/media"
	"github.com/serenespa/admin-console/internal/sessions"
	"github.com/serenespa/admin-console/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	if cfg.JWT.Secret == "" {
		logger.Fatalf("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("dev backend: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps := handlers.Deps{Config: cfg}

	// Prefer Redis-based sessions when configured
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v; using in-process sessions", addr, err)
			rdb = nil
		} else {
			defer rdb.Close()
			deps.Sessions = sessions.NewService(sessions.NewRedisRepository(rdb, "session:"))
			deps.Blacklist = sessions.NewRedisBlacklist(rdb)
			logger.Infof("Using Redis for session storage: %s", addr)
		}
	}

	if cfg.MongoDB.URI != "" {
		m, err := database.Connect(ctx, cfg.MongoDB)
		if err != nil {
			logger.Warnf("could not connect to MongoDB: %v; using memory-backed repos", err)
		} else {
			defer func() { _ = m.Close(context.Background()) }()
			db := m.DB
			deps.Admins = admins.NewService(admins.NewMongoRepository(db.Collection(database.AdminsCollection)))
			if deps.Services, err = repository.NewMongoRepo(ctx, db); err != nil {
				return fmt.Errorf("services repo: %w", err)
			}
			if deps.Sessions == nil {
				srepo, err := sessions.NewMongoRepository(ctx, db.Collection(database.SessionsCollection))
				if err != nil {
					return fmt.Errorf("sessions repo: %w", err)
				}
				deps.Sessions = sessions.NewService(srepo)
			}
		}
	}

	if deps.Admins == nil {
		deps.Admins = admins.NewService(admins.NewMemoryRepository())
	}
	if deps.Services == nil {
		deps.Services = repository.NewMemoryRepo()
	}
	if deps.Sessions == nil {
		deps.Sessions = sessions.NewService(sessions.NewMemoryRepository())
	}
	if deps.Blacklist == nil {
		deps.Blacklist = sessions.NewMemoryBlacklist()
	}

	store, err := mediaStore(ctx, cfg)
	if err != nil {
		return err
	}
	deps.Media = store

	if err := handlers.SeedDev(ctx, cfg, deps.Admins, deps.Services); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.DevBackend.Port,
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Infof("dev backend listening on %s (redis=%v mongo=%v)", srv.Addr, rdb != nil, cfg.MongoDB.URI != "")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func mediaStore(ctx context.Context, cfg *config.Config) (media.Store, error) {
	if cfg.Media.Driver == "minio" {
		s, err := media.NewMinIOStore(ctx, cfg.Media.MinIO, cfg.Media.Folder)
		if err != nil {
			return nil, fmt.Errorf("media store: %w", err)
		}
		logger.Infof("storing media in MinIO bucket %s", cfg.Media.MinIO.Bucket)
		return s, nil
	}
	return media.NewMemoryStore(cfg.Media.Folder, "http://localhost:"+cfg.DevBackend.Port+"/media"), nil
}
