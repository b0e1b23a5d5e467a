package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noteshare/cmd/server/handlers"
	"noteshare/internal/clients/ai"
	mongo "noteshare/internal/clients/mongo" // mongo client singleton
	redisclient "noteshare/internal/clients/redis"
	"noteshare/internal/config"
	"noteshare/internal/logger"
	"noteshare/internal/services/assistant"
	"noteshare/internal/services/auth"
	"noteshare/internal/services/notes"

	"github.com/grafana/pyroscope-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 25 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	undoMaxProcs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logg.Info(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		logg.Warn("failed to set GOMAXPROCS", "err", err)
	}
	defer undoMaxProcs()

	if cfg.PyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "noteshare",
			ServerAddress:   cfg.PyroscopeAddr,
		})
		if err != nil {
			logg.Warn("pyroscope disabled", "err", err)
		} else {
			defer func() { _ = profiler.Stop() }()
		}
	}

	_, db, err := mongo.Init(ctx, cfg, logg)
	if err != nil {
		logg.Error("mongo init", "err", err)
		os.Exit(1)
	}

	svc, rdb, err := buildServices(ctx, cfg, logg)
	if err != nil {
		logg.Error("service init", "err", err)
		os.Exit(1)
	}
	svc.Checks = append([]handlers.Check{handlers.MongoCheck()}, svc.Checks...)

	logg.Info("starting NoteShare", "port", cfg.AppPort, "db", db.Name(),
		"redis", rdb != nil, "assistant", cfg.AIEnabled())

	app := setupRouter(cfg, svc)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				logg.Warn("redis close", "err", err)
			}
		}
		return mongo.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}

// buildServices wires repositories, optional Redis and the assistant backend.
// The returned Redis client is nil when REDIS_ADDR is unset.
func buildServices(ctx context.Context, cfg config.Config, logg *slog.Logger) (services, *redis.Client, error) {
	db := mongo.DB()

	usersRepo, err := mongo.NewUsersRepo(ctx, db)
	if err != nil {
		return services{}, nil, err
	}
	notesRepo, err := mongo.NewNotesRepo(ctx, db)
	if err != nil {
		return services{}, nil, err
	}
	ratingsRepo, err := mongo.NewRatingsRepo(ctx, db)
	if err != nil {
		return services{}, nil, err
	}
	commentsRepo, err := mongo.NewCommentsRepo(ctx, db)
	if err != nil {
		return services{}, nil, err
	}

	var (
		views  notes.ViewTracker
		rdb    *redis.Client
		checks []handlers.Check
	)
	if cfg.RedisAddr != "" {
		rdb, err = redisclient.New(ctx, cfg, logg)
		if err != nil {
			return services{}, nil, err
		}
		views = redisclient.NewViewTracker(rdb, time.Duration(cfg.ViewDedupHours)*time.Hour)
		checks = append(checks, handlers.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	} else {
		logg.Info("REDIS_ADDR not set, every note open counts as a view")
	}

	hub := notes.NewHub(cfg.WSOutboxBuffer)
	notesSvc := notes.NewService(notes.Stores{
		Notes:    notesRepo,
		Ratings:  ratingsRepo,
		Comments: commentsRepo,
		Users:    usersRepo,
	}, views, hub, logg)

	authSvc := auth.NewService(usersRepo, cfg, logg)

	var completer assistant.Completer
	if cfg.AIEnabled() {
		completer = ai.New(cfg)
	} else {
		logg.Info("AI_API_KEY not set, assistant chat disabled")
	}
	assistantSvc := assistant.NewService(notesSvc, authSvc, completer, int64(cfg.AIMaxFileMB)<<20, logg)

	return services{
		Auth:      authSvc,
		Notes:     notesSvc,
		Assistant: assistantSvc,
		Hub:       hub,
		Feed:      hub,
		Checks:    checks,
	}, rdb, nil
}
