package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iforaa/quartergate/db"
	"github.com/iforaa/quartergate/internal/config"
	"github.com/iforaa/quartergate/internal/pipeline"
	"github.com/iforaa/quartergate/pkg/blob"
	"github.com/iforaa/quartergate/pkg/calendar"
	"github.com/iforaa/quartergate/pkg/llm"
	"github.com/iforaa/quartergate/pkg/telegram"
	"github.com/iforaa/quartergate/pkg/transcript"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

const runLockTTL = time.Hour

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("pipeline exited", "error", err)
		os.Exit(1)
	}
}

// run closes everything it opens before returning.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("error connecting to DB: %w", err)
	}
	defer db.Close(conn)

	if err := db.Migrate(ctx, conn); err != nil {
		return fmt.Errorf("error migrating schema: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("error connecting to Redis: %w", err)
		}
		defer db.CloseRedis(redisClient)
	}

	runner, err := newRunner(ctx, cfg, pipeline.NewSQLOpener(conn), redisClient)
	if err != nil {
		return fmt.Errorf("error building pipeline: %w", err)
	}

	if cfg.Schedule == "" {
		return runOnce(ctx, runner, cfg)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{})))
	_, err = c.AddFunc(cfg.Schedule, func() {
		if _, err := runner.Run(ctx, cfg.DaysAgo, cfg.MaxSymbols); err != nil {
			if errors.Is(err, db.ErrLockHeld) {
				slog.Warn("previous run still active, skipping", "error", err)
				return
			}
			slog.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid SCHEDULE %q: %w", cfg.Schedule, err)
	}

	slog.Info("scheduler started", "schedule", cfg.Schedule)
	c.Start()

	<-ctx.Done()
	slog.Info("shutting down, waiting for active run")
	<-c.Stop().Done()
	return nil
}

type batchRunner interface {
	Run(ctx context.Context, daysAgo, maxSymbols int) (pipeline.Stats, error)
}

func runOnce(ctx context.Context, runner batchRunner, cfg *config.Config) error {
	stats, err := runner.Run(ctx, cfg.DaysAgo, cfg.MaxSymbols)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}
	slog.Info("pipeline run complete", "published", stats.Published, "failed", stats.Failed)
	return nil
}

func newRunner(ctx context.Context, cfg *config.Config, stores pipeline.StoreOpener, redisClient *redis.Client) (*pipeline.Runner, error) {
	var cal calendar.Calendar
	switch cfg.CalendarProvider {
	case "finnhub":
		cal = calendar.NewFinnhubCalendar(cfg.FinnhubAPIKey)
	default:
		cal = calendar.NewNasdaqCalendar()
	}

	completer, err := llm.New(ctx, cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
	if err != nil {
		return nil, err
	}

	var blobs blob.Store
	switch cfg.BlobProvider {
	case "supabase":
		blobs, err = blob.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
		if err != nil {
			return nil, err
		}
	default:
		blobs = blob.NewWorkerStore(cfg.DataStoreURL)
	}

	publisher, err := telegram.NewBotPublisher(cfg.TelegramToken, cfg.TelegramChannel)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Detector:    calendar.NewDetector(cal),
		Stores:      stores,
		Transcripts: transcript.NewNinjasClient(cfg.NinjasURL, cfg.NinjasToken),
		Completer:   completer,
		Blobs:       blobs,
		Publisher:   publisher,
		Delay:       cfg.TickerDelay,
	}
	if cfg.TickerDelay == 0 {
		deps.Delay = -1
	}
	if redisClient != nil {
		deps.Locker = db.NewRunLock(redisClient, runLockTTL)
	}

	slog.Info("pipeline configured",
		"calendar", cal.Name(),
		"llm_model", completer.Model(),
		"blob_store", blobs.Name(),
		"run_lock", redisClient != nil,
	)

	return pipeline.NewRunner(deps), nil
}

// cronLogger routes scheduler messages through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error(fmt.Sprintf("cron: %s", msg), append(keysAndValues, "error", err)...)
}
