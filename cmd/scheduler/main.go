package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"countertop_quote_backend/internal/estimates"
	"countertop_quote_backend/internal/estimates/domain"
	estimaterepo "countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/events"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/internal/scheduler"
	"countertop_quote_backend/platform/ai/moonshot"
	"countertop_quote_backend/platform/config"
	"countertop_quote_backend/platform/db"
	"countertop_quote_backend/platform/logger"
	"countertop_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.IsRedisEnabled() {
		panic("REDIS_URL is required for the scheduler")
	}

	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
	}

	rdb, err := scheduler.NewRedisClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		panic("invalid REDIS_URL: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	policy, err := domain.LoadPolicy(cfg.GetPricingPolicyFile())
	if err != nil {
		log.Error("failed to load pricing policy", "error", err)
		panic("failed to load pricing policy: " + err.Error())
	}

	provider := pricing.NewProviderFromConfig(cfg, log)
	go provider.Run(ctx)

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Worker-side narrative wiring (no HTTP handlers required).
	estimatesModule := estimates.NewModule(provider, policy, pool, eventBus, validator.New(), log)
	estimatesModule.SetJobs(estimaterepo.NewJobStore(rdb, cfg.GetNarrativeJobTTL()), nil)
	if cfg.IsLLMEnabled() {
		llm := moonshot.NewModel(moonshot.Config{
			APIKey:  cfg.GetMoonshotAPIKey(),
			BaseURL: cfg.GetMoonshotBaseURL(),
			Model:   cfg.GetMoonshotModel(),
			Timeout: cfg.GetLLMTimeout(),
		})
		writer, err := narrative.NewWriter(llm, log)
		if err != nil {
			panic("failed to initialize narrative writer: " + err.Error())
		}
		estimatesModule.SetNarrator(writer)
	} else {
		log.Warn("MOONSHOT_API_KEY not configured; queued narratives will be marked disabled")
	}

	if pool != nil {
		cleanupInterval := getDurationEnv("ESTIMATE_HISTORY_CLEANUP_INTERVAL", time.Hour)
		retention := time.Duration(getPositiveIntEnv("ESTIMATE_HISTORY_RETENTION_DAYS", 90)) * 24 * time.Hour
		historyCleanup := scheduler.NewHistoryCleanup(estimaterepo.NewHistoryRepository(pool), log, cleanupInterval, retention)
		go historyCleanup.Run(ctx)
	}

	worker, err := scheduler.NewWorker(cfg, estimatesModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
