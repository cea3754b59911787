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

	"countertop_quote_backend/internal/chat"
	chatrepo "countertop_quote_backend/internal/chat/repository"
	"countertop_quote_backend/internal/countertops"
	"countertop_quote_backend/internal/estimates"
	"countertop_quote_backend/internal/estimates/domain"
	estimaterepo "countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/events"
	apphttp "countertop_quote_backend/internal/http"
	"countertop_quote_backend/internal/http/router"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/internal/scheduler"
	"countertop_quote_backend/platform/ai/moonshot"
	"countertop_quote_backend/platform/config"
	"countertop_quote_backend/platform/db"
	"countertop_quote_backend/platform/logger"
	"countertop_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool := initDatabase(ctx, cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	rdb := initRedis(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	policy, err := domain.LoadPolicy(cfg.GetPricingPolicyFile())
	if err != nil {
		log.Error("failed to load pricing policy", "error", err)
		panic("failed to load pricing policy: " + err.Error())
	}

	provider := pricing.NewProviderFromConfig(cfg, log)
	go provider.Run(ctx)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	estimatesModule := estimates.NewModule(provider, policy, pool, eventBus, val, log)
	chatModule := chat.NewModule(provider, policy, eventBus, val, log)

	if cfg.IsLLMEnabled() {
		llm := moonshot.NewModel(moonshot.Config{
			APIKey:  cfg.GetMoonshotAPIKey(),
			BaseURL: cfg.GetMoonshotBaseURL(),
			Model:   cfg.GetMoonshotModel(),
			Timeout: cfg.GetLLMTimeout(),
		})
		writer, err := narrative.NewWriter(llm, log)
		if err != nil {
			log.Error("failed to initialize narrative writer", "error", err)
			panic("failed to initialize narrative writer: " + err.Error())
		}
		estimatesModule.SetNarrator(writer)
		chatModule.SetCompleter(narrative.NewModelCompleter(llm))
		log.Info("language model enabled", "model", llm.Name())
	} else {
		log.Warn("MOONSHOT_API_KEY not configured; narratives and chat delegation disabled")
	}

	if rdb != nil {
		chatModule.SetSessions(chatrepo.NewSessionStore(rdb, cfg.GetChatSessionTTL()))

		queue, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
		} else {
			defer func() { _ = queue.Close() }()
			estimatesModule.SetJobs(estimaterepo.NewJobStore(rdb, cfg.GetNarrativeJobTTL()), queue)
		}
	}

	modules := []apphttp.Module{estimatesModule, chatModule}
	health := []apphttp.HealthChecker{db.NewPoolAdapter(pool)}
	if pool != nil {
		modules = append(modules, countertops.NewModule(pool, val, log))
	}
	if rdb != nil {
		health = append(health, redisPinger{rdb})
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules:  modules,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initDatabase runs migrations and opens the pool. Without DATABASE_URL the
// countertop catalog and estimate history are disabled.
func initDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) *pgxpool.Pool {
	if !cfg.IsDatabaseEnabled() {
		log.Warn("DATABASE_URL not configured; countertop catalog and estimate history disabled")
		return nil
	}

	var pool *pgxpool.Pool
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
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		pool.Close()
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")
	return pool
}

// initRedis opens the client shared by chat sessions and narrative jobs.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; chat sessions and background narratives disabled")
		return nil
	}

	rdb, err := scheduler.NewRedisClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		panic("invalid REDIS_URL: " + err.Error())
	}
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		_ = rdb.Close()
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")
	return rdb
}

type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
