package scheduler

import (
	"context"
	"fmt"

	"countertop_quote_backend/platform/apperr"
	"countertop_quote_backend/platform/config"
	"countertop_quote_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// NarrativeJobProcessor generates the narrative for a stored job.
type NarrativeJobProcessor interface {
	ProcessNarrativeJob(ctx context.Context, id uuid.UUID) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor NarrativeJobProcessor
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor NarrativeJobProcessor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:    server,
		processor: processor,
		log:       log,
	}
	w.mux = newServeMux(w)
	return w, nil
}

func newServeMux(w *Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNarrativeGenerate, w.handleNarrativeJob)
	return mux
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleNarrativeJob(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNarrativeJobPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.processor.ProcessNarrativeJob(ctx, jobID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("narrative job expired before processing", "jobId", jobID)
			return nil
		}
		return err
	}
	return nil
}
