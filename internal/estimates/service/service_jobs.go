package service

import (
	"context"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/estimates/repository"
	"countertop_quote_backend/internal/events"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/platform/apperr"

	"github.com/google/uuid"
)

// EnqueueNarrative computes the estimate now and queues its narrative.
func (s *Service) EnqueueNarrative(ctx context.Context, req domain.Request, meta narrative.CustomerMeta) (repository.NarrativeJob, error) {
	if s.jobs == nil || s.queue == nil {
		return repository.NarrativeJob{}, apperr.Unavailable("background narrative jobs are not configured")
	}

	est, err := s.Calculate(ctx, req, events.SourceJob)
	if err != nil {
		return repository.NarrativeJob{}, err
	}

	now := s.now().UTC()
	job := repository.NarrativeJob{
		ID:              est.ID,
		Status:          repository.JobStatusPending,
		Request:         est.Request,
		Result:          est.Result,
		Customer:        meta,
		NarrativeStatus: narrative.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if s.narrator == nil {
		job.Status = repository.JobStatusCompleted
		job.NarrativeStatus = narrative.StatusDisabled
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		return repository.NarrativeJob{}, err
	}
	if job.Status != repository.JobStatusPending {
		return job, nil
	}

	if err := s.queue.EnqueueNarrativeJob(ctx, job.ID); err != nil {
		s.log.WithContext(ctx).UpstreamFailure("asynq", "enqueue_narrative", err)
		job.Status = repository.JobStatusFailed
		job.NarrativeStatus = narrative.StatusFailed
		job.Narrative = narrative.FailureMarker
		job.UpdatedAt = s.now().UTC()
		if saveErr := s.jobs.Save(ctx, job); saveErr != nil {
			s.log.Error("failed to mark narrative job failed", "job_id", job.ID, "error", saveErr)
		}
	}
	return job, nil
}

// GetNarrativeJob loads a job.
func (s *Service) GetNarrativeJob(ctx context.Context, id uuid.UUID) (repository.NarrativeJob, error) {
	if s.jobs == nil {
		return repository.NarrativeJob{}, apperr.Unavailable("background narrative jobs are not configured")
	}
	return s.jobs.Get(ctx, id)
}

// ProcessNarrativeJob is run by the worker. Finished jobs are left alone so
// a redelivered task does not call the model twice.
func (s *Service) ProcessNarrativeJob(ctx context.Context, id uuid.UUID) error {
	if s.jobs == nil {
		return apperr.Unavailable("background narrative jobs are not configured")
	}

	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != repository.JobStatusPending {
		return nil
	}

	doc := narrative.Build(job.Request, job.Result, job.Customer)
	job.Narrative, job.NarrativeStatus = narrative.Narrate(ctx, s.narrator, doc, s.log)
	job.Status = repository.JobStatusCompleted
	if job.NarrativeStatus == narrative.StatusFailed {
		job.Status = repository.JobStatusFailed
	}
	job.UpdatedAt = s.now().UTC()

	if err := s.jobs.Save(ctx, job); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NarrativeJobFinished{
			BaseEvent: events.NewBaseEvent(),
			JobID:     job.ID,
			Status:    job.Status,
		})
	}
	return nil
}
