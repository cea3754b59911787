// Package repository persists estimate history (Postgres) and queued
// narrative jobs (Redis).
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/narrative"
	"countertop_quote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const narrativeJobKeyPrefix = "estimates:narrative_job:"

// NarrativeJob is a queued narrative request plus its outcome.
type NarrativeJob struct {
	ID              uuid.UUID              `json:"id"`
	Status          string                 `json:"status"`
	Request         domain.Request         `json:"request"`
	Result          domain.Result          `json:"result"`
	Customer        narrative.CustomerMeta `json:"customer"`
	Narrative       string                 `json:"narrative,omitempty"`
	NarrativeStatus string                 `json:"narrativeStatus"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// Job statuses.
const (
	JobStatusPending   = "pending"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// JobStore keeps narrative jobs in Redis with a TTL.
type JobStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewJobStore creates a Redis-backed job store.
func NewJobStore(rdb redis.UniversalClient, ttl time.Duration) *JobStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobStore{rdb: rdb, ttl: ttl}
}

// Save writes job, refreshing its TTL.
func (s *JobStore) Save(ctx context.Context, job NarrativeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode narrative job: %w", err)
	}
	if err := s.rdb.Set(ctx, narrativeJobKeyPrefix+job.ID.String(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save narrative job: %w", err)
	}
	return nil
}

// Get loads a job by id.
func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (NarrativeJob, error) {
	data, err := s.rdb.Get(ctx, narrativeJobKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NarrativeJob{}, apperr.NotFound("narrative job not found")
		}
		return NarrativeJob{}, fmt.Errorf("failed to load narrative job: %w", err)
	}

	var job NarrativeJob
	if err := json.Unmarshal(data, &job); err != nil {
		return NarrativeJob{}, fmt.Errorf("failed to decode narrative job: %w", err)
	}
	return job, nil
}
