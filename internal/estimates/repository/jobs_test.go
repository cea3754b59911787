package repository

import (
	"context"
	"testing"
	"time"

	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/platform/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) (*JobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewJobStore(rdb, time.Hour), mr
}

func TestJobStore_SaveAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	job := NarrativeJob{
		ID:      uuid.New(),
		Status:  JobStatusPending,
		Request: domain.Request{AreaUnits: 30, MaterialKey: "calacatta quartz", JobType: domain.JobInstall},
		Result: domain.Result{
			MaterialKey: "calacatta quartz",
			SlabCount:   1,
			TotalCost:   decimal.RequireFromString("3105.00"),
		},
		NarrativeStatus: "pending",
	}
	if err := store.Save(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != JobStatusPending || got.Request.AreaUnits != 30 {
		t.Fatalf("unexpected job %+v", got)
	}
	if !got.Result.TotalCost.Equal(decimal.NewFromInt(3105)) {
		t.Fatalf("total did not survive storage: %s", got.Result.TotalCost)
	}
}

func TestJobStore_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	job := NarrativeJob{ID: uuid.New(), Status: JobStatusPending}
	if err := store.Save(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	if _, err := store.Get(ctx, job.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after ttl, got %v", err)
	}
}
