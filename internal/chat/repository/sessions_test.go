package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testState struct {
	MaterialKey string  `json:"materialKey"`
	AreaUnits   float64 `json:"areaUnits"`
}

func newTestSessions(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb, 30*time.Minute), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, _ := newTestSessions(t)
	ctx := context.Background()

	if err := store.Save(ctx, "abc", testState{MaterialKey: "granite", AreaUnits: 25}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var got testState
	found, err := store.Load(ctx, "abc", &got)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found || got.MaterialKey != "granite" || got.AreaUnits != 25 {
		t.Fatalf("unexpected session found=%v state=%+v", found, got)
	}
}

func TestSessionStore_MissingAndDeleted(t *testing.T) {
	store, _ := newTestSessions(t)
	ctx := context.Background()

	var got testState
	found, err := store.Load(ctx, "nope", &got)
	if err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	if err := store.Save(ctx, "abc", testState{MaterialKey: "quartz"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	found, err = store.Load(ctx, "abc", &got)
	if err != nil || found {
		t.Fatalf("expected deleted session to be gone, found=%v err=%v", found, err)
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestSessionStore_Expires(t *testing.T) {
	store, mr := newTestSessions(t)
	ctx := context.Background()

	if err := store.Save(ctx, "abc", testState{AreaUnits: 10}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(31 * time.Minute)

	var got testState
	found, err := store.Load(ctx, "abc", &got)
	if err != nil || found {
		t.Fatalf("expected expired session, found=%v err=%v", found, err)
	}
}
