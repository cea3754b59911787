package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"countertop_quote_backend/platform/logger"
)

type fakeSource struct {
	mu    sync.Mutex
	body  []byte
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.body, f.err
}

func (f *fakeSource) set(body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = []byte(body)
	f.err = err
}

const goodSheet = "ColorName,CostPerArea,UnitsPerSlab\nCalacatta Quartz,45,55\nAbsolute Black,52,48\n"

func TestProvider_ServesStaticBeforeFirstRefresh(t *testing.T) {
	p := NewProvider(ProviderOptions{Source: &fakeSource{}}, logger.Nop())

	if !p.Snapshot().Fallback() {
		t.Fatalf("expected static snapshot before refresh")
	}
	if _, matched := p.Lookup("granite"); !matched {
		t.Fatalf("expected static table to price granite")
	}
}

func TestProvider_RefreshInstallsRemoteSnapshot(t *testing.T) {
	src := &fakeSource{}
	src.set(goodSheet, nil)
	p := NewProvider(ProviderOptions{Source: src}, logger.Nop())

	snap := p.Refresh(context.Background())
	if snap.Fallback() || snap.Len() != 2 {
		t.Fatalf("expected remote snapshot with 2 entries, got fallback=%v len=%d", snap.Fallback(), snap.Len())
	}
	if entry, matched := p.Lookup("absolute black"); !matched || entry.CostPerArea.StringFixed(2) != "52.00" {
		t.Fatalf("unexpected lookup %+v matched=%v", entry, matched)
	}
}

func TestProvider_FailedRefreshKeepsLastKnownGood(t *testing.T) {
	src := &fakeSource{}
	src.set(goodSheet, nil)
	p := NewProvider(ProviderOptions{Source: src}, logger.Nop())
	first := p.Refresh(context.Background())

	src.set("", errors.New("connection reset"))
	second := p.Refresh(context.Background())
	if second != first {
		t.Fatalf("expected previous snapshot to stay installed")
	}

	src.set("Nope\n", nil)
	if p.Refresh(context.Background()) != first {
		t.Fatalf("unparseable sheet must not replace snapshot")
	}
}

func TestProvider_FailedFirstRefreshFallsBackToStatic(t *testing.T) {
	src := &fakeSource{}
	src.set("", errors.New("dns failure"))
	p := NewProvider(ProviderOptions{Source: src}, logger.Nop())

	snap := p.Current(context.Background())
	if !snap.Fallback() {
		t.Fatalf("expected static fallback")
	}
	if entry, matched := snap.Lookup("quartz"); !matched || entry.CostPerArea.StringFixed(2) != "45.00" {
		t.Fatalf("unexpected static quartz entry %+v", entry)
	}
}

func TestProvider_CurrentServesStaleSnapshotWhileRefreshing(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var clock atomic.Int64
	clock.Store(now.UnixNano())

	src := &fakeSource{}
	src.set(goodSheet, nil)
	p := NewProvider(ProviderOptions{
		Source:          src,
		RefreshInterval: time.Minute,
		Now:             func() time.Time { return time.Unix(0, clock.Load()) },
	}, logger.Nop())

	first := p.Current(context.Background())
	if first.Fallback() {
		t.Fatalf("first Current must load synchronously")
	}
	if p.Current(context.Background()) != first || src.calls.Load() != 1 {
		t.Fatalf("fresh snapshot must not trigger a fetch")
	}

	src.gate = make(chan struct{})
	clock.Store(now.Add(2 * time.Minute).UnixNano())

	if p.Current(context.Background()) != first {
		t.Fatalf("stale snapshot must be returned without waiting")
	}
	close(src.gate)

	deadline := time.Now().Add(2 * time.Second)
	for p.Snapshot() == first {
		if time.Now().After(deadline) {
			t.Fatalf("background refresh never installed a new snapshot")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProvider_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	src.set(goodSheet, nil)
	p := NewProvider(ProviderOptions{Source: src}, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Refresh(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	if calls := src.calls.Load(); calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}

func TestProvider_FetchTimeoutIsBounded(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	p := NewProvider(ProviderOptions{Source: src, FetchTimeout: 20 * time.Millisecond}, logger.Nop())

	start := time.Now()
	snap := p.Current(context.Background())
	if time.Since(start) > time.Second {
		t.Fatalf("refresh exceeded fetch timeout")
	}
	if !snap.Fallback() {
		t.Fatalf("expected static fallback after timeout")
	}
}

func TestProvider_RefreshIgnoresCallerCancellation(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	src.set(goodSheet, nil)
	p := NewProvider(ProviderOptions{Source: src, FetchTimeout: time.Second}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *Snapshot, 1)
	go func() { done <- p.Current(ctx) }()

	cancel()
	close(src.gate)

	snap := <-done
	if snap.Fallback() || snap.Len() != 2 {
		t.Fatalf("expected the shared fetch to finish after the caller left, got fallback=%v len=%d", snap.Fallback(), snap.Len())
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(goodSheet))
	}))
	defer srv.Close()

	body, err := NewHTTPSource(srv.URL+"/sheet.csv", time.Second).Fetch(context.Background())
	if err != nil || string(body) != goodSheet {
		t.Fatalf("unexpected fetch result %q, %v", body, err)
	}

	if _, err := NewHTTPSource(srv.URL+"/missing", time.Second).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.csv")
	if err := os.WriteFile(path, []byte(goodSheet), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	p := NewProvider(ProviderOptions{Source: NewFileSource(path)}, logger.Nop())
	if snap := p.Refresh(context.Background()); snap.Len() != 2 || snap.Source() != path {
		t.Fatalf("unexpected snapshot from file source: len=%d source=%s", snap.Len(), snap.Source())
	}
}
