package pricing

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"countertop_quote_backend/platform/logger"

	"golang.org/x/sync/singleflight"
)

const (
	defaultRefreshInterval = 15 * time.Minute
	defaultFetchTimeout    = 10 * time.Second
)

// ProviderOptions configures a Provider. A nil Source means the provider only
// ever serves the embedded static table.
type ProviderOptions struct {
	Source          Source
	Columns         Columns
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	Now             func() time.Time
}

// Provider holds the current pricing snapshot and refreshes it from Source.
// Readers always get a complete snapshot; refreshes swap the pointer.
type Provider struct {
	source          Source
	columns         Columns
	refreshInterval time.Duration
	fetchTimeout    time.Duration
	now             func() time.Time
	log             *logger.Logger

	current     atomic.Pointer[Snapshot]
	lastAttempt atomic.Int64
	background  atomic.Bool
	group       singleflight.Group
}

// NewProvider creates a provider serving the static table until the first
// successful refresh.
func NewProvider(opts ProviderOptions, log *logger.Logger) *Provider {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if len(opts.Columns.Key) == 0 {
		opts.Columns = DefaultColumns()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Provider{
		source:          opts.Source,
		columns:         opts.Columns,
		refreshInterval: opts.RefreshInterval,
		fetchTimeout:    opts.FetchTimeout,
		now:             opts.Now,
		log:             log,
	}
	p.current.Store(StaticSnapshot())
	return p
}

// Snapshot returns the installed snapshot without triggering a refresh.
func (p *Provider) Snapshot() *Snapshot {
	return p.current.Load()
}

// Lookup resolves key against the installed snapshot.
func (p *Provider) Lookup(key string) (PricingEntry, bool) {
	return p.Snapshot().Lookup(key)
}

// Current is the read-through accessor used per request. The first call
// refreshes synchronously within the fetch timeout; later calls return
// immediately and kick off a background refresh once the interval elapsed.
func (p *Provider) Current(ctx context.Context) *Snapshot {
	if p.source == nil {
		return p.Snapshot()
	}

	last := p.lastAttempt.Load()
	if last == 0 {
		return p.Refresh(ctx)
	}

	if p.now().Sub(time.Unix(0, last)) >= p.refreshInterval {
		p.refreshInBackground()
	}
	return p.Snapshot()
}

// Refresh fetches and installs a new snapshot. It never fails: on error the
// previous snapshot stays installed and is returned. Concurrent calls share
// one fetch, which is bounded by the fetch timeout rather than by the
// caller's cancellation.
func (p *Provider) Refresh(ctx context.Context) *Snapshot {
	if p.source == nil {
		return p.Snapshot()
	}

	detached := context.WithoutCancel(ctx)
	result, _, _ := p.group.Do("refresh", func() (interface{}, error) {
		return p.refresh(detached), nil
	})
	return result.(*Snapshot)
}

// Run refreshes on a fixed interval until ctx is cancelled.
func (p *Provider) Run(ctx context.Context) {
	if p.source == nil {
		return
	}

	p.Refresh(ctx)

	ticker := time.NewTicker(p.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

func (p *Provider) refreshInBackground() {
	if !p.background.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer p.background.Store(false)
		p.Refresh(context.Background())
	}()
}

func (p *Provider) refresh(ctx context.Context) *Snapshot {
	p.lastAttempt.Store(p.now().UnixNano())

	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	snapshot, err := p.load(fetchCtx)
	if err != nil {
		kept := p.Snapshot()
		p.log.CatalogRefresh(p.source.Name(), kept.Len(), 0, kept.Fallback(), err)
		return kept
	}

	p.current.Store(snapshot)
	p.log.CatalogRefresh(snapshot.Source(), snapshot.Len(), len(snapshot.issues), false, nil)
	return snapshot
}

func (p *Provider) load(ctx context.Context) (*Snapshot, error) {
	raw, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	entries, issues, err := ParseCSV(bytes.NewReader(raw), p.columns)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return NewSnapshot(p.source.Name(), p.now(), entries, issues), nil
}
