package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"insurance-portal/internal/domain/session"
)

// DefaultSchedule refreshes every five minutes.
const DefaultSchedule = "@every 5m"

var ErrStopped = errors.New("dashboard provider stopped")

// Store publishes snapshots so readers need not wait on a refresh.
type Store interface {
	Put(ctx context.Context, key string, v any) error
}

type snapshot[S any] interface {
	*S
	meta() *Meta
}

// Provider keeps the latest snapshot for one session and refreshes it on a schedule.
// Results that arrive after Stop are dropped.
type Provider[S any, PS snapshot[S]] struct {
	key      string
	load     func(ctx context.Context) S
	store    Store
	schedule string
	now      func() time.Time
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	snap    S
	running int
	gen     uint64
	stored  uint64
	cron    *cron.Cron
	stopped bool
}

func newProvider[S any, PS snapshot[S]](key, schedule string, store Store, load func(context.Context) S) *Provider[S, PS] {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Provider[S, PS]{
		key:      key,
		load:     load,
		store:    store,
		schedule: schedule,
		now:      time.Now,
		log:      slog.Default().With("component", "dashboard", "key", key),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// NewCustomer builds the provider behind the customer dashboard.
func NewCustomer(api CustomerAPI, sess *session.Session, store Store, schedule string) *Provider[CustomerSnapshot, *CustomerSnapshot] {
	return newProvider[CustomerSnapshot](StoreKey(sess.Key), schedule, store, func(ctx context.Context) CustomerSnapshot {
		return LoadCustomer(ctx, api, sess)
	})
}

// NewAdmin builds the provider behind the admin dashboard.
func NewAdmin(api AdminAPI, sess *session.Session, store Store, schedule string) *Provider[AdminSnapshot, *AdminSnapshot] {
	return newProvider[AdminSnapshot](StoreKey(sess.Key), schedule, store, func(ctx context.Context) AdminSnapshot {
		return LoadAdmin(ctx, api, sess)
	})
}

// StoreKey is where a session's snapshot is published.
func StoreKey(sessionKey string) string { return "dashboard:" + sessionKey }

// Refresh loads every source and replaces the snapshot, unless a newer refresh
// already landed. It returns ErrStopped when the provider stopped mid-flight.
func (p *Provider[S, PS]) Refresh(ctx context.Context) (S, error) {
	var zero S
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return zero, ErrStopped
	}
	p.gen++
	gen := p.gen
	p.running++
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	unhook := context.AfterFunc(p.ctx, cancel)
	defer unhook()

	snap := p.load(ctx)
	PS(&snap).meta().LastUpdated = p.now().UTC()

	p.mu.Lock()
	p.running--
	switch {
	case p.ctx.Err() != nil:
		p.mu.Unlock()
		return zero, ErrStopped
	case ctx.Err() != nil:
		p.mu.Unlock()
		return zero, ctx.Err()
	}
	if gen > p.stored {
		p.snap, p.stored = snap, gen
	}
	out := p.currentLocked()
	p.mu.Unlock()

	if errMsg := PS(&out).meta().Error; errMsg != "" {
		p.log.Warn("dashboard refresh failed", "error", errMsg)
	}
	if p.store != nil {
		if err := p.store.Put(ctx, p.key, out); err != nil {
			p.log.Warn("publish snapshot", "err", err)
		}
	}
	return out, nil
}

// Snapshot returns the latest snapshot; Loading is set while a refresh runs.
func (p *Provider[S, PS]) Snapshot() S {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentLocked()
}

func (p *Provider[S, PS]) currentLocked() S {
	out := p.snap
	PS(&out).meta().Loading = p.running > 0
	return out
}

// Start triggers an immediate refresh and schedules the rest. The provider stops
// when ctx is done.
func (p *Provider[S, PS]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrStopped
	}
	if p.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(p.schedule, func() { _, _ = p.Refresh(p.ctx) }); err != nil {
		return err
	}
	p.cron = c
	c.Start()
	context.AfterFunc(ctx, p.Stop)
	go func() { _, _ = p.Refresh(p.ctx) }()
	return nil
}

// Stop cancels the schedule and any refresh in flight. Safe to call twice.
func (p *Provider[S, PS]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.cancel()
	if p.cron != nil {
		p.cron.Stop()
	}
}

// View and RefreshView expose the snapshot without its concrete type.
func (p *Provider[S, PS]) View() any { return p.Snapshot() }

func (p *Provider[S, PS]) RefreshView(ctx context.Context) (any, error) {
	return p.Refresh(ctx)
}

// Fresh reports whether at least one refresh has landed.
func (p *Provider[S, PS]) Fresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored > 0
}
