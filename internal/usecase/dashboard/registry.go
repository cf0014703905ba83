package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"insurance-portal/internal/domain/session"
)

// Runner is a provider with its snapshot type erased.
type Runner interface {
	Start(ctx context.Context) error
	Stop()
	View() any
	RefreshView(ctx context.Context) (any, error)
	Fresh() bool
}

// API is everything either dashboard reads.
type API interface {
	CustomerAPI
	AdminAPI
}

// Factory builds the provider matching the session's role.
func Factory(api API, store Store, schedule string) func(*session.Session) (Runner, error) {
	return func(sess *session.Session) (Runner, error) {
		switch {
		case sess.IsCustomer():
			return NewCustomer(api, sess, store, schedule), nil
		case sess.IsAdmin():
			return NewAdmin(api, sess, store, schedule), nil
		}
		return nil, fmt.Errorf("dashboard: no provider for role %q", sess.Role)
	}
}

// Registry holds one running provider per session key. A provider stops on its own
// when its session's expiry passes; Prune catches sessions removed earlier.
type Registry struct {
	base    context.Context
	factory func(*session.Session) (Runner, error)

	mu    sync.Mutex
	items map[string]*entry
}

type entry struct {
	runner Runner
	expiry *time.Timer
}

func (e *entry) stop() {
	if e.expiry != nil {
		e.expiry.Stop()
	}
	e.runner.Stop()
}

// NewRegistry ties every provider's lifetime to base.
func NewRegistry(base context.Context, factory func(*session.Session) (Runner, error)) *Registry {
	return &Registry{base: base, factory: factory, items: map[string]*entry{}}
}

// Ensure returns the session's provider, creating and starting it on first use.
func (r *Registry) Ensure(sess *session.Session) (Runner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[sess.Key]; ok {
		return e.runner, nil
	}
	p, err := r.factory(sess)
	if err != nil {
		return nil, err
	}
	if err := p.Start(r.base); err != nil {
		return nil, err
	}
	e := &entry{runner: p}
	if !sess.ExpiresAt.IsZero() {
		key := sess.Key
		e.expiry = time.AfterFunc(time.Until(sess.ExpiresAt), func() { r.drop(key, e) })
	}
	r.items[sess.Key] = e
	return p, nil
}

func (r *Registry) Get(key string) (Runner, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[key]; ok {
		return e.runner, true
	}
	return nil, false
}

// Stop stops and forgets the provider for key, if any.
func (r *Registry) Stop(key string) {
	r.mu.Lock()
	e, ok := r.items[key]
	delete(r.items, key)
	r.mu.Unlock()
	if ok {
		e.stop()
	}
}

// drop stops e only if it is still the provider registered under key.
func (r *Registry) drop(key string, e *entry) {
	r.mu.Lock()
	cur, ok := r.items[key]
	if ok && cur == e {
		delete(r.items, key)
	}
	r.mu.Unlock()
	if ok && cur == e {
		e.stop()
	}
}

// Prune stops the providers whose session lookup answers session.ErrNoSession.
// Other lookup errors keep the provider; the store may just be unreachable.
func (r *Registry) Prune(ctx context.Context, lookup func(ctx context.Context, key string) (*session.Session, error)) int {
	r.mu.Lock()
	keys := make([]string, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	n := 0
	for _, k := range keys {
		if _, err := lookup(ctx, k); errors.Is(err, session.ErrNoSession) {
			r.Stop(k)
			n++
		}
	}
	return n
}

func (r *Registry) StopAll() {
	r.mu.Lock()
	items := r.items
	r.items = map[string]*entry{}
	r.mu.Unlock()
	for _, e := range items {
		e.stop()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
