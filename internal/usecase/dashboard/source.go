package dashboard

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Source is the settled outcome of one backing request.
type Source[T any] struct {
	Data T
	Err  error
	OK   bool
}

// Or returns the data when the source was fulfilled, fallback otherwise.
func (s Source[T]) Or(fallback T) T {
	if s.OK {
		return s.Data
	}
	return fallback
}

type SourceStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s Source[T]) Status() SourceStatus {
	if s.OK {
		return SourceStatus{OK: true}
	}
	msg := "request failed"
	if s.Err != nil {
		msg = s.Err.Error()
	}
	return SourceStatus{Error: msg}
}

// fanout runs every task concurrently and waits for all of them. Tasks record their
// own outcome, so one failure never cancels the others.
type fanout struct {
	g  errgroup.Group
	mu sync.Mutex
	st map[string]SourceStatus
}

func newFanout() *fanout { return &fanout{st: map[string]SourceStatus{}} }

func settle[T any](f *fanout, ctx context.Context, name string, out *Source[T], fn func(context.Context) (T, error)) {
	f.g.Go(func() error {
		data, err := fn(ctx)
		*out = Source[T]{Data: data, Err: err, OK: err == nil}
		f.mu.Lock()
		f.st[name] = out.Status()
		f.mu.Unlock()
		return nil
	})
}

// wait returns per-source statuses and whether every source failed.
func (f *fanout) wait() (map[string]SourceStatus, bool) {
	_ = f.g.Wait()
	allFailed := len(f.st) > 0
	for _, s := range f.st {
		if s.OK {
			allFailed = false
		}
	}
	return f.st, allFailed
}
