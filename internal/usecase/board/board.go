// Package board keeps per-session list state (the admin boards, the customer's own
// lists) in the view cache so a mutation patches the cached list with the record the
// server returned instead of re-fetching everything. Other users change the same
// records, so a cached list only answers reads for MaxAge after it was fetched.
package board

import (
	"context"
	"log/slog"
	"time"
)

// MaxAge is how long a fetched list answers reads before Load fetches it again.
const MaxAge = 30 * time.Second

// snapshot is the cached shape of one list. Patching keeps FetchedAt.
type snapshot[T any] struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Items     []T       `json:"items"`
}

// Views is the view cache. A nil Views disables caching.
type Views interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Put(ctx context.Context, key string, v any) error
}

// Key names one list of one session, e.g. Key("claims", sessKey).
func Key(kind, owner string) string { return "board:" + kind + ":" + owner }

// Load returns the cached list for key while it is younger than MaxAge and fetches
// otherwise. Cache failures degrade to fetching.
func Load[T any](ctx context.Context, views Views, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if snap, ok := read[T](ctx, views, key); ok && time.Since(snap.FetchedAt) < MaxAge {
		return nonNil(snap.Items), nil
	}
	return Reload(ctx, views, key, fetch)
}

// Cached returns whatever list is cached for key, however old. Callers use it for
// checks that a stale copy cannot get wrong, such as a record already being final.
func Cached[T any](ctx context.Context, views Views, key string) ([]T, bool) {
	snap, ok := read[T](ctx, views, key)
	return snap.Items, ok
}

func read[T any](ctx context.Context, views Views, key string) (snapshot[T], bool) {
	var snap snapshot[T]
	if views == nil {
		return snap, false
	}
	ok, err := views.Get(ctx, key, &snap)
	if err != nil {
		slog.Warn("board: cache read failed", "key", key, "err", err)
		return snap, false
	}
	return snap, ok
}

// Reload always fetches and overwrites the cached list.
func Reload[T any](ctx context.Context, views Views, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	list, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	list = nonNil(list)
	Save(ctx, views, key, list)
	return list, nil
}

// Save writes a freshly fetched list; a failed write only costs a re-fetch later.
func Save[T any](ctx context.Context, views Views, key string, list []T) {
	write(ctx, views, key, snapshot[T]{FetchedAt: time.Now().UTC(), Items: nonNil(list)})
}

func write[T any](ctx context.Context, views Views, key string, snap snapshot[T]) {
	if views == nil {
		return
	}
	if err := views.Put(ctx, key, snap); err != nil {
		slog.Warn("board: cache write failed", "key", key, "err", err)
	}
}

// Patch applies fn to the cached list for key. Nothing cached means nothing to patch.
func Patch[T any](ctx context.Context, views Views, key string, fn func([]T) []T) {
	snap, ok := read[T](ctx, views, key)
	if !ok {
		return
	}
	snap.Items = nonNil(fn(snap.Items))
	write(ctx, views, key, snap)
}

// Upsert replaces the element with item's id, or prepends item when absent.
func Upsert[T any](list []T, item T, idOf func(T) int64) []T {
	id := idOf(item)
	for i := range list {
		if idOf(list[i]) == id {
			out := append([]T(nil), list...)
			out[i] = item
			return out
		}
	}
	return append([]T{item}, list...)
}

// Replace swaps the element with item's id and leaves the list alone otherwise.
func Replace[T any](list []T, item T, idOf func(T) int64) []T {
	id := idOf(item)
	out := append([]T(nil), list...)
	for i := range out {
		if idOf(out[i]) == id {
			out[i] = item
		}
	}
	return out
}

// Remove drops every element with the given id.
func Remove[T any](list []T, id int64, idOf func(T) int64) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if idOf(v) != id {
			out = append(out, v)
		}
	}
	return out
}

// Find returns the element with the given id.
func Find[T any](list []T, id int64, idOf func(T) int64) (T, bool) {
	for _, v := range list {
		if idOf(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
