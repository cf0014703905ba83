package sessionmock

import (
	"context"
	"sync"

	"insurance-portal/internal/domain/session"
)

var _ session.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies session.Repository.
// Unset functions behave like an empty store.
type Repo struct {
	SaveFn          func(ctx context.Context, s *session.Session) error
	GetByKeyFn      func(ctx context.Context, key string) (*session.Session, error)
	DeleteFn        func(ctx context.Context, key string) error
	DeleteExpiredFn func(ctx context.Context, before int64) (int64, error)
}

func (m *Repo) Save(ctx context.Context, s *session.Session) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetByKey(ctx context.Context, key string) (*session.Session, error) {
	if m.GetByKeyFn != nil {
		return m.GetByKeyFn(ctx, key)
	}
	return nil, session.ErrNoSession
}

func (m *Repo) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

func (m *Repo) DeleteExpired(ctx context.Context, before int64) (int64, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx, before)
	}
	return 0, nil
}

// NewMemory returns a Repo whose functions are backed by a map.
func NewMemory() *Repo {
	var mu sync.Mutex
	rows := map[string]session.Session{}
	return &Repo{
		SaveFn: func(_ context.Context, s *session.Session) error {
			mu.Lock()
			defer mu.Unlock()
			rows[s.Key] = *s
			return nil
		},
		GetByKeyFn: func(_ context.Context, key string) (*session.Session, error) {
			mu.Lock()
			defer mu.Unlock()
			s, ok := rows[key]
			if !ok {
				return nil, session.ErrNoSession
			}
			return &s, nil
		},
		DeleteFn: func(_ context.Context, key string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(rows, key)
			return nil
		},
		DeleteExpiredFn: func(_ context.Context, before int64) (int64, error) {
			mu.Lock()
			defer mu.Unlock()
			var n int64
			for k, s := range rows {
				if !s.ExpiresAt.IsZero() && s.ExpiresAt.Unix() < before {
					delete(rows, k)
					n++
				}
			}
			return n, nil
		},
	}
}
