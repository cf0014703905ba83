package session

import "context"

type Repository interface {
	Save(ctx context.Context, s *Session) error
	GetByKey(ctx context.Context, key string) (*Session, error)
	Delete(ctx context.Context, key string) error
	// DeleteExpired removes sessions whose expiry is before the given unix time.
	DeleteExpired(ctx context.Context, before int64) (int64, error)
}
