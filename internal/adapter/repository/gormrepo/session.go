package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"insurance-portal/internal/domain/session"
)

type SessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) *SessionRepository { return &SessionRepository{db: db} }

// Save inserts or replaces the row keyed by s.Key.
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// GetByKey returns session.ErrNoSession when no row matches.
func (r *SessionRepository) GetByKey(ctx context.Context, key string) (*session.Session, error) {
	var out session.Session
	res := r.db.WithContext(ctx).Where("session_key = ?", key).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, session.ErrNoSession
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

// Delete is a no-op for unknown keys.
func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("session_key = ?", key).Delete(&session.Session{}).Error
}

// DeleteExpired drops rows with a set expiry before the given unix time.
func (r *SessionRepository) DeleteExpired(ctx context.Context, before int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at > ? AND expires_at < ?", time.Unix(0, 0).UTC(), time.Unix(before, 0).UTC()).
		Delete(&session.Session{})
	return res.RowsAffected, res.Error
}
