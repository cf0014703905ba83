package sessionmock

import (
	"context"
	"errors"
	"testing"
	"time"

	"insurance-portal/internal/domain/session"
)

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if err := m.Save(ctx, &session.Session{Key: "k"}); err != nil {
		t.Fatalf("Save default: %v", err)
	}
	if _, err := m.GetByKey(ctx, "k"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("GetByKey default: want ErrNoSession, got %v", err)
	}
	if n, err := m.DeleteExpired(ctx, 0); n != 0 || err != nil {
		t.Fatalf("DeleteExpired default: %d, %v", n, err)
	}
}

func TestRepo_UsesFuncs(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("boom")
	called := false
	m := &Repo{DeleteFn: func(gotCtx context.Context, key string) error {
		called = true
		if gotCtx != ctx || key != "k" {
			t.Fatalf("Delete args mismatch")
		}
		return wantErr
	}}
	if err := m.Delete(ctx, "k"); !errors.Is(err, wantErr) {
		t.Fatalf("Delete: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("DeleteFn not called")
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()

	_ = m.Save(ctx, &session.Session{Key: "a", Username: "u", ExpiresAt: now.Add(-time.Second)})
	_ = m.Save(ctx, &session.Session{Key: "b", Username: "v", ExpiresAt: now.Add(time.Hour)})

	got, err := m.GetByKey(ctx, "b")
	if err != nil || got.Username != "v" {
		t.Fatalf("GetByKey: %+v, %v", got, err)
	}
	if n, _ := m.DeleteExpired(ctx, now.Unix()); n != 1 {
		t.Fatalf("DeleteExpired = %d, want 1", n)
	}
	if _, err := m.GetByKey(ctx, "a"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expired session still present")
	}
}
