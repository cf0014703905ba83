package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	// unresolvable host fails the ping without waiting out the timeout
	if _, err := OpenRedis("not-a-real-host:6379", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}

type board struct {
	Filter string  `json:"filter"`
	IDs    []int64 `json:"ids"`
}

func newViews(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Views) {
	t.Helper()
	s := miniredis.RunT(t)
	c, err := OpenRedis(s.Addr(), 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return s, NewViews(c, ttl)
}

func TestViews_PutGet(t *testing.T) {
	s, v := newViews(t, time.Minute)
	ctx := context.Background()

	if err := v.Put(ctx, "board:claims:abc", board{Filter: "OPEN", IDs: []int64{1, 2}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := s.TTL("board:claims:abc"); ttl != time.Minute {
		t.Fatalf("ttl = %s", ttl)
	}

	var got board
	ok, err := v.Get(ctx, "board:claims:abc", &got)
	if err != nil || !ok {
		t.Fatalf("Get ok=%v err=%v", ok, err)
	}
	if got.Filter != "OPEN" || len(got.IDs) != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestViews_GetMiss(t *testing.T) {
	_, v := newViews(t, 0)
	var got board
	ok, err := v.Get(context.Background(), "nope", &got)
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v, want miss", ok, err)
	}
}

func TestViews_ReadsDoNotExtendTTL(t *testing.T) {
	s, v := newViews(t, time.Minute)
	ctx := context.Background()
	_ = v.Put(ctx, "k", board{})
	s.FastForward(40 * time.Second)

	var got board
	if ok, _ := v.Get(ctx, "k", &got); !ok {
		t.Fatalf("expected hit")
	}
	if ttl := s.TTL("k"); ttl != 20*time.Second {
		t.Fatalf("ttl = %s, want 20s", ttl)
	}
	s.FastForward(21 * time.Second)
	if ok, _ := v.Get(ctx, "k", &got); ok {
		t.Fatalf("expected expiry")
	}
	_ = v.Put(ctx, "k", board{})
	if ttl := s.TTL("k"); ttl != time.Minute {
		t.Fatalf("write should restart ttl: %s", ttl)
	}
}

func TestViews_CorruptEntryIsMiss(t *testing.T) {
	s, v := newViews(t, time.Minute)
	_ = s.Set("k", "{not json")
	var got board
	ok, err := v.Get(context.Background(), "k", &got)
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if s.Exists("k") {
		t.Fatalf("corrupt entry not dropped")
	}
}

func TestViews_Forget(t *testing.T) {
	s, v := newViews(t, time.Minute)
	ctx := context.Background()
	for _, k := range []string{"dashboard:s1", "board:claims:s1", "board:tickets:s1", "dashboard:s2"} {
		_ = v.Put(ctx, k, board{})
	}

	n, err := v.Forget(ctx, "s1")
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if n != 3 {
		t.Fatalf("forgot %d keys, want 3", n)
	}
	if !s.Exists("dashboard:s2") || s.Exists("board:claims:s1") {
		t.Fatalf("wrong keys removed: %v", s.Keys())
	}
	if n, _ := v.Forget(ctx, "nobody"); n != 0 {
		t.Fatalf("forgot %d for unknown owner", n)
	}
}
