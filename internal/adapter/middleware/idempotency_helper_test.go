package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestReplayKey(t *testing.T) {
	got := replayKey("POST", "/dashboard/customer/claims", "42", strings.Repeat("b", 32))
	want := "idemp:portal:post:/dashboard/customer/claims:42:" + strings.Repeat("b", 32)
	if got != want {
		t.Fatalf("replayKey = %q, want %q", got, want)
	}
}

func TestOwnerOf(t *testing.T) {
	if got := ownerOf(sessionIdentity{UserID: "7", Username: "cara"}); got != "7" {
		t.Fatalf("ownerOf = %q", got)
	}
	if got := ownerOf(sessionIdentity{Username: "cara"}); got != "u-cara" {
		t.Fatalf("ownerOf without id = %q", got)
	}
}

func TestRequestIDOK(t *testing.T) {
	cases := map[string]bool{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88": true,
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88":     true,
		" " + strings.Repeat("c", 32) + " ":    true,
		"":                                     false,
		strings.Repeat("C", 32):                false,
		strings.Repeat("c", 31):                false,
		strings.Repeat("g", 32):                false,
		"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88": false,
		"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88": false,
	}
	for id, want := range cases {
		if got := requestIDOK(id); got != want {
			t.Fatalf("requestIDOK(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestRequestTime(t *testing.T) {
	sec := int64(1767225600) // 2026-01-01T00:00:00Z
	ok := []struct {
		raw  string
		want time.Time
	}{
		{strconv.FormatInt(sec, 10), time.Unix(sec, 0).UTC()},
		{strconv.FormatInt(sec*1000+250, 10), time.UnixMilli(sec*1000 + 250).UTC()},
		{"2026-01-01T07:00:00+07:00", time.Unix(sec, 0).UTC()},
		{"2026-01-01T00:00:00.5Z", time.Unix(sec, 5e8).UTC()},
	}
	for _, tc := range ok {
		got, err := requestTime(tc.raw)
		if err != nil || !got.Equal(tc.want) || got.Location() != time.UTC {
			t.Fatalf("requestTime(%q) = %v, %v; want %v", tc.raw, got, err, tc.want)
		}
	}
	for _, raw := range []string{"", "yesterday", "2026-01-01T00:00:00", "1767225600x"} {
		if _, err := requestTime(raw); !errors.Is(err, errRequestAtFormat) {
			t.Fatalf("requestTime(%q) err = %v", raw, err)
		}
	}
}

func TestReadReplayHeaders(t *testing.T) {
	id := strings.Repeat("d", 32)
	h := http.Header{}
	h.Set(HeaderRequestID, id)
	if got, at, problem := readReplayHeaders(h); got != id || at != 0 || problem != "" {
		t.Fatalf("without X-Request-At: %q %d %q", got, at, problem)
	}

	now := nowUTC()
	h.Set(HeaderRequestAt, now.Format(time.RFC3339Nano))
	if _, at, problem := readReplayHeaders(h); problem != "" || at != now.UnixMilli() {
		t.Fatalf("with X-Request-At: %d %q", at, problem)
	}

	h.Set(HeaderRequestAt, now.Add(2*maxClockSkew).Format(time.RFC3339))
	if _, _, problem := readReplayHeaders(h); problem != HeaderRequestAt+" too skewed" {
		t.Fatalf("skewed: %q", problem)
	}
}

func TestReplayStore(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	store := replayStore{rdb: rdb}
	ctx := context.Background()
	key := replayKey("PUT", "/dashboard/admin/claims/:id/status", "1", strings.Repeat("e", 32))

	first := idempEntry{InProgress: true, BodySHA256: bodyHash([]byte(`{"status":"APPROVED"}`)), CreatedAt: nowUTC()}
	if ok, err := store.reserve(ctx, key, first); err != nil || !ok {
		t.Fatalf("reserve: %v %v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("reservation ttl = %v", ttl)
	}
	if ok, _ := store.reserve(ctx, key, first); ok {
		t.Fatalf("second reserve must fail while the key is held")
	}

	done := idempEntry{Code: http.StatusOK, Body: []byte(`{"claimId":9}`), BodySHA256: first.BodySHA256}
	if err := store.finish(ctx, key, done, 3*time.Second); err != nil {
		t.Fatalf("finish: %v", err)
	}
	got, err := store.load(ctx, key)
	if err != nil || got.InProgress || got.Code != http.StatusOK || string(got.Body) != `{"claimId":9}` {
		t.Fatalf("load = %+v, %v", got, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > 3*time.Second {
		t.Fatalf("final ttl = %v", ttl)
	}

	if err := store.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := store.load(ctx, key); !errors.Is(err, redis.Nil) {
		t.Fatalf("load after release: %v", err)
	}
}
