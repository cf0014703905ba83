package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// replayKey scopes a request id to one route of one account.
func replayKey(method, route, owner, requestID string) string {
	return strings.Join([]string{"idemp", "portal", strings.ToLower(method), route, owner, requestID}, ":")
}

// ownerOf prefers the backend user id; older sessions only carry the username.
func ownerOf(s sessionIdentity) string {
	if s.UserID != "" {
		return s.UserID
	}
	return "u-" + s.Username
}

type sessionIdentity struct{ UserID, Username string }

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// requestIDOK accepts a lowercase uuid or the 32-hex ids the portal issues.
func requestIDOK(id string) bool {
	id = strings.TrimSpace(id)
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

var errRequestAtFormat = errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with a zone")

// requestTime reads X-Request-At as epoch seconds, epoch millis or zoned RFC3339.
func requestTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errRequestAtFormat
	}
	return t.UTC(), nil
}

// replayStore keeps one JSON entry per replay key.
type replayStore struct{ rdb *redis.Client }

// reserve claims key for a request in flight; false means someone holds it already.
func (s replayStore) reserve(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(raw, &e)
	return e, err
}

// finish stores the completed response for ttl.
func (s replayStore) finish(ctx context.Context, key string, e idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

// release forgets key so the client may try again.
func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
