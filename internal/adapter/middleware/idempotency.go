package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderRequestAt = "X-Request-At"
	HeaderReplayed  = "Idempotent-Replayed"

	// a reservation outlives any sane handler; a crashed one frees the key after this
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// teeWriter copies the response body aside while writing it through.
type teeWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Idempotency guards mutating requests of a signed-in user. The key is method +
// route + user id + X-Request-Id. A repeat with the same body replays the stored
// response; a different body, or a repeat while the first is still running, gets 409.
// 5xx responses are not remembered so the client may retry them.
//
// X-Request-At is optional. When sent it must be within maxClockSkew of now.
func Idempotency(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			s := CurrentSession(c)
			if s == nil {
				return next(c)
			}

			reqID, reqAtMS, problem := readReplayHeaders(req.Header)
			if problem != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": problem})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)
			key := replayKey(req.Method, c.Path(), ownerOf(sessionIdentity{s.UserID, s.Username}), reqID)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			reserved, err := store.reserve(ctx, key, idempEntry{
				InProgress: true, BodySHA256: hash, RequestID: reqID, RequestAtMS: reqAtMS, CreatedAt: nowUTC(),
			})
			if err != nil {
				slog.Warn("idempotency: store unavailable", "key", key, "err", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !reserved {
				return replay(c, store, ctx, key, hash)
			}

			w := &teeWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			if w.code >= http.StatusInternalServerError {
				_ = store.release(context.Background(), key)
				return nil
			}
			done := idempEntry{
				Code: w.code, Body: w.buf.Bytes(), BodySHA256: hash,
				RequestID: reqID, RequestAtMS: reqAtMS, CreatedAt: nowUTC(),
			}
			if err := store.finish(context.Background(), key, done, ttl); err != nil {
				slog.Warn("idempotency: save failed", "key", key, "err", err)
			}
			return nil
		}
	}
}

// readReplayHeaders returns the request id and optional request time, or a problem
// to answer with 400.
func readReplayHeaders(h http.Header) (string, int64, string) {
	reqID := strings.TrimSpace(h.Get(HeaderRequestID))
	switch {
	case reqID == "":
		return "", 0, "missing " + HeaderRequestID
	case !requestIDOK(reqID):
		return "", 0, "invalid " + HeaderRequestID + " format"
	}
	raw := strings.TrimSpace(h.Get(HeaderRequestAt))
	if raw == "" {
		return reqID, 0, ""
	}
	at, err := requestTime(raw)
	if err != nil {
		return "", 0, err.Error()
	}
	now := nowUTC()
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return "", 0, HeaderRequestAt + " too skewed"
	}
	return reqID, at.UnixMilli(), ""
}

// replay answers a request whose key is already taken.
func replay(c echo.Context, store replayStore, ctx context.Context, key, hash string) error {
	cur, err := store.load(ctx, key)
	if err != nil {
		slog.Warn("idempotency: load failed", "key", key, "err", err)
	}
	if cur.BodySHA256 != "" && cur.BodySHA256 != hash {
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
	}
	if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
		c.Response().Header().Set(HeaderReplayed, "true")
		return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
	}
	return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
}
