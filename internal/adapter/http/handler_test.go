package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestHealth_NoChecks(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	before := time.Now().UTC().Add(-time.Second)
	if err := NewHandler().Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Fatalf("status = %d, content type = %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}

	var body struct {
		Status string            `json:"status"`
		Time   string            `json:"time"`
		Deps   map[string]string `json:"deps"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	at, err := time.Parse(time.RFC3339Nano, body.Time)
	if body.Status != "ok" || len(body.Deps) != 0 || err != nil {
		t.Fatalf("body = %+v (time err %v)", body, err)
	}
	if at.Location() != time.UTC || at.Before(before) || at.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("time = %v", at)
	}
}

func TestHealth_ReportsFailingDependency(t *testing.T) {
	e := echo.New()
	h := NewHandler(
		Check{Name: "db", Ping: func(context.Context) error { return nil }},
		Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := h.Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Deps   map[string]string `json:"deps"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Status != "degraded" || body.Deps["db"] != "ok" || body.Deps["redis"] != "connection refused" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
