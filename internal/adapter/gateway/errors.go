package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// APIError is every failure a gateway call can produce: transport errors (Status 0),
// structured {"message": ...} bodies and plain-text bodies all end up here with a
// message fit for display.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// Transport reports whether the request never got an HTTP response.
func (e *APIError) Transport() bool { return e.Status == 0 }

// StatusOf extracts the HTTP status from err, 0 when err is not an *APIError.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// IsNotFound reports a 404 from the remote API.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// messageFrom picks the server's message: JSON message, JSON error, plain text, then fallback.
func messageFrom(body []byte, fallback string) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return fallback
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Message != "":
			return eb.Message
		case eb.Error != "":
			return eb.Error
		}
		return fallback
	}
	if strings.HasPrefix(raw, "<") {
		// html error pages from a proxy are not worth showing
		return fallback
	}
	return raw
}
