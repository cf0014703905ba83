package format

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the timestamp shapes the backend emits. Zones default to UTC.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, raw, time.UTC); err == nil {
			return t, true
		}
	}
	t, err := now.ParseInLocation(time.UTC, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Date renders "2 Jan 2006"; empty or unparseable input gives the placeholder.
func Date(raw string) string {
	t, ok := ParseTime(raw)
	if !ok {
		return Placeholder
	}
	return t.Format("2 Jan 2006")
}

// DateTime renders "2 Jan 2006, 03:04 pm".
func DateTime(raw string) string {
	t, ok := ParseTime(raw)
	if !ok {
		return Placeholder
	}
	return t.Format("2 Jan 2006, ") + strings.ToLower(t.Format("03:04 PM"))
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityNormal Priority = "normal"
)

// TicketPriority ages a ticket by whole days since creation: more than 7 is high,
// more than 3 medium. Unparseable dates are normal.
func TicketPriority(created string, at time.Time) Priority {
	t, ok := ParseTime(created)
	if !ok {
		return PriorityNormal
	}
	days := int(at.Sub(t).Hours() / 24)
	switch {
	case days > 7:
		return PriorityHigh
	case days > 3:
		return PriorityMedium
	}
	return PriorityNormal
}

// PriorityColor is the badge color used for p.
func PriorityColor(p Priority) string {
	switch p {
	case PriorityHigh:
		return "#dc3545"
	case PriorityMedium:
		return "#ffc107"
	}
	return "#28a745"
}
