// Package form carries user-facing input problems from usecases to handlers.
package form

import (
	"errors"
	"strings"
)

// Error lists every problem found in a submitted form, in display order.
type Error struct {
	Problems []string
}

func (e *Error) Error() string { return strings.Join(e.Problems, "; ") }

// Checker accumulates problems.
type Checker struct{ problems []string }

// Require records msg when ok is false.
func (c *Checker) Require(ok bool, msg string) {
	if !ok {
		c.problems = append(c.problems, msg)
	}
}

// Err returns nil when nothing was recorded.
func (c *Checker) Err() error {
	if len(c.problems) == 0 {
		return nil
	}
	return &Error{Problems: append([]string(nil), c.problems...)}
}

// Problems extracts the messages from err, nil if err is not a form error.
func Problems(err error) []string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Problems
	}
	return nil
}

// Invalid builds an Error holding a single message.
func Invalid(msg string) error { return &Error{Problems: []string{msg}} }
