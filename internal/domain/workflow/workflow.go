// Package workflow holds the status model shared by claims, enrollments and tickets:
// a parser that normalizes raw status strings and a table of allowed next states.
package workflow

import (
	"sort"
	"strings"
)

// Machine is a small transition table keyed by a string-backed status type.
type Machine[S ~string] struct {
	initial     S
	aliases     map[string]S
	transitions map[S][]S
}

// New builds a machine. Every state must appear as a key of transitions, terminal
// states mapping to an empty slice.
func New[S ~string](initial S, transitions map[S][]S, aliases map[string]S) *Machine[S] {
	t := make(map[S][]S, len(transitions))
	for from, to := range transitions {
		next := append([]S(nil), to...)
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		t[from] = next
	}
	a := make(map[string]S, len(aliases))
	for k, v := range aliases {
		a[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return &Machine[S]{initial: initial, aliases: a, transitions: t}
}

// Initial is the state new records start in.
func (m *Machine[S]) Initial() S { return m.initial }

// Parse uppercases and trims raw, then resolves aliases. The second return is false
// when raw names no known state.
func (m *Machine[S]) Parse(raw string) (S, bool) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	if s, ok := m.aliases[norm]; ok {
		return s, true
	}
	s := S(norm)
	if _, ok := m.transitions[s]; ok {
		return s, true
	}
	return s, false
}

// Canonical returns the parsed state, or the initial state when raw is empty.
// Unknown non-empty values are returned normalized but unresolved.
func (m *Machine[S]) Canonical(raw string) S {
	if strings.TrimSpace(raw) == "" {
		return m.initial
	}
	s, _ := m.Parse(raw)
	return s
}

// Transitions lists the states reachable from raw. Unknown and terminal states yield
// an empty, non-nil slice.
func (m *Machine[S]) Transitions(raw string) []S {
	s, ok := m.Parse(raw)
	if !ok {
		return []S{}
	}
	return append([]S{}, m.transitions[s]...)
}

// IsTerminal reports whether raw is a known state with no outgoing transitions.
func (m *Machine[S]) IsTerminal(raw string) bool {
	s, ok := m.Parse(raw)
	return ok && len(m.transitions[s]) == 0
}

// CanTransition reports whether to is reachable from from in one step.
func (m *Machine[S]) CanTransition(from, to string) bool {
	target, ok := m.Parse(to)
	if !ok {
		return false
	}
	for _, s := range m.Transitions(from) {
		if s == target {
			return true
		}
	}
	return false
}

// States lists every known state in sorted order.
func (m *Machine[S]) States() []S {
	out := make([]S, 0, len(m.transitions))
	for s := range m.transitions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
