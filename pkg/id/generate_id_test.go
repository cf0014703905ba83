package id

import "testing"

func TestNewID32(t *testing.T) {
	a, b := NewID32(), NewID32()
	if len(a) != 32 || a == b {
		t.Fatalf("ids: %q %q", a, b)
	}
	if !Valid32(a) {
		t.Fatalf("Valid32(%q) = false", a)
	}
}

func TestValid32(t *testing.T) {
	for _, s := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", NewID32() + "0"} {
		if Valid32(s) {
			t.Fatalf("Valid32(%q) = true", s)
		}
	}
}
