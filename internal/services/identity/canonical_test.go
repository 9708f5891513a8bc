package identity

import "testing"

func TestCanonicalizeEquivalence(t *testing.T) {
	want := "USR001"
	for _, raw := range []string{"USR-001", "usr001", "U-S-R-0-0-1", "usr_001", " usr 001 "} {
		if got := Canonicalize(raw); got != want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"USR-001", "pb-12", "", "!!!", "MY-001x"} {
		once := Canonicalize(raw)
		if twice := Canonicalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q vs %q", raw, once, twice)
		}
	}
}

func TestCanonicalizeEmpty(t *testing.T) {
	if got := Canonicalize(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := Canonicalize("---"); got != "" {
		t.Fatalf("expected empty for punctuation-only, got %q", got)
	}
}

func TestEqual(t *testing.T) {
	if !Equal("USR-001", "usr001") {
		t.Fatalf("expected equal")
	}
	if Equal("USR-001", "USR-002") {
		t.Fatalf("expected not equal")
	}
}
