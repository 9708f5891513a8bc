package view

import "testing"

func TestUnreadSetTransitions(t *testing.T) {
	s := NewUnreadSet("E1", "E2", "E3")
	if s.Len() != 3 || !s.Contains("E1") {
		t.Fatalf("unexpected initial set: %v", s)
	}

	after := s.MarkRead("E1")
	if after.Contains("E1") || after.Len() != 2 {
		t.Fatalf("mark-read failed: %v", after)
	}
	if !s.Contains("E1") {
		t.Fatalf("original set must be untouched")
	}

	none := after.MarkAllRead()
	if none.Len() != 0 {
		t.Fatalf("mark-all-read must empty the set")
	}
}

func TestUnreadSetCanonicalKeys(t *testing.T) {
	s := NewUnreadSet("ERR-001")
	if !s.Contains("err001") {
		t.Fatalf("membership must be canonical")
	}
	if got := s.MarkRead("err-001"); got.Contains("ERR-001") {
		t.Fatalf("canonical mark-read failed")
	}
}

func TestUnreadSetMarkReadMissing(t *testing.T) {
	s := NewUnreadSet("E1")
	if got := s.MarkRead("E9"); got.Len() != 1 {
		t.Fatalf("marking an unknown id must be a no-op")
	}
}
