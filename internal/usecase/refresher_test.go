package usecase

import (
	"context"
	"testing"
)

func TestRefresherSupersedes(t *testing.T) {
	var r Refresher

	ctxA, commitA := r.Begin(context.Background())
	_, commitB := r.Begin(context.Background())

	select {
	case <-ctxA.Done():
	default:
		t.Fatalf("starting B must cancel A's context")
	}

	applied := false
	if commitA(func() { applied = true }) {
		t.Fatalf("superseded refresh must not commit")
	}
	if applied {
		t.Fatalf("stale apply ran")
	}

	if !commitB(func() { applied = true }) {
		t.Fatalf("current refresh must commit")
	}
	if !applied {
		t.Fatalf("apply did not run")
	}
}

func TestRefresherSequentialCommits(t *testing.T) {
	var r Refresher
	for i := 0; i < 3; i++ {
		_, commit := r.Begin(context.Background())
		n := 0
		if !commit(func() { n++ }) || n != 1 {
			t.Fatalf("round %d: commit failed", i)
		}
	}
}
