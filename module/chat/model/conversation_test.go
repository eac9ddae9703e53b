package model

import (
	"testing"
	"time"

	"FitProject/tools/errs"

	"github.com/pkg/errors"
)

func TestPairKeyCanonical(t *testing.T) {
	if PairKey("alice", "bob") != PairKey("bob", "alice") {
		t.Fatal("pair key depends on argument order")
	}
	if got := PairKey("bob", "alice"); got != "alice:bob" {
		t.Fatalf("pair key = %q, want alice:bob", got)
	}
	if PairKey("alice", "bob") == PairKey("alice", "carol") {
		t.Fatal("distinct pairs collide")
	}
}

func TestNextTimestampNonDecreasing(t *testing.T) {
	s := NewConversationStore(nil)

	last := time.Time{}
	for i := 0; i < 1000; i++ {
		ts := s.nextTimestamp("conv-a")
		if ts.Before(last) {
			t.Fatalf("timestamp %v before previous %v", ts, last)
		}
		last = ts
	}
}

func TestNextTimestampClampsClockStep(t *testing.T) {
	s := NewConversationStore(nil)

	// simulate a wall-clock step backwards: the last assigned timestamp
	// sits in the future relative to time.Now()
	future := time.Now().Add(time.Hour)
	s.lastTS["conv-a"] = future

	ts := s.nextTimestamp("conv-a")
	if ts.Before(future) {
		t.Fatalf("timestamp %v decreased below %v", ts, future)
	}

	// conversations are clamped independently
	other := s.nextTimestamp("conv-b")
	if !other.Before(future) {
		t.Fatalf("conv-b timestamp %v inherited conv-a's clamp", other)
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID("64f2a3b4c5d6e7f8a9b0c1d2"); err != nil {
		t.Fatalf("valid hex id rejected: %v", err)
	}
	_, err := parseID("not-an-object-id")
	if !errors.Is(err, errs.ErrArgs) {
		t.Fatalf("got %v, want args error", err)
	}
}
