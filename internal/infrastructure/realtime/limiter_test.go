package realtime

import (
	"testing"
	"time"
)

func TestFrameLimiterAllowsWithinBurst(t *testing.T) {
	l := NewFrameLimiter(1, 3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.Allow("alice", now) {
			t.Fatalf("frame %d denied within burst", i)
		}
	}
	if l.Allow("alice", now) {
		t.Fatal("frame allowed beyond burst")
	}

	// A different user must not share the budget.
	if !l.Allow("bob", now) {
		t.Fatal("independent user was throttled")
	}
}

func TestFrameLimiterRefills(t *testing.T) {
	l := NewFrameLimiter(10, 1, time.Minute)
	now := time.Now()

	if !l.Allow("alice", now) {
		t.Fatal("first frame denied")
	}
	if l.Allow("alice", now) {
		t.Fatal("second immediate frame allowed")
	}
	if !l.Allow("alice", now.Add(200*time.Millisecond)) {
		t.Fatal("frame denied after refill window")
	}
}

func TestFrameLimiterNilAndEmptyKey(t *testing.T) {
	var l *FrameLimiter
	if !l.Allow("alice", time.Now()) {
		t.Fatal("nil limiter must allow")
	}

	l = NewFrameLimiter(1, 1, time.Minute)
	if !l.Allow("", time.Now()) {
		t.Fatal("empty key must bypass limiting")
	}

	if NewFrameLimiter(0, 1, time.Minute) != nil {
		t.Fatal("non-positive rps must yield nil limiter")
	}
}
