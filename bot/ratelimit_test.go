package bot

import (
	"testing"
	"time"
)

func TestRateLimiterDisabled(t *testing.T) {
	l := newRateLimiter(0)
	for i := 0; i < 5; i++ {
		if !l.Allow("U1") {
			t.Fatal("zero interval must never limit")
		}
	}
}

func TestRateLimiterBlocksWithinInterval(t *testing.T) {
	l := newRateLimiter(time.Second)
	base := time.Unix(1000, 0)
	l.now = func() time.Time { return base }

	if !l.Allow("U1") {
		t.Fatal("first message must pass")
	}
	base = base.Add(300 * time.Millisecond)
	if l.Allow("U1") {
		t.Fatal("message inside interval must be limited")
	}
	base = base.Add(time.Second)
	if !l.Allow("U1") {
		t.Fatal("message after interval must pass")
	}
}

func TestRateLimiterIsPerUser(t *testing.T) {
	l := newRateLimiter(time.Second)
	base := time.Unix(1000, 0)
	l.now = func() time.Time { return base }

	if !l.Allow("U1") || !l.Allow("U2") {
		t.Fatal("different users must not share a limit")
	}
}

func TestRateLimiterSweepDropsStaleEntries(t *testing.T) {
	l := newRateLimiter(time.Second)
	base := time.Unix(1000, 0)
	l.now = func() time.Time { return base }

	l.lastSeen["stale"] = base.Add(-time.Hour)
	for i := 0; i < 1025; i++ {
		l.lastSeen[string(rune('a'+i%26))+string(rune('0'+i%10))+string(rune(i))] = base
	}
	l.Allow("fresh")

	if _, ok := l.lastSeen["stale"]; ok {
		t.Fatal("stale entry must be swept once the map grows")
	}
}
