package service

import (
	"testing"
	"time"
)

func TestRateLimiter_Window(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newRateLimiter(time.Minute, 3)
	r.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !r.allow(42) {
			t.Fatalf("request %d denied inside limit", i+1)
		}
	}
	if r.allow(42) {
		t.Fatal("request over the limit allowed")
	}

	// Another chat has its own window.
	if !r.allow(7) {
		t.Fatal("independent chat denied")
	}

	now = now.Add(time.Minute)
	if !r.allow(42) {
		t.Fatal("request denied after window reset")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := newRateLimiter(time.Minute, 0)
	for i := 0; i < 100; i++ {
		if !r.allow(1) {
			t.Fatal("limiter with max=0 must allow everything")
		}
	}
}
