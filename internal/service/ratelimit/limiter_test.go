package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesBudget(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("a", 3, 0) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("a", 3, 0) {
		t.Fatal("budget exhausted, request should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatal("first key should be allowed")
	}
	if l.Allow("a", 1, 0) {
		t.Fatal("first key should be exhausted")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatal("second key has its own budget")
	}
}

func TestTokensRefill(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 100) {
		t.Fatal("initial token should be allowed")
	}
	if l.Allow("a", 1, 100) {
		t.Fatal("bucket should be empty")
	}
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("a", 1, 100) {
		t.Fatal("bucket should have refilled")
	}
}
