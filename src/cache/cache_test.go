package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := New(4, time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Fatal("hit on empty cache")
	}
	c.Set("q1", "passages")
	got, ok := c.Get("q1")
	if !ok || got != "passages" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // touch so b becomes oldest
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a was touched and must survive")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(4, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d after expiry read, want 0", c.Len())
	}
}

func TestKeyIsStable(t *testing.T) {
	if Key("hello") != Key("hello") {
		t.Fatal("same input must hash to the same key")
	}
	if Key("hello") == Key("hello!") {
		t.Fatal("different inputs collided")
	}
	if len(Key(fmt.Sprintf("%0999d", 7))) != 64 {
		t.Fatal("key must be a hex sha256")
	}
}
