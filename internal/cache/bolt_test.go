package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBoltCacheStoresAndExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c, err := openBolt(filepath.Join(t.TempDir(), "cache.db"), time.Hour, clock)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get("hh:areas"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	if err := c.Put("hh:areas", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get("hh:areas")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Fatalf("Get() = %q", got)
	}

	now = now.Add(2 * time.Hour)
	if _, ok, err := c.Get("hh:areas"); err != nil || ok {
		t.Fatalf("expected expired entry, ok=%v err=%v", ok, err)
	}
}

func TestNewSupportsNoop(t *testing.T) {
	c, err := New("none", "", 0)
	if err != nil {
		t.Fatalf("New none: %v", err)
	}
	if err := c.Put("k", []byte("v")); err != nil {
		t.Fatalf("noop Put: %v", err)
	}
	if _, ok, _ := c.Get("k"); ok {
		t.Fatalf("noop cache returned a value")
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, err := New("redis", "", 0); err == nil {
		t.Fatalf("New(redis) error = nil, want error")
	}
	if _, err := New("bbolt", " ", 0); err == nil {
		t.Fatalf("New(bbolt, empty path) error = nil, want error")
	}
}
