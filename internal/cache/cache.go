// Package cache keeps slow-changing provider payloads (filter dictionaries,
// area trees, exchange rates) between runs.
package cache

import (
	"fmt"
	"strings"
	"time"
)

// Cache stores opaque payloads under string keys with a fixed lifetime.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Close() error
}

const defaultTTL = 24 * time.Hour

// New creates the configured cache backend.
func New(typ, path string, ttl time.Duration) (Cache, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	if ttl <= 0 {
		ttl = defaultTTL
	}

	switch typ {
	case "", "none", "disabled":
		return Noop{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt cache requires a path")
		}
		return openBolt(path, ttl, time.Now)
	default:
		return nil, fmt.Errorf("unsupported cache type %q", typ)
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Put(string, []byte) error         { return nil }
func (Noop) Close() error                     { return nil }
