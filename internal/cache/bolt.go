package cache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	payloadBucket = "payloads"
	expiryBytes   = 8
)

// boltCache prefixes each value with its big-endian unix expiry.
type boltCache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

func openBolt(path string, ttl time.Duration, now func() time.Time) (*boltCache, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt cache: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(payloadBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltCache{db: db, ttl: ttl, now: now}, nil
}

func (b *boltCache) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns a live payload. Expired entries are deleted on read.
func (b *boltCache) Get(key string) ([]byte, bool, error) {
	var (
		payload []byte
		found   bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(payloadBucket))
		if bucket == nil {
			return fmt.Errorf("payload bucket missing")
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return nil
		}
		expiry, body, ok := decode(value)
		if !ok || !expiry.After(b.now()) {
			return bucket.Delete([]byte(key))
		}
		payload = append([]byte(nil), body...)
		found = true
		return nil
	})
	return payload, found, err
}

func (b *boltCache) Put(key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(payloadBucket))
		if bucket == nil {
			return fmt.Errorf("payload bucket missing")
		}
		return bucket.Put([]byte(key), encode(b.now().Add(b.ttl), value))
	})
}

func encode(expiry time.Time, body []byte) []byte {
	buf := make([]byte, expiryBytes+len(body))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryBytes:], body)
	return buf
}

func decode(value []byte) (time.Time, []byte, bool) {
	if len(value) < expiryBytes {
		return time.Time{}, nil, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryBytes]))
	if unix <= 0 {
		return time.Time{}, nil, false
	}
	return time.Unix(unix, 0), value[expiryBytes:], true
}
