// Package cache persists what one build learns for the next.
//
// Two kinds of state survive between invocations, each in its own BoltDB
// bucket:
//
//  1. dependency records, keyed by source file
//  2. the last time each throttled warning was shown, keyed by its text
//
// The database is read into memory when the cache is opened and written
// back by Save, so lookups during a build never touch the disk.
package cache

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultFileName is the database file inside the cache directory
	DefaultFileName = "cache.db"

	dependenciesBucket = "dependencies"
	warningsBucket     = "warnings"
)

// Cache holds dependency records and warning timestamps backed by BoltDB
type Cache struct {
	db   *bbolt.DB
	path string

	mu       sync.RWMutex
	records  map[string]Record
	warnings map[string]time.Time

	// keys changed or removed since the last Save
	changed map[string]bool
}

// New opens the cache in cacheDir, creating it if needed, and loads it
func New(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, DefaultFileName)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{dependenciesBucket, warningsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache buckets: %w", err)
	}

	c := &Cache{db: db, path: dbPath}
	if err := c.Load(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Load replaces the in-memory state with what the database holds. Entries
// that cannot be decoded are dropped.
func (c *Cache) Load() error {
	records := make(map[string]Record)
	warnings := make(map[string]time.Time)

	err := c.db.View(func(tx *bbolt.Tx) error {
		err := tx.Bucket([]byte(dependenciesBucket)).ForEach(func(k, v []byte) error {
			var rec Record
			if json.Unmarshal(v, &rec) == nil {
				records[string(k)] = rec
			}

			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket([]byte(warningsBucket)).ForEach(func(k, v []byte) error {
			var t time.Time
			if t.UnmarshalText(v) == nil {
				warnings[string(k)] = t
			}

			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = records
	c.warnings = warnings
	c.changed = make(map[string]bool)

	return nil
}

// Save writes records changed since the last Save and every warning
// timestamp back to the database
func (c *Cache) Save() error {
	c.mu.RLock()
	records := make(map[string]*Record, len(c.changed))
	for file := range c.changed {
		if rec, ok := c.records[file]; ok {
			records[file] = &rec
		} else {
			records[file] = nil
		}
	}
	warnings := maps.Clone(c.warnings)
	c.mu.RUnlock()

	err := c.db.Update(func(tx *bbolt.Tx) error {
		deps := tx.Bucket([]byte(dependenciesBucket))
		for file, rec := range records {
			if rec == nil {
				if err := deps.Delete([]byte(file)); err != nil {
					return err
				}
				continue
			}

			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}

			if err := deps.Put([]byte(file), data); err != nil {
				return err
			}
		}

		warn := tx.Bucket([]byte(warningsBucket))
		for text, t := range warnings {
			data, err := t.MarshalText()
			if err != nil {
				return err
			}

			if err := warn.Put([]byte(text), data); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}

	c.mu.Lock()
	for file := range records {
		delete(c.changed, file)
	}
	c.mu.Unlock()

	return nil
}

// Close closes the cache database without saving
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// Record returns the dependency record for file
func (c *Cache) Record(file string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[file]
	return rec, ok
}

// PutRecord replaces the dependency record for rec.File
func (c *Cache) PutRecord(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[rec.File] = rec
	c.changed[rec.File] = true
}

// DeleteRecord forgets the dependency record for file
func (c *Cache) DeleteRecord(file string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[file]; !ok {
		return
	}

	delete(c.records, file)
	c.changed[file] = true
}

// LastWarned returns when the warning text was last shown
func (c *Cache) LastWarned(text string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.warnings[text]
	return t, ok
}

// SetWarned records that the warning text was shown at t
func (c *Cache) SetWarned(text string, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warnings[text] = t
}

// Clear removes every record and warning timestamp, in memory and on disk
func (c *Cache) Clear() error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{dependenciesBucket, warningsBucket} {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}

			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make(map[string]Record)
	c.warnings = make(map[string]time.Time)
	c.changed = make(map[string]bool)

	return nil
}

// Stats returns cache statistics as stored on disk
func (c *Cache) Stats() (Stats, error) {
	var stats Stats

	err := c.db.View(func(tx *bbolt.Tx) error {
		stats.Records = tx.Bucket([]byte(dependenciesBucket)).Stats().KeyN
		stats.Warnings = tx.Bucket([]byte(warningsBucket)).Stats().KeyN
		stats.Size = tx.Size()
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}
