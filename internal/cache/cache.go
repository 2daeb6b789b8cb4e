// Package cache is the durable key-value store on the device. It keeps the
// last authenticated session and a per-company backup of the full state so
// the client can start offline.
package cache

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// SessionKey holds the last authenticated session.
const SessionKey = "foamProSession"

const backupPrefix = "foamProState_"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("cache: key not found")

// BackupKey returns the key holding the state backup for a company.
func BackupKey(username string) string {
	return backupPrefix + username
}

// Cache is a badger-backed key-value store.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) the cache in dir.
func Open(dir string, log logrus.FieldLogger) (*Cache, error) {
	return open(badger.DefaultOptions(dir), log)
}

// OpenInMemory opens a cache that is discarded on Close.
func OpenInMemory(log logrus.FieldLogger) (*Cache, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log logrus.FieldLogger) (*Cache, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	opts = opts.WithLogger(log.WithField("component", "badger"))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns a copy of the value stored under key.
func (c *Cache) Get(key string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return out, nil
}

// Set stores value under key, replacing any previous value.
func (c *Cache) Set(key string, value []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *Cache) Delete(key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Close flushes and closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
