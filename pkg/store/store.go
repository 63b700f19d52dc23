// Package store provides the flat key-value store backing the engine's local
// caches. Callers receive a Store handle; there is no ambient global state.
package store

import (
	"errors"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Store is a minimal KV interface. Values are whole JSON blobs; the caches
// built on top only ever do atomic read-modify-write of an entire blob.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, val []byte) error
	Delete(key string) error
	Close() error
}

// BadgerStore is the Badger-backed Store implementation.
type BadgerStore struct {
	db *badger.DB
}

// Options configures Open. InMemory is meant for tests.
type Options struct {
	Path     string
	InMemory bool
}

// Open opens (or creates) a Badger store.
func Open(opts Options) (*BadgerStore, error) {
	if !opts.InMemory && strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("store: path is required")
	}
	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithInMemory(opts.InMemory)
	if opts.InMemory {
		bopts.Dir = ""
		bopts.ValueDir = ""
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(key string) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, errors.New("store: not opened")
	}
	var out []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (s *BadgerStore) Set(key string, val []byte) error {
	if s == nil || s.db == nil {
		return errors.New("store: not opened")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

func (s *BadgerStore) Delete(key string) error {
	if s == nil || s.db == nil {
		return errors.New("store: not opened")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
