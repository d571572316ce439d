// Package memstore is an in-process store.Store. Documents are kept as JSON
// objects in insertion order, which makes iteration deterministic in tests.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/proset/internal/store"
)

type entry struct {
	id  string
	doc store.Document
}

// Store holds every collection in memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]*entry

	// FailOn, when set, is consulted before every operation; a non-nil
	// return is handed back to the caller instead of running it.
	FailOn func(op, collection string) error
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{collections: make(map[string][]*entry)}
}

func (s *Store) fail(op, collection string) error {
	if s.FailOn == nil {
		return nil
	}
	return s.FailOn(op, collection)
}

func (s *Store) find(collection string, filter store.Document) *entry {
	for _, e := range s.collections[collection] {
		if store.Matches(e.doc, filter) {
			return e
		}
	}
	return nil
}

// FindOne implements store.Store.
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) (bool, error) {
	if err := s.fail("find_one", collection); err != nil {
		return false, err
	}
	f, err := store.NormalizeFilter(filter)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.find(collection, f)
	if e == nil {
		return false, nil
	}
	return true, store.Decode(e.doc, out)
}

// FindMany implements store.Store.
func (s *Store) FindMany(ctx context.Context, collection string, filter store.Filter, out any) error {
	if err := s.fail("find_many", collection); err != nil {
		return err
	}
	f, err := store.NormalizeFilter(filter)
	if err != nil {
		return err
	}

	s.mu.RLock()
	var docs []store.Document
	for _, e := range s.collections[collection] {
		if store.Matches(e.doc, f) {
			docs = append(docs, e.doc)
		}
	}
	err = store.DecodeAll(docs, out)
	s.mu.RUnlock()
	return err
}

// Upsert implements store.Store.
func (s *Store) Upsert(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (store.UpsertResult, error) {
	if err := s.fail("upsert", collection); err != nil {
		return store.UpsertResult{}, err
	}
	return s.write(collection, filter, patch, true)
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (store.UpsertResult, error) {
	if err := s.fail("update", collection); err != nil {
		return store.UpsertResult{}, err
	}
	return s.write(collection, filter, patch, false)
}

func (s *Store) write(collection string, filter store.Filter, patch store.Patch, insertMissing bool) (store.UpsertResult, error) {
	f, err := store.NormalizeFilter(filter)
	if err != nil {
		return store.UpsertResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.find(collection, f); e != nil {
		next := store.Clone(e.doc)
		changed, err := store.ApplyPatch(next, patch)
		if err != nil {
			return store.UpsertResult{}, err
		}
		if !changed {
			return store.UpsertResult{Matched: true}, nil
		}
		if err := s.checkUnique(collection, next, e); err != nil {
			return store.UpsertResult{}, err
		}
		e.doc = next
		return store.UpsertResult{Matched: true, Modified: true}, nil
	}
	if !insertMissing {
		return store.UpsertResult{}, nil
	}

	doc := store.Expand(f)
	if _, err := store.ApplyPatch(doc, patch); err != nil {
		return store.UpsertResult{}, err
	}
	id, err := s.insert(collection, doc)
	if err != nil {
		return store.UpsertResult{}, err
	}
	return store.UpsertResult{CreatedID: id}, nil
}

// DeleteOne implements store.Store.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter store.Filter) (store.DeleteResult, error) {
	if err := s.fail("delete_one", collection); err != nil {
		return store.DeleteResult{}, err
	}
	f, err := store.NormalizeFilter(filter)
	if err != nil {
		return store.DeleteResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.collections[collection]
	for i, e := range entries {
		if store.Matches(e.doc, f) {
			s.collections[collection] = append(entries[:i:i], entries[i+1:]...)
			return store.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return store.DeleteResult{}, nil
}

// InsertOne implements store.Store.
func (s *Store) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	if err := s.fail("insert_one", collection); err != nil {
		return "", err
	}
	d, err := store.ToDocument(doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(collection, d)
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error { return nil }

// Count returns the number of documents in collection.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// insert must be called with the write lock held.
func (s *Store) insert(collection string, doc store.Document) (string, error) {
	if err := s.checkUnique(collection, doc, nil); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], &entry{id: id, doc: doc})
	return id, nil
}

// checkUnique rejects doc if another entry (other than self) shares all
// fields of a unique index with it.
func (s *Store) checkUnique(collection string, doc store.Document, self *entry) error {
	for _, idx := range store.IndexesFor(collection) {
		key := make(store.Document, len(idx.Fields))
		complete := true
		for _, field := range idx.Fields {
			v, ok := store.Lookup(doc, field)
			if !ok {
				complete = false
				break
			}
			key[field] = v
		}
		if !complete {
			continue
		}
		for _, e := range s.collections[collection] {
			if e == self {
				continue
			}
			if store.Matches(e.doc, key) {
				return fmt.Errorf("%s %v: %w", idx.Name, key, store.ErrDuplicateKey)
			}
		}
	}
	return nil
}
