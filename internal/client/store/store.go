// Package store implements the client's durable, versioned,
// multi-collection record store. The whole store lives in one JSON file
// guarded by a mutex; every mutation is written through before it
// returns, so the foreground flows and the background sync loop always
// observe each other's committed writes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Version is the current store schema version. Bump it whenever a new
// collection is added; opening an older file creates the missing
// collections and leaves existing data untouched.
const Version = 4

// ErrNotFound is returned by GetByID when no record has the given id.
var ErrNotFound = errors.New("store: record not found")

// Record is anything the store can hold. Identifiers are assigned by the
// store when absent (auto-increment per collection).
type Record interface {
	RecordID() int64
	SetRecordID(id int64)
}

// Validator is implemented by records that carry schema validation;
// the store rejects invalid records at the write boundary.
type Validator interface {
	Validate() error
}

// Store is a multi-collection record store backed by a single JSON file.
type Store struct {
	path string

	mu          sync.Mutex
	version     int
	seq         map[string]int64
	collections map[string][]json.RawMessage
}

type fileImage struct {
	Version     int                          `json:"version"`
	Seq         map[string]int64             `json:"seq"`
	Collections map[string][]json.RawMessage `json:"collections"`
}

// Open loads the store file at path, creating it if absent, and creates
// any of the named collections that do not yet exist. Opening at a higher
// version than previously seen only adds missing collections; records in
// existing collections are never touched. Open is idempotent.
func Open(path string, version int, collections []string) (*Store, error) {
	s := &Store{
		path:        path,
		version:     version,
		seq:         make(map[string]int64),
		collections: make(map[string][]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var img fileImage
		if err := json.Unmarshal(raw, &img); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", path, err)
		}
		if img.Seq != nil {
			s.seq = img.Seq
		}
		if img.Collections != nil {
			s.collections = img.Collections
		}
		if img.Version > version {
			s.version = img.Version
		}
	case os.IsNotExist(err):
		// fresh store
	default:
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	for _, name := range collections {
		if _, ok := s.collections[name]; !ok {
			s.collections[name] = []json.RawMessage{}
		}
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// save writes the store image to disk. Callers must hold mu, except
// during Open where the store is not yet shared.
func (s *Store) save() error {
	img := fileImage{
		Version:     s.version,
		Seq:         s.seq,
		Collections: s.collections,
	}
	buf, err := json.Marshal(&img)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: rename %s: %w", tmp, err)
	}
	return nil
}

func (s *Store) collection(name string) ([]json.RawMessage, error) {
	recs, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("store: unknown collection %q", name)
	}
	return recs, nil
}

func rawID(raw json.RawMessage) int64 {
	var probe struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.ID
}

// Put upserts a record: an existing record with the same id is replaced,
// otherwise the record is appended with a newly assigned id. Returns the
// record's id.
func (s *Store) Put(collection string, rec Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.collection(collection)
	if err != nil {
		return 0, err
	}
	if v, ok := rec.(Validator); ok {
		if err := v.Validate(); err != nil {
			return 0, fmt.Errorf("store: put %s: %w", collection, err)
		}
	}

	if rec.RecordID() == 0 {
		s.seq[collection]++
		rec.SetRecordID(s.seq[collection])
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("store: encode record: %w", err)
	}

	replaced := false
	for i, r := range recs {
		if rawID(r) == rec.RecordID() {
			recs[i] = raw
			replaced = true
			break
		}
	}
	if !replaced {
		recs = append(recs, raw)
	}
	s.collections[collection] = recs

	if err := s.save(); err != nil {
		return 0, err
	}
	return rec.RecordID(), nil
}

// Add inserts a record unconditionally with a newly assigned id.
func (s *Store) Add(collection string, rec Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.collection(collection)
	if err != nil {
		return 0, err
	}
	if v, ok := rec.(Validator); ok {
		if err := v.Validate(); err != nil {
			return 0, fmt.Errorf("store: add %s: %w", collection, err)
		}
	}

	s.seq[collection]++
	rec.SetRecordID(s.seq[collection])
	raw, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("store: encode record: %w", err)
	}
	s.collections[collection] = append(recs, raw)

	if err := s.save(); err != nil {
		return 0, err
	}
	return rec.RecordID(), nil
}

// GetAll decodes every record of the collection, in insertion order,
// into dest, which must be a pointer to a slice.
func (s *Store) GetAll(collection string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.collection(collection)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", collection, err)
	}
	if err := json.Unmarshal(buf, dest); err != nil {
		return fmt.Errorf("store: decode %s: %w", collection, err)
	}
	return nil
}

// GetByID decodes the record with the given id into dest, or returns
// ErrNotFound.
func (s *Store) GetByID(collection string, id int64, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.collection(collection)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if rawID(r) == id {
			if err := json.Unmarshal(r, dest); err != nil {
				return fmt.Errorf("store: decode %s/%d: %w", collection, id, err)
			}
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes the record with the given id. Deleting an absent record
// is not an error.
func (s *Store) Delete(collection string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.collection(collection)
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, r := range recs {
		if rawID(r) != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recs) {
		return nil
	}
	s.collections[collection] = kept
	return s.save()
}

// Clear removes every record of the collection.
func (s *Store) Clear(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.collection(collection); err != nil {
		return err
	}
	s.collections[collection] = []json.RawMessage{}
	return s.save()
}

// Count returns the number of records in the collection.
func (s *Store) Count(collection string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.collection(collection)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}
