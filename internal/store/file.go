package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/workoutbot/pkg/models"
)

// Load reads the whole document from path.
// A missing file is reported as ErrNotFound.
func Load(path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc := models.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	doc.Normalize()
	return doc, nil
}

// Save overwrites path with the pretty-printed document. The data is
// written to a temp file in the same directory and renamed into place, so
// readers never observe a half-written file.
func Save(path string, doc *models.Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}

// FileStore keeps the document in memory and rewrites the JSON file on
// every mutation. One mutex serialises all writers in this process;
// separate processes sharing the file still race (last writer wins).
type FileStore struct {
	path string

	mu  sync.RWMutex
	doc *models.Document
}

// OpenFile loads the document at path. When createIfMissing is set and the
// file does not exist yet, an empty document is written first.
func OpenFile(path string, createIfMissing bool) (*FileStore, error) {
	doc, err := Load(path)
	if errors.Is(err, ErrNotFound) && createIfMissing {
		doc = models.NewDocument()
		if err := Save(path, doc); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return &FileStore{path: path, doc: doc}, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Get returns a copy of the user's record
func (s *FileStore) Get(_ context.Context, userID string) (*models.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.doc.Users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return rec.Clone(), nil
}

// Create adds an empty record for the user
func (s *FileStore) Create(_ context.Context, userID, username string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Users[userID]; ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrAlreadyExists)
	}

	rec := models.NewUserRecord(username)
	next := s.withUser(userID, rec)
	if err := Save(s.path, next); err != nil {
		return nil, err
	}
	s.doc = next
	return rec.Clone(), nil
}

// Update applies fn to a copy of the user's record and persists the result
func (s *FileStore) Update(_ context.Context, userID string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.doc.Users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	rec := current.Clone()
	if err := fn(rec); err != nil {
		return err
	}

	next := s.withUser(userID, rec)
	if err := Save(s.path, next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// withUser returns a new document sharing every stored record except the
// replaced one. Stored records are never mutated in place, only swapped.
func (s *FileStore) withUser(userID string, rec *models.UserRecord) *models.Document {
	next := &models.Document{Users: make(map[string]*models.UserRecord, len(s.doc.Users)+1)}
	for id, u := range s.doc.Users {
		next.Users[id] = u
	}
	next.Users[userID] = rec
	return next
}

// Snapshot returns a copy of the whole document
func (s *FileStore) Snapshot(_ context.Context) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

// Close is a no-op; every mutation is already on disk
func (s *FileStore) Close() error {
	return nil
}
