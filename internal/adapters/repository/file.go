package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type fileEntry struct {
	Value   string    `yaml:"value"`
	Expires time.Time `yaml:"expires"`
}

type fileDocument struct {
	Preferences map[string]fileEntry `yaml:"preferences"`
}

// FileStore keeps preferences in a YAML document on disk. Every call reads
// the file, so several processes may share it with last-writer-wins.
type FileStore struct {
	path string
	opts storeOptions
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first write.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store: %w", ErrEmptyKey)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FileStore{path: path, opts: o}, nil
}

func (s *FileStore) load() (fileDocument, error) {
	doc := fileDocument{Preferences: map[string]fileEntry{}}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read preferences: %w", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode preferences: %w", err)
	}
	if doc.Preferences == nil {
		doc.Preferences = map[string]fileEntry{}
	}
	return doc, nil
}

// save writes doc to a temporary file and renames it over the target.
func (s *FileStore) save(doc fileDocument) error {
	now := s.opts.now()
	for k, e := range doc.Preferences {
		if !now.Before(e.Expires) {
			delete(doc.Preferences, k)
		}
	}

	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}
	e, ok := doc.Preferences[key]
	if !ok || !s.opts.now().Before(e.Expires) {
		return "", ErrNotFound
	}
	return e.Value, nil
}

// Set stores value under key, restarting its TTL.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Preferences[key] = fileEntry{Value: value, Expires: s.opts.now().Add(s.opts.ttl)}
	return s.save(doc)
}

// Delete removes key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Preferences[key]; !ok {
		return nil
	}
	delete(doc.Preferences, key)
	return s.save(doc)
}

// Close is a no-op; the file is not held open.
func (s *FileStore) Close() error { return nil }
