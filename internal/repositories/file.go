package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/spf13/afero"
)

const snapshotKey = "watched-snapshot"

// FileStore implements [Storage] as a single JSON object on an [afero.Fs].
//
// The file is re-read on every call so that edits by another process are
// seen, and rewritten through a temp file and rename.
type FileStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	now  func() time.Time
}

// NewFileStore creates a [FileStore] backed by path on fsys.
func NewFileStore(fsys afero.Fs, path string) *FileStore {
	return &FileStore{fs: fsys, path: path, now: time.Now}
}

// NewOSFileStore creates a [FileStore] on the real filesystem.
func NewOSFileStore(path string) *FileStore {
	return NewFileStore(afero.NewOsFs(), path)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	doc := make(map[string]string)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) write(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Get retrieves the value stored under key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

// Set inserts or replaces the value stored under key.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = value
	return s.write(doc)
}

// Delete removes key. Deleting a missing key does not touch the file.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.write(doc)
}

type fileSnapshot struct {
	TakenAt time.Time      `json:"takenAt"`
	Entries []models.Entry `json:"entries"`
}

// Save stores list as the watched list snapshot.
func (s *FileStore) Save(list []models.Entry) error {
	data, err := json.Marshal(fileSnapshot{TakenAt: s.now().UTC(), Entries: list})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return s.Set(snapshotKey, string(data))
}

// Latest returns the stored snapshot and when it was taken.
func (s *FileStore) Latest() ([]models.Entry, time.Time, error) {
	raw, ok, err := s.Get(snapshotKey)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !ok {
		return nil, time.Time{}, ErrNoSnapshot
	}

	var snap fileSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap.Entries, snap.TakenAt, nil
}
