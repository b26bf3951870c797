package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// FileStore keeps saved views as JSON files in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/deeptime/views/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "deeptime", "views")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create view dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, nil
	}
	s.mu.RLock()
	sess, err := s.read(s.path(id))
	s.mu.RUnlock()
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, nil
	}
	return sess, nil
}

func (s *FileStore) read(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read view file")
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse view %s", filepath.Base(path))
	}
	return &sess, nil
}

func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || !ValidID(sess.ID) {
		return errors.New(errors.ErrCodeInvalidInput, "view needs a valid id")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "marshal view")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(sess.ID), data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write view file")
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete view file")
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read view dir")
	}
	var out []*Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		sess, err := s.read(filepath.Join(s.baseDir, e.Name()))
		if err != nil || sess == nil || sess.IsExpired() {
			continue
		}
		out = append(out, sess)
	}
	SortByCreation(out)
	return out, nil
}

func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "read view dir")
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.baseDir, e.Name())
		sess, err := s.read(path)
		if err != nil {
			continue
		}
		if sess != nil && sess.IsExpired() {
			os.Remove(path)
		}
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the view files.
func (s *FileStore) Path() string { return s.baseDir }

// SortByCreation orders sessions oldest first, breaking ties by ID.
func SortByCreation(out []*Session) {
	slices.SortStableFunc(out, func(a, b *Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
