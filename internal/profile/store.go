// Package profile persists the reader profile used to personalize analyses.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gauthierbraillon/datinsight/internal/analysis"
)

// ErrNotFound is returned when no profile has been saved yet.
var ErrNotFound = errors.New("user context not found")

const fileName = "context.json"

// FileStore keeps one UserContext as JSON in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path is the file the profile lives in.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, fileName)
}

func (s *FileStore) Save(uc analysis.UserContext) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(uc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user context: %w", err)
	}

	return os.WriteFile(s.Path(), data, 0600)
}

func (s *FileStore) Load() (analysis.UserContext, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return analysis.UserContext{}, ErrNotFound
		}
		return analysis.UserContext{}, fmt.Errorf("failed to read user context: %w", err)
	}

	var uc analysis.UserContext
	if err := json.Unmarshal(data, &uc); err != nil {
		return analysis.UserContext{}, fmt.Errorf("failed to unmarshal user context: %w", err)
	}
	return uc, nil
}

// Clear removes the saved profile. Clearing a missing profile is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove user context: %w", err)
	}
	return nil
}

// UserContext returns the saved profile, or nil when none exists.
func (s *FileStore) UserContext(context.Context) (*analysis.UserContext, error) {
	uc, err := s.Load()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &uc, nil
}
