package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// FileStore keeps raw documents as UTF-8 files below a root directory.
type FileStore struct {
	root   string
	logger *zap.Logger
}

func NewFileStore(root string, logger *zap.Logger) *FileStore {
	return &FileStore{root: root, logger: logger}
}

// Store writes text to folder/name, creating the folder as needed.
func (s *FileStore) Store(_ context.Context, folder, name, text string) error {
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	s.logger.Info("saving document", zap.String("path", path))
	return os.WriteFile(path, []byte(text), 0o644)
}

func (s *FileStore) Load(_ context.Context, folder, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, folder, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns the document names in folder, sorted.
func (s *FileStore) List(_ context.Context, folder string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, folder))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
