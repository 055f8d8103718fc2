package service

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// MockupPublicPrefix is the URL path generated mockups are served under
const MockupPublicPrefix = "/generated-mockups/"

// MockupStore writes downloaded mockups to a local directory
type MockupStore struct {
	dir string
}

// NewMockupStore creates a store rooted at dir
func NewMockupStore(dir string) *MockupStore {
	return &MockupStore{dir: dir}
}

// Dir returns the directory mockups are written to
func (s *MockupStore) Dir() string {
	return s.dir
}

// Save writes data under filename, replacing any previous file with the same
// name. It returns the file path on disk and the public URL path.
func (s *MockupStore) Save(filename string, data []byte) (string, string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create mockup directory: %w", err)
	}

	filePath := filepath.Join(s.dir, filepath.Base(filename))
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write mockup: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		_ = os.Remove(tmp)
		return "", "", fmt.Errorf("failed to store mockup: %w", err)
	}

	return filePath, path.Join(MockupPublicPrefix, filepath.Base(filename)), nil
}
