package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore writes photos to a local directory. Used in standalone and
// degraded deployments where no object storage is configured.
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) *LocalStore {
	return &LocalStore{baseDir: baseDir, baseURL: baseURL}
}

func (s *LocalStore) Store(ctx context.Context, sessionID uuid.UUID, filename string, data []byte, contentType string) (string, error) {
	relPath := filepath.Join("sessions", sessionID.String(), fmt.Sprintf("%s_%s", uuid.New().String()[:8], filepath.Base(filename)))
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create photo directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}

	return s.baseURL + "/" + filepath.ToSlash(relPath), nil
}
