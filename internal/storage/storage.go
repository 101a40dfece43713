package storage

import (
	"context"

	"github.com/google/uuid"
)

// PhotoStore persists proof-of-pick images and returns a retrievable URL.
type PhotoStore interface {
	Store(ctx context.Context, sessionID uuid.UUID, filename string, data []byte, contentType string) (string, error)
}
