// Package storage provides object storage for generated designs and user uploads.
package storage

import (
	"context"
	"errors"
)

// Key prefixes namespace objects by purpose
const (
	GeneratedPrefix = "generated/"
	ReferencePrefix = "reference-images/"
)

// ErrObjectNotFound is returned by Get for unknown keys
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore stores raw bytes under string keys
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	PublicURL(key string) string
}
