package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

type UploadResult struct {
	Key  string
	ETag string
}

// ObjectStore - минимальный клиент объектного хранилища (R2/S3).
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Get returns ErrObjectNotFound when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error
}
