package services

import (
	"context"
	"fmt"
	"io"

	"github.com/bluebay-mechanical/field-service-api/config"
)

// Storage is the blob store photos are written to
type Storage interface {
	// Put writes body under key
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the object under key
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of key
	URL(key string) string
}

var storageInstance Storage

// InitStorage builds the storage backend selected by STORAGE_DRIVER
func InitStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	var (
		s   Storage
		err error
	)
	switch cfg.StorageDriver {
	case "s3":
		s, err = NewS3Storage(ctx, cfg)
	case "local":
		s, err = NewLocalStorage(cfg.StorageLocalDir, cfg.StoragePublicURL)
	default:
		err = fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}

	storageInstance = s
	return s, nil
}

// GetStorage returns the initialized storage backend
func GetStorage() Storage {
	return storageInstance
}

// SetStorage sets the storage backend (primarily for testing)
func SetStorage(s Storage) {
	storageInstance = s
}
