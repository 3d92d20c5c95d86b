package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/labstack/gommon/log"

	"github.com/kmolski/filevault/internal/config"
	"github.com/kmolski/filevault/internal/storage/provider/aws"
	"github.com/kmolski/filevault/internal/storage/provider/gcp"
	"github.com/kmolski/filevault/internal/storage/provider/local"
	"github.com/kmolski/filevault/internal/storage/types"
)

var fileStore types.FileStore

// Initialize sets up the file store selected by the storage configuration
func Initialize(ctx context.Context) error {
	if err := config.ValidateStorage(); err != nil {
		return err
	}

	switch config.StorageBackend {
	case config.BackendS3:
		log.Info("Initializing S3 storage provider")
		store, err := aws.NewS3Store(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize S3: %w", err)
		}
		fileStore = store
	case config.BackendGCS:
		log.Info("Initializing GCS storage provider")
		store, err := gcp.NewGCSStore(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize GCS: %w", err)
		}
		fileStore = store
	default:
		log.Info("Initializing local storage provider")
		store, err := local.NewLocalFileStore(config.BaseDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		fileStore = store
	}

	return nil
}

// GetFileStore returns the configured file store
func GetFileStore() types.FileStore {
	return fileStore
}

// Close releases the client held by the configured file store, if any.
func Close() error {
	closer, ok := fileStore.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("failed to close file store: %w", err)
	}
	return nil
}

// SetFileStore sets the file store (for testing)
func SetFileStore(store types.FileStore) {
	fileStore = store
}
