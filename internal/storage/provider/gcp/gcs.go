package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/labstack/gommon/log"
	"google.golang.org/api/option"

	"github.com/kmolski/filevault/internal/config"
	storagetypes "github.com/kmolski/filevault/internal/storage/types"
)

type BucketHandleInterface interface {
	Object(name string) ObjectHandleInterface
}

type ObjectHandleInterface interface {
	NewReader(ctx context.Context) (io.ReadCloser, error)
	NewWriter(ctx context.Context) io.WriteCloser
}

type bucketHandleWrapper struct {
	bucket *storage.BucketHandle
}

func (b *bucketHandleWrapper) Object(name string) ObjectHandleInterface {
	return &objectHandleWrapper{obj: b.bucket.Object(name)}
}

type objectHandleWrapper struct {
	obj *storage.ObjectHandle
}

func (o *objectHandleWrapper) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return o.obj.NewReader(ctx)
}

func (o *objectHandleWrapper) NewWriter(ctx context.Context) io.WriteCloser {
	return o.obj.NewWriter(ctx)
}

type GCSStore struct {
	client *storage.Client
	bucket BucketHandleInterface
	prefix string
}

func NewGCSStore(ctx context.Context) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	log.Infof("GCS file store initialized for bucket %s", config.GCSBucket)
	return &GCSStore{
		client: client,
		bucket: &bucketHandleWrapper{bucket: client.Bucket(config.GCSBucket)},
		prefix: config.GCSPrefix,
	}, nil
}

func (g *GCSStore) object(name string) (ObjectHandleInterface, error) {
	cleaned, err := storagetypes.CleanName(name)
	if err != nil {
		return nil, err
	}
	return g.bucket.Object(g.prefix + cleaned), nil
}

func (g *GCSStore) Store(ctx context.Context, name string, data []byte) error {
	obj, err := g.object(name)
	if err != nil {
		return err
	}

	// the object only becomes visible once Close succeeds
	writer := obj.NewWriter(ctx)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		writer.Close()
		return fmt.Errorf("%w: failed to write file to GCS: %w", storagetypes.ErrIOFailure, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: failed to close GCS writer: %w", storagetypes.ErrIOFailure, err)
	}

	return nil
}

func (g *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := g.object(name)
	if err != nil {
		return nil, err
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", storagetypes.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to read file from GCS: %w", storagetypes.ErrIOFailure, err)
	}

	return reader, nil
}

func (g *GCSStore) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
