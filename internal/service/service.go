// Package service decides whether a payload passes through a cipher on its
// way to or from the file store.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/kmolski/filevault/internal/keys"
	"github.com/kmolski/filevault/internal/storage/types"
)

// ErrMissingAlgorithm is returned when an encryption or decryption operation
// is invoked without an algorithm. Such requests never fall back to storing
// the payload untransformed.
var ErrMissingAlgorithm = errors.New("service: algorithm is required")

// Transformer is the cipher side of the service, satisfied by *keys.Manager.
type Transformer interface {
	Encrypt(alg keys.Algorithm, plaintext []byte) ([]byte, error)
	Decrypt(alg keys.Algorithm, ciphertext []byte) ([]byte, error)
}

type File struct {
	Name     string
	MimeType string
	Content  []byte
}

// UploadData describes a completed upload. Size is the length of the
// content as received, before any transform.
type UploadData struct {
	Name     string `json:"name"`
	MimeType string `json:"mimetype"`
	Size     int    `json:"size"`
	Time     int64  `json:"time"`
}

type direction int

const (
	plain direction = iota
	encrypt
	decrypt
)

type Service struct {
	keys  Transformer
	files types.FileStore
	now   func() time.Time
}

func New(transformer Transformer, files types.FileStore) *Service {
	return &Service{
		keys:  transformer,
		files: files,
		now:   time.Now,
	}
}

// Upload persists the file as received.
func (s *Service) Upload(ctx context.Context, f File) (*UploadData, error) {
	return s.save(ctx, f, plain, keys.None)
}

// UploadEncrypted encrypts the file with alg before persisting it.
func (s *Service) UploadEncrypted(ctx context.Context, f File, alg keys.Algorithm) (*UploadData, error) {
	return s.save(ctx, f, encrypt, alg)
}

// UploadDecrypted decrypts received ciphertext with alg and persists the
// recovered plaintext.
func (s *Service) UploadDecrypted(ctx context.Context, f File, alg keys.Algorithm) (*UploadData, error) {
	return s.save(ctx, f, decrypt, alg)
}

// Open streams the stored bytes, whatever transform they went through.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.files.Open(ctx, name)
}

// OpenDecrypted reads a stored file in full and reverses alg on it.
func (s *Service) OpenDecrypted(ctx context.Context, name string, alg keys.Algorithm) ([]byte, error) {
	if alg == keys.None {
		return nil, ErrMissingAlgorithm
	}

	rc, err := s.files.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	stored, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIOFailure, err)
	}

	return s.keys.Decrypt(alg, stored)
}

func (s *Service) save(ctx context.Context, f File, dir direction, alg keys.Algorithm) (*UploadData, error) {
	content, err := s.transform(f.Content, dir, alg)
	if err != nil {
		return nil, err
	}

	if err := s.files.Store(ctx, f.Name, content); err != nil {
		return nil, err
	}

	log.Debugf("stored %s (%d bytes received, %d bytes written, algorithm %s)", f.Name, len(f.Content), len(content), alg)
	return &UploadData{
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     len(f.Content),
		Time:     s.now().Unix(),
	}, nil
}

func (s *Service) transform(content []byte, dir direction, alg keys.Algorithm) ([]byte, error) {
	if dir == plain {
		return content, nil
	}
	if alg == keys.None {
		return nil, ErrMissingAlgorithm
	}

	if dir == encrypt {
		return s.keys.Encrypt(alg, content)
	}
	return s.keys.Decrypt(alg, content)
}
