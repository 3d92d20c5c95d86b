package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"

	storagetypes "github.com/kmolski/filevault/internal/storage/types"
)

// LocalFileStore keeps files flat under one base directory. The directory is
// fixed at construction and never changes, so it is read without locking.
type LocalFileStore struct {
	baseDir string
}

func NewLocalFileStore(baseDir string) (*LocalFileStore, error) {
	if baseDir == "" {
		return nil, storagetypes.ErrInvalidBaseDir
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", storagetypes.ErrInvalidBaseDir, err)
	}

	// symlinks are resolved so containment checks compare canonical paths
	canonical, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storagetypes.ErrInvalidBaseDir, err)
	}
	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storagetypes.ErrInvalidBaseDir, err)
	}

	log.Infof("Local file store initialized at %s", canonical)
	return &LocalFileStore{
		baseDir: canonical,
	}, nil
}

func (l *LocalFileStore) BaseDir() string {
	return l.baseDir
}

func (l *LocalFileStore) Store(_ context.Context, name string, data []byte) error {
	filePath, err := l.resolve(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := l.confineAncestor(name, dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", storagetypes.ErrIOFailure, err)
	}
	if err := l.confine(name, dir); err != nil {
		return err
	}

	// the final component is never followed
	if info, err := os.Lstat(filePath); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		return fmt.Errorf("%w: %q is a symlink", storagetypes.ErrInvalidName, name)
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|noFollow, 0644)
	if err != nil {
		return fmt.Errorf("%w: could not create file: %w", storagetypes.ErrIOFailure, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("%w: could not write file: %w", storagetypes.ErrIOFailure, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: could not close file: %w", storagetypes.ErrIOFailure, err)
	}

	return nil
}

func (l *LocalFileStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	filePath, err := l.resolve(name)
	if err != nil {
		return nil, err
	}

	if err := l.confine(name, filePath); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storagetypes.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %w", storagetypes.ErrIOFailure, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %w", storagetypes.ErrIOFailure, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%w: %s", storagetypes.ErrNotFound, name)
	}

	return file, nil
}

// resolve maps name to a path under the base directory without touching the
// filesystem.
func (l *LocalFileStore) resolve(name string) (string, error) {
	cleaned, err := storagetypes.CleanName(name)
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(l.baseDir, filepath.FromSlash(cleaned))
	if !l.contains(filePath) {
		return "", fmt.Errorf("%w: %q escapes the base directory", storagetypes.ErrInvalidName, name)
	}
	return filePath, nil
}

// confine rejects paths that leave the base directory through a symlink.
// A path that does not exist yet is left to the caller.
func (l *LocalFileStore) confine(name, filePath string) error {
	resolved, err := filepath.EvalSymlinks(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w", storagetypes.ErrIOFailure, err)
	}
	if !l.contains(resolved) {
		return fmt.Errorf("%w: %q escapes the base directory", storagetypes.ErrInvalidName, name)
	}
	return nil
}

// confineAncestor checks the deepest existing ancestor of dir, so that no
// directory is created through a symlink leading out of the base directory.
func (l *LocalFileStore) confineAncestor(name, dir string) error {
	for {
		_, err := os.Lstat(dir)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", storagetypes.ErrIOFailure, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// dangling symlink
			return fmt.Errorf("%w: %q escapes the base directory", storagetypes.ErrInvalidName, name)
		}
		return fmt.Errorf("%w: %w", storagetypes.ErrIOFailure, err)
	}
	if !l.contains(resolved) {
		return fmt.Errorf("%w: %q escapes the base directory", storagetypes.ErrInvalidName, name)
	}
	return nil
}

func (l *LocalFileStore) contains(filePath string) bool {
	rel, err := filepath.Rel(l.baseDir, filePath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
