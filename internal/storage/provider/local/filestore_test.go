package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	storagetypes "github.com/kmolski/filevault/internal/storage/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalFileStore {
	t.Helper()
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func readAll(t *testing.T, store *LocalFileStore, name string) []byte {
	t.Helper()
	rc, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestNewLocalFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	store, err := NewLocalFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, filepath.IsAbs(store.BaseDir()))
}

func TestNewLocalFileStore_EmptyDir(t *testing.T) {
	_, err := NewLocalFileStore("")
	assert.ErrorIs(t, err, storagetypes.ErrInvalidBaseDir)
}

func TestLocalFileStore_StoreOpen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"simple", "hello.txt", []byte("hi")},
		{"empty", "empty.bin", []byte{}},
		{"binary", "blob.bin", []byte{0x00, 0xFF, 0x42}},
		{"nested", "docs/2024/report.txt", []byte("nested content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Store(ctx, tt.file, tt.data))
			assert.Equal(t, tt.data, readAll(t, store, tt.file))

			onDisk, err := os.ReadFile(filepath.Join(store.BaseDir(), filepath.FromSlash(tt.file)))
			require.NoError(t, err)
			assert.Equal(t, tt.data, onDisk)
		})
	}
}

func TestLocalFileStore_Overwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "a.txt", []byte("first and longer")))
	require.NoError(t, store.Store(ctx, "a.txt", []byte("second")))

	assert.Equal(t, []byte("second"), readAll(t, store, "a.txt"))
}

func TestLocalFileStore_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, storagetypes.ErrNotFound)
}

func TestLocalFileStore_OpenDirectory(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(store.BaseDir(), "subdir"), 0755))

	_, err := store.Open(context.Background(), "subdir")
	assert.ErrorIs(t, err, storagetypes.ErrNotFound)
}

func TestLocalFileStore_RejectsTraversal(t *testing.T) {
	parent := t.TempDir()
	store, err := NewLocalFileStore(filepath.Join(parent, "base"))
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "../outside.txt", "a/../../outside.txt", "/etc/passwd", `..\outside.txt`} {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			err := store.Store(ctx, name, []byte("x"))
			assert.ErrorIs(t, err, storagetypes.ErrInvalidName)

			_, err = store.Open(ctx, name)
			assert.ErrorIs(t, err, storagetypes.ErrInvalidName)
		})
	}

	_, err = os.Stat(filepath.Join(parent, "outside.txt"))
	assert.True(t, os.IsNotExist(err), "nothing may be written outside the base directory")
}

func TestLocalFileStore_RejectsSymlinkEscape(t *testing.T) {
	store := newTestStore(t)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("secret"), 0600))

	if err := os.Symlink(outside, filepath.Join(store.BaseDir(), "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	ctx := context.Background()

	_, err := store.Open(ctx, "link/secret.txt")
	assert.ErrorIs(t, err, storagetypes.ErrInvalidName)

	err = store.Store(ctx, "link/new.txt", []byte("x"))
	assert.ErrorIs(t, err, storagetypes.ErrInvalidName)
	_, err = os.Stat(filepath.Join(outside, "new.txt"))
	assert.True(t, os.IsNotExist(err))

	err = store.Store(ctx, "link/created/dir/f.txt", []byte("x"))
	assert.ErrorIs(t, err, storagetypes.ErrInvalidName)
	_, err = os.Stat(filepath.Join(outside, "created"))
	assert.True(t, os.IsNotExist(err), "no directory may be created outside the base directory")
}

func TestLocalFileStore_RejectsSymlinkedTarget(t *testing.T) {
	store := newTestStore(t)
	outside := t.TempDir()
	victim := filepath.Join(outside, "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("original"), 0600))

	if err := os.Symlink(victim, filepath.Join(store.BaseDir(), "evil.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	ghost := filepath.Join(outside, "ghost.txt")
	require.NoError(t, os.Symlink(ghost, filepath.Join(store.BaseDir(), "dangling.txt")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "nowhere"), filepath.Join(store.BaseDir(), "deadlink")))
	ctx := context.Background()

	err := store.Store(ctx, "evil.txt", []byte("OVERWRITTEN"))
	assert.ErrorIs(t, err, storagetypes.ErrInvalidName)
	data, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	err = store.Store(ctx, "dangling.txt", []byte("x"))
	assert.ErrorIs(t, err, storagetypes.ErrInvalidName)
	_, err = os.Stat(ghost)
	assert.True(t, os.IsNotExist(err))

	err = store.Store(ctx, "deadlink/sub/f.txt", []byte("x"))
	assert.ErrorIs(t, err, storagetypes.ErrInvalidName)
	_, err = os.Stat(filepath.Join(outside, "nowhere"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalFileStore_StoreIOFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// a regular file where a directory is needed
	require.NoError(t, store.Store(ctx, "plain", []byte("x")))

	err := store.Store(ctx, "plain/child.txt", []byte("y"))
	assert.ErrorIs(t, err, storagetypes.ErrIOFailure)
}

func TestLocalFileStore_ConcurrentStores(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("file-%d.txt", i)
			assert.NoError(t, store.Store(ctx, name, []byte(name)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("file-%d.txt", i)
		assert.Equal(t, []byte(name), readAll(t, store, name))
	}
}
