// Package local_test tests the local filesystem store.
package local_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/ufcstats-fighters/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		store, err := local.New(local.Config{BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("CreatesMissingDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		_, err := local.New(local.Config{BaseDir: dir})
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := local.New(local.Config{})
		assert.Error(t, err)
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		_, err := local.New(local.Config{BaseDir: path})
		assert.Error(t, err)
	})

	t.Run("BaseDirNotWritable", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		tempDir := t.TempDir()
		// #nosec G302 -- directory permissions adjusted intentionally for test coverage.
		require.NoError(t, os.Chmod(tempDir, 0o500))
		t.Cleanup(func() {
			// #nosec G302 -- reverting permissions to allow cleanup in the test environment.
			_ = os.Chmod(tempDir, 0o700)
		})

		_, err := local.New(local.Config{BaseDir: tempDir})
		assert.Error(t, err)
	})
}

func TestPut(t *testing.T) {
	tempDir := t.TempDir()
	store, err := local.New(local.Config{BaseDir: tempDir})
	require.NoError(t, err)

	t.Run("ValidPut", func(t *testing.T) {
		data := "hello world"
		obj, err := store.Put(context.Background(), "object.txt", strings.NewReader(data))
		require.NoError(t, err)

		expected := filepath.Join(tempDir, "object.txt")
		assert.Equal(t, expected, obj.Path)
		assert.Equal(t, "file://"+expected, obj.URI)
		assert.EqualValues(t, len(data), obj.Size)

		// #nosec G304 -- test reads from the controlled temp directory.
		readData, err := os.ReadFile(expected)
		require.NoError(t, err)
		assert.Equal(t, data, string(readData))

		stat, err := store.Stat("object.txt")
		require.NoError(t, err)
		assert.Equal(t, obj.Size, stat.Size)
	})

	t.Run("Overwrite", func(t *testing.T) {
		_, err := store.Put(context.Background(), "again.txt", strings.NewReader("first version"))
		require.NoError(t, err)
		obj, err := store.Put(context.Background(), "again.txt", strings.NewReader("v2"))
		require.NoError(t, err)
		assert.EqualValues(t, 2, obj.Size)
	})

	t.Run("NoTempFilesLeft", func(t *testing.T) {
		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		_, err := store.Put(context.Background(), "", strings.NewReader("data"))
		assert.Error(t, err)
	})

	t.Run("PathTraversal", func(t *testing.T) {
		_, err := store.Put(context.Background(), "../escape.txt", strings.NewReader("data"))
		assert.Error(t, err)
	})

	t.Run("ReaderError", func(t *testing.T) {
		_, err := store.Put(context.Background(), "broken.txt", failingReader{})
		assert.Error(t, err)
		_, statErr := os.Stat(filepath.Join(tempDir, "broken.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Put(ctx, "late.txt", strings.NewReader("data"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}
