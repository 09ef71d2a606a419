// Package local implements a local filesystem store for scraper artifacts:
// the CSV dataset and raw debug pages.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config captures the parameters for the local filesystem store.
type Config struct {
	// BaseDir is the root directory where artifacts will be written.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// Object describes a written artifact.
type Object struct {
	Path string
	URI  string
	Size int64
}

// Store writes artifacts to the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local filesystem-backed store.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	testFile := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &Store{baseDir: cfg.BaseDir}, nil
}

// Put streams data to name under the base directory. The file is written to a
// temporary sibling and renamed into place, so readers never see a partial file.
func (s *Store) Put(ctx context.Context, name string, data io.Reader) (Object, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, fmt.Errorf("put %s: %w", name, err)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Object{}, fmt.Errorf("failed to create parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	size, err := io.Copy(tmp, data)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return Object{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return Object{}, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return Object{}, fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		cleanup()
		return Object{}, fmt.Errorf("failed to move file into place: %w", err)
	}

	return Object{Path: fullPath, URI: "file://" + fullPath, Size: size}, nil
}

// Stat reports the on-disk size of a previously written artifact.
func (s *Store) Stat(name string) (Object, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return Object{}, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", name, err)
	}
	return Object{Path: fullPath, URI: "file://" + fullPath, Size: info.Size()}, nil
}

// resolve joins name onto the base directory, rejecting paths that escape it.
func (s *Store) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("path is required")
	}
	fullPath := filepath.Join(s.baseDir, name)
	cleanBaseDir := filepath.Clean(s.baseDir)
	cleanFullPath := filepath.Clean(fullPath)
	if !strings.HasPrefix(cleanFullPath, cleanBaseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return cleanFullPath, nil
}
