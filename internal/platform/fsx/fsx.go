// Package fsx holds the small file-system helpers shared by the file-backed adapters.
package fsx

import (
	"fmt"
	"os"
	"path/filepath"

	apperrors "agentcoach/internal/platform/errors"
)

// EnsureDir creates dir and its parents. Failure is reported as ErrStorageUnavailable.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", apperrors.ErrStorageUnavailable, dir, err)
	}
	return nil
}

// WriteFileAtomic writes payload to a temp file beside path and renames it into place,
// so readers observe either the previous content or the new content.
func WriteFileAtomic(path string, payload []byte, perm os.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteFileIfAbsent creates path with payload only when nothing exists there yet.
// It reports whether the file was created.
func WriteFileIfAbsent(path string, payload []byte, perm os.FileMode) (bool, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
