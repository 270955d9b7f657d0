package fsx_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "agentcoach/internal/platform/errors"
	"agentcoach/internal/platform/fsx"
)

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, fsx.WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, fsx.WriteFileAtomic(path, []byte("second"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileIfAbsentKeepsExisting(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.md")

	created, err := fsx.WriteFileIfAbsent(path, []byte("template"), 0o644)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, os.WriteFile(path, []byte("edited"), 0o644))
	created, err = fsx.WriteFileIfAbsent(path, []byte("template"), 0o644)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(got))
}

func TestEnsureDirReportsStorageUnavailable(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := fsx.EnsureDir(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorageUnavailable))
}
