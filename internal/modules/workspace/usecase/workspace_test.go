package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	workspaceout "agentcoach/internal/modules/workspace/adapter/out"
	workspacein "agentcoach/internal/modules/workspace/port/in"
	"agentcoach/internal/modules/workspace/service"
	"agentcoach/internal/modules/workspace/usecase"
	apperrors "agentcoach/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newWorkspace(t *testing.T, root string) (workspacein.Usecase, *observer.ObservedLogs) {
	t.Helper()
	templates, err := workspaceout.NewEmbeddedTemplates()
	require.NoError(t, err)
	core, logs := observer.New(zapcore.InfoLevel)
	svc := service.NewWorkspaceService(fixedClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}, workspaceout.NewFileScaffold(root), templates)
	return usecase.NewInteractor(root, svc, zap.New(core)), logs
}

func TestInitializeCreatesLayout(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), ".agent-coach")
	uc, logs := newWorkspace(t, root)

	out, err := uc.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, root, out.Root)
	assert.Equal(t, 10, out.Created)
	require.Len(t, out.Entries, 10)
	for _, entry := range out.Entries {
		assert.Equalf(t, "created", entry.Status, "%s", entry.Path)
	}

	for _, dir := range []string{"sessions", "patterns", "reflections"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	evolution, err := os.ReadFile(filepath.Join(root, "evolution.md"))
	require.NoError(t, err)
	assert.Contains(t, string(evolution), "### 2024-01-01 - Started\n- Initialized agent-learning-coach\n")

	profile, err := os.ReadFile(filepath.Join(root, "profile.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(profile), "# Your Profile\n\n## Background\n"))
	assert.Contains(t, string(profile), "- Experience level: \n")

	effective, err := os.ReadFile(filepath.Join(root, "patterns", "effective.md"))
	require.NoError(t, err)
	assert.Contains(t, string(effective), "*Last updated: Never*")
	assert.Equal(t, 1, logs.FilterMessage("workspace initialized").Len())
}

func TestInitializeNeverOverwrites(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "profile.md"), []byte("mine"), 0o644))
	uc, _ := newWorkspace(t, root)

	out, err := uc.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "exists", out.Entries[0].Status, "root already existed")

	raw, err := os.ReadFile(filepath.Join(root, "profile.md"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(raw))

	again, err := uc.Initialize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	for _, entry := range again.Entries {
		assert.Equal(t, "exists", entry.Status)
	}
}

func TestInitializeReportsBlockedDirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sessions"), []byte("not a dir"), 0o644))
	uc, _ := newWorkspace(t, root)

	_, err := uc.Initialize(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrStorageUnavailable))
}
