package out_test

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

	reflectionout "agentcoach/internal/modules/reflection/adapter/out"
	"agentcoach/internal/modules/reflection/domain"
	apperrors "agentcoach/internal/platform/errors"
)

func sampleRun(id string, at time.Time) domain.Run {
	return domain.Run{ID: id, CreatedAt: at, SessionCount: 4, SkippedCount: 1, MaxAgeDays: 7, MaxCount: 20}
}

func TestArchiveStoreRoundTrip(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "reflections")
	store := reflectionout.NewMarkdownArchiveStore(dir)
	ctx := context.Background()
	run := sampleRun("0f8fad5b-d9cb-469f-a165-70867728950e", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC))
	prompt := "You are a coding coach.\n\n## Recent Sessions\nNo sessions logged yet\n"

	path, err := store.Save(ctx, domain.RunDocument{Run: run, Prompt: prompt})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-01-02-0f8fad5b.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "---\nschema_version: 1\nid: 0f8fad5b-d9cb-469f-a165-70867728950e\n"))
	assert.Contains(t, string(raw), "2024-01-02T15:04:05Z")

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, prompt, docs[0].Prompt)
	assert.Equal(t, path, docs[0].Run.Path)
	assert.True(t, run.CreatedAt.Equal(docs[0].Run.CreatedAt))
	assert.Equal(t, 4, docs[0].Run.SessionCount)

	found, err := store.FindByID(ctx, "0f8fad5b")
	require.NoError(t, err)
	assert.Equal(t, run.ID, found.Run.ID)
}

func TestArchiveStoreLookupErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := reflectionout.NewMarkdownArchiveStore(dir)
	ctx := context.Background()
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := store.Save(ctx, domain.RunDocument{Run: sampleRun("aaaaaaaa-0001", at)})
	require.NoError(t, err)
	_, err = store.Save(ctx, domain.RunDocument{Run: sampleRun("aaaaaaaa-0002", at.AddDate(0, 0, 1))})
	require.NoError(t, err)

	_, err = store.FindByID(ctx, "aaaaaaaa")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "prefix matches two runs")
	found, err := store.FindByID(ctx, "aaaaaaaa-0002")
	require.NoError(t, err)
	assert.Equal(t, 1, found.Run.CreatedAt.Day()-at.Day())

	_, err = store.FindByID(ctx, "abc")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	_, err = store.FindByID(ctx, "bbbbbbbb")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestArchiveStoreListEmptyAndCorrupt(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "missing")
	store := reflectionout.NewMarkdownArchiveStore(dir)
	docs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.md"), []byte("just notes"), 0o644))
	_, err = store.List(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrParse))
}

func TestSQLiteHistoryProjector(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), ".coach", "coach.db")
	projector := reflectionout.NewSQLiteHistoryProjector(dbPath)
	_, statErr := os.Stat(filepath.Dir(dbPath))
	assert.True(t, os.IsNotExist(statErr), "database directory is created on first use")
	t.Cleanup(func() { _ = projector.Close() })
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	for i, id := range []string{"11111111-a", "22222222-b", "33333333-c"} {
		run := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		run.Path = "/tmp/" + id + ".md"
		require.NoError(t, projector.UpsertRun(ctx, run))
	}
	updated := sampleRun("11111111-a", base)
	updated.SessionCount = 9
	require.NoError(t, projector.UpsertRun(ctx, updated))

	runs, err := projector.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "33333333-c", runs[0].ID)
	assert.Equal(t, "22222222-b", runs[1].ID)
	assert.True(t, base.Add(2*time.Hour).Equal(runs[0].CreatedAt))

	all, err := projector.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 9, all[2].SessionCount)
	assert.Empty(t, all[2].Path)

	require.NoError(t, projector.Reset(ctx))
	all, err = projector.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLiteHistoryProjectorReadsDoNotCreateDatabase(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "coach")
	projector := reflectionout.NewSQLiteHistoryProjector(filepath.Join(root, ".coach", "coach.db"))
	t.Cleanup(func() { _ = projector.Close() })

	runs, err := projector.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	_, statErr := os.Stat(root)
	assert.True(t, os.IsNotExist(statErr), "listing history must not create the coach root")
}

func TestEvolutionLogKeepsUserText(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "evolution.md")
	require.NoError(t, os.WriteFile(path, []byte("# Evolution Log\n\n## 2024-01-01\n- Started coaching\n"), 0o644))
	log := reflectionout.NewFileEvolutionLog(path)
	ctx := context.Background()
	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, log.Record(ctx, []domain.Run{sampleRun("0f8fad5b-1", at)}))
	require.NoError(t, log.Record(ctx, []domain.Run{sampleRun("9f8fad5b-2", at.Add(time.Hour)), sampleRun("0f8fad5b-1", at)}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.True(t, strings.HasPrefix(content, "# Evolution Log\n\n## 2024-01-01\n- Started coaching\n\n"+domain.EvolutionStart))
	assert.Equal(t, 1, strings.Count(content, domain.EvolutionStart))
	assert.Contains(t, content, "- 2024-01-02 10:30 `9f8fad5b` 4 sessions, 1 skipped\n- 2024-01-02 09:30 `0f8fad5b` 4 sessions, 1 skipped\n"+domain.EvolutionEnd)
}

func TestFileContextStore(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	store := reflectionout.NewFileContextStore(root)
	ctx := context.Background()

	exists, err := store.RootExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, os.WriteFile(filepath.Join(root, "profile.md"), []byte("# Profile\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "patterns"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "patterns", "anti-patterns.md"), []byte("avoid vague asks"), 0o644))

	docs, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CoachDocs{Profile: "# Profile\n", AntiPatterns: "avoid vague asks"}, docs)

	missing := reflectionout.NewFileContextStore(filepath.Join(root, "nope"))
	exists, err = missing.RootExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}
