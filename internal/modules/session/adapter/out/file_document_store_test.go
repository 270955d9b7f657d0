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

	sessionout "agentcoach/internal/modules/session/adapter/out"
	"agentcoach/internal/modules/session/domain"
	apperrors "agentcoach/internal/platform/errors"
)

func TestLoadMissingDayIsNotFound(t *testing.T) {
	t.Parallel()
	store := sessionout.NewFileDocumentStore(filepath.Join(t.TempDir(), "sessions"))
	_, found, err := store.Load(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveWritesIndentedDocumentWithoutIterations(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "sessions")
	store := sessionout.NewFileDocumentStore(dir)
	doc := domain.NewDocument("2024-01-01", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	path, err := store.Save(context.Background(), "2024-01-01", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session-2024-01-01.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "{\n  \"date\": \"2024-01-01\""), text)
	assert.Contains(t, text, "\"decisions\": []")
	assert.NotContains(t, text, "prompt_iterations")
}

func TestLoadCorruptDayIsParseError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-2024-01-01.json"), []byte("{not json"), 0o644))
	store := sessionout.NewFileDocumentStore(dir)

	_, _, err := store.Load(context.Background(), "2024-01-01")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParse))
}

func TestLoadToleratesForeignTimestampsAndUnknownFields(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	legacy := `{"date": "2024-01-02", "timestamp": "2024-01-02T10:11:12.345678", "decisions": [], "outcomes": [{"timestamp": "2024-01-02T10:12:00", "result": "success", "description": "ok", "context": {"workers": 4}}], "notes": [], "extra": true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-2024-01-02.json"), []byte(legacy), 0o644))
	store := sessionout.NewFileDocumentStore(dir)

	doc, found, err := store.Load(context.Background(), "2024-01-02")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2024-01-02T10:11:12.345678", doc.Timestamp)
	require.Len(t, doc.Outcomes, 1)
	assert.Equal(t, float64(4), doc.Outcomes[0].Context["workers"])
}

func TestScanSkipsUnparsableRecords(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := sessionout.NewFileDocumentStore(dir)
	ctx := context.Background()
	for _, day := range []string{"2024-01-03", "2024-01-01"} {
		_, err := store.Save(ctx, day, domain.NewDocument(day, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-2024-01-02.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.json"), 0o755))

	scan, err := store.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, scan.Documents, 2)
	assert.Equal(t, "2024-01-01", scan.Documents[0].Date)
	assert.Equal(t, "2024-01-03", scan.Documents[1].Date)
	require.Len(t, scan.Failures, 1)
	assert.Equal(t, "session-2024-01-02.json", scan.Failures[0].Name)
	assert.True(t, errors.Is(scan.Failures[0].Err, apperrors.ErrParse))
}

func TestRecordsThatAreNotSessionDocumentsAreParseErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bodies := map[string]string{
		"2024-01-01": "null",
		"2024-01-02": "{}",
		"2024-01-03": `{"unrelated": 1}`,
		"2024-01-04": `{"date": "2024-01-04", "timestamp": ""}`,
	}
	dir := t.TempDir()
	for day, body := range bodies {
		require.NoError(t, os.WriteFile(filepath.Join(dir, domain.FileName(day)), []byte(body), 0o644))
	}
	store := sessionout.NewFileDocumentStore(dir)

	for day := range bodies {
		_, found, err := store.Load(ctx, day)
		assert.Falsef(t, found, "day %s", day)
		assert.Truef(t, errors.Is(err, apperrors.ErrParse), "day %s: got %v", day, err)
	}

	scan, err := store.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, scan.Documents)
	assert.Len(t, scan.Failures, len(bodies))
}

func TestScanMissingDirectoryIsEmpty(t *testing.T) {
	t.Parallel()
	store := sessionout.NewFileDocumentStore(filepath.Join(t.TempDir(), "absent"))
	scan, err := store.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scan.Documents)
	assert.Empty(t, scan.Failures)
}

func TestSaveFailsWhenSessionsPathIsAFile(t *testing.T) {
	t.Parallel()
	blocker := filepath.Join(t.TempDir(), "sessions")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	store := sessionout.NewFileDocumentStore(blocker)

	_, err := store.Save(context.Background(), "2024-01-01", domain.NewDocument("2024-01-01", time.Now()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorageUnavailable))
}
