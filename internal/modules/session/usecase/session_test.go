package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	sessionout "agentcoach/internal/modules/session/adapter/out"
	sessiondto "agentcoach/internal/modules/session/dto"
	sessionin "agentcoach/internal/modules/session/port/in"
	"agentcoach/internal/modules/session/service"
	"agentcoach/internal/modules/session/usecase"
	apperrors "agentcoach/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newInteractor(t *testing.T) (sessionin.Usecase, *observer.ObservedLogs, string) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	dir := filepath.Join(t.TempDir(), "sessions")
	svc := service.NewSessionService(fixedClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}, sessionout.NewFileDocumentStore(dir))
	return usecase.NewInteractor(svc, zap.New(core)), logs, dir
}

func TestLogRecordsReportRunningSummary(t *testing.T) {
	t.Parallel()
	uc, logs, _ := newInteractor(t)
	ctx := context.Background()

	out, err := uc.LogDecision(ctx, sessiondto.DecisionInput{Category: "architecture", Decision: "Use worker pool", Reasoning: "bound concurrency"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", out.Day)
	assert.Equal(t, usecase.KindDecision, out.Kind)
	assert.Equal(t, "[architecture] Use worker pool", out.Label)

	out, err = uc.LogOutcome(ctx, sessiondto.OutcomeInput{Result: "success", Description: "Pool handled load", Context: map[string]any{"workers": 4}})
	require.NoError(t, err)
	assert.Equal(t, "success", out.Result)
	assert.Equal(t, 1, out.Summary.Decisions)
	assert.Equal(t, 1, out.Summary.Successes)

	out, err = uc.LogNote(ctx, sessiondto.NoteInput{Note: "numbered steps work"})
	require.NoError(t, err)
	assert.Equal(t, usecase.KindNote, out.Kind)

	out, err = uc.LogPromptIteration(ctx, sessiondto.PromptIterationInput{Original: "a", Revised: "b", Improvement: "clearer"})
	require.NoError(t, err)
	assert.Equal(t, usecase.KindPromptIteration, out.Kind)
	assert.Equal(t, 1, out.Summary.PromptIterations)

	assert.Equal(t, 4, logs.FilterLevelExact(zapcore.InfoLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("outcome logged").Len())
}

func TestSummaryAndShowDefaultToToday(t *testing.T) {
	t.Parallel()
	uc, _, _ := newInteractor(t)
	ctx := context.Background()
	_, err := uc.LogNote(ctx, sessiondto.NoteInput{Note: "A"})
	require.NoError(t, err)

	summary, err := uc.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", summary.Day)
	assert.Equal(t, 1, summary.Summary.Notes)

	shown, err := uc.Show(ctx, "2023-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", shown.Document.Date)
	assert.Empty(t, shown.Document.Notes)
}

func TestInvalidInputIsNotLoggedAsError(t *testing.T) {
	t.Parallel()
	uc, logs, _ := newInteractor(t)

	_, err := uc.LogOutcome(context.Background(), sessiondto.OutcomeInput{Result: "partial", Description: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestCorruptDayIsLoggedAndListedAsSkipped(t *testing.T) {
	t.Parallel()
	uc, logs, dir := newInteractor(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-2024-01-01.json"), []byte("not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-2023-12-31.json"), []byte(`{"date":"2023-12-31","timestamp":"2023-12-31T08:00:00.000000Z","decisions":[],"outcomes":[],"notes":[]}`), 0o644))

	_, err := uc.LogNote(ctx, sessiondto.NoteInput{Note: "lost"})
	assert.True(t, errors.Is(err, apperrors.ErrParse))
	assert.Equal(t, 1, logs.FilterMessage("append failed").Len())

	listed, err := uc.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, listed.Documents, 1)
	assert.Equal(t, "2023-12-31", listed.Documents[0].Date)
	require.Len(t, listed.Skipped, 1)
	assert.Equal(t, "session-2024-01-01.json", listed.Skipped[0].Name)
	assert.NotEmpty(t, listed.Skipped[0].Reason)
}
