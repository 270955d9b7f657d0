package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentcoach/internal/modules/session/domain"
	apperrors "agentcoach/internal/platform/errors"
)

func TestOutcomeResultValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, domain.OutcomeSuccess.Validate())
	assert.NoError(t, domain.OutcomeFailure.Validate())
	err := domain.OutcomeResult("partial").Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestNewDocumentHasEmptyLists(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	doc := domain.NewDocument("2024-01-01", now)

	assert.Equal(t, "2024-01-01", doc.Date)
	assert.Equal(t, "2024-01-01T09:30:00.000000Z", doc.Timestamp)
	assert.NotNil(t, doc.Decisions)
	assert.Empty(t, doc.Decisions)
	assert.Empty(t, doc.Outcomes)
	assert.Empty(t, doc.Notes)
	assert.Nil(t, doc.PromptIterations)
}

func TestSummaryCountsByResult(t *testing.T) {
	t.Parallel()
	doc := domain.Document{
		Decisions: []domain.Decision{{}, {}},
		Outcomes: []domain.Outcome{
			{Result: domain.OutcomeSuccess},
			{Result: domain.OutcomeFailure},
			{Result: domain.OutcomeSuccess},
			{Result: "unknown"},
		},
		Notes:            []domain.Note{{}},
		PromptIterations: []domain.PromptIteration{{}, {}, {}},
	}
	assert.Equal(t, domain.Summary{Decisions: 2, Successes: 2, Failures: 1, Notes: 1, PromptIterations: 3}, doc.Summary())
	assert.Equal(t, domain.Summary{}, domain.Document{}.Summary())
}

func TestNormalizeFillsMissingLists(t *testing.T) {
	t.Parallel()
	doc := domain.Document{Outcomes: []domain.Outcome{{Result: domain.OutcomeSuccess}}}
	doc.Normalize("2024-02-02")

	assert.Equal(t, "2024-02-02", doc.Date)
	assert.NotNil(t, doc.Decisions)
	assert.NotNil(t, doc.Notes)
	assert.NotNil(t, doc.Outcomes[0].Context)
	assert.Nil(t, doc.PromptIterations)
}

func TestRecordConstructorsRejectBlankFields(t *testing.T) {
	t.Parallel()
	now := time.Now()
	cases := map[string]error{}
	_, cases["decision category"] = domain.NewDecision(now, " ", "x", "")
	_, cases["decision text"] = domain.NewDecision(now, "architecture", "", "")
	_, cases["outcome result"] = domain.NewOutcome(now, "maybe", "x", nil)
	_, cases["outcome description"] = domain.NewOutcome(now, domain.OutcomeSuccess, "", nil)
	_, cases["note"] = domain.NewNote(now, "")
	_, cases["iteration improvement"] = domain.NewPromptIteration(now, "a", "b", "")
	for name, err := range cases {
		assert.Truef(t, errors.Is(err, apperrors.ErrInvalidInput), "%s: expected invalid input, got %v", name, err)
	}

	outcome, err := domain.NewOutcome(now, domain.OutcomeFailure, "stuck", nil)
	require.NoError(t, err)
	assert.NotNil(t, outcome.Context)

	decision, err := domain.NewDecision(now, "tooling", "Use make", "")
	require.NoError(t, err)
	assert.Empty(t, decision.Reasoning)
}

func TestParseDayAndFileName(t *testing.T) {
	t.Parallel()
	_, err := domain.ParseDay("2024-01-01")
	assert.NoError(t, err)
	for _, bad := range []string{"", "2024-13-01", "../etc", "2024/01/01"} {
		_, err := domain.ParseDay(bad)
		assert.Truef(t, errors.Is(err, apperrors.ErrInvalidInput), "day %q should be rejected", bad)
	}
	assert.Equal(t, "session-2024-01-01.json", domain.FileName("2024-01-01"))
	assert.Equal(t, "2024-01-01", domain.DayFromFileName("session-2024-01-01.json"))
	assert.Empty(t, domain.DayFromFileName("notes.json"))
	assert.Empty(t, domain.DayFromFileName("session-latest.json"))
	assert.Equal(t, "2024-01-01", domain.DayOf(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)))
}
