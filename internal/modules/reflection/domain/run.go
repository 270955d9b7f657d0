package domain

import (
	"fmt"
	"time"

	apperrors "agentcoach/internal/platform/errors"
)

const (
	SchemaVersion = 1

	EvolutionStart = "<!-- coach:reflections:start -->"
	EvolutionEnd   = "<!-- coach:reflections:end -->"

	// IDPrefixLen is the short-id length used in note names and accepted for lookups.
	IDPrefixLen = 8
)

// Run is one archived reflection.
type Run struct {
	ID           string
	CreatedAt    time.Time
	SessionCount int
	SkippedCount int
	MaxAgeDays   int
	MaxCount     int
	Path         string
}

type RunDocument struct {
	Run    Run
	Prompt string
}

func (r Run) Validate() error {
	if len(r.ID) < IDPrefixLen {
		return fmt.Errorf("%w: reflection id %q is too short", apperrors.ErrInvalidInput, r.ID)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("%w: reflection %s has no created_at", apperrors.ErrInvalidInput, r.ID)
	}
	return nil
}

func (r Run) ShortID() string {
	if len(r.ID) < IDPrefixLen {
		return r.ID
	}
	return r.ID[:IDPrefixLen]
}

// ArchiveName is the note file name: creation day then the short id.
func (r Run) ArchiveName() string {
	return r.CreatedAt.Format(time.DateOnly) + "-" + r.ShortID() + ".md"
}

// EvolutionLine is the one-line entry a run gets in the evolution log block.
func (r Run) EvolutionLine() string {
	return fmt.Sprintf("- %s `%s` %d sessions, %d skipped", r.CreatedAt.Format("2006-01-02 15:04"), r.ShortID(), r.SessionCount, r.SkippedCount)
}
