package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "agentcoach/internal/platform/errors"
)

const (
	DayLayout = "2006-01-02"
	// Fixed-width fractional seconds keep timestamps ordered when compared as strings.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

	filePrefix = "session-"
	fileExt    = ".json"
)

type OutcomeResult string

const (
	OutcomeSuccess OutcomeResult = "success"
	OutcomeFailure OutcomeResult = "failure"
)

func (r OutcomeResult) Validate() error {
	switch r {
	case OutcomeSuccess, OutcomeFailure:
		return nil
	default:
		return fmt.Errorf("%w: outcome result must be %q or %q, got %q", apperrors.ErrInvalidInput, OutcomeSuccess, OutcomeFailure, string(r))
	}
}

type Decision struct {
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Decision  string `json:"decision"`
	Reasoning string `json:"reasoning"`
}

type Outcome struct {
	Timestamp   string         `json:"timestamp"`
	Result      OutcomeResult  `json:"result"`
	Description string         `json:"description"`
	Context     map[string]any `json:"context"`
}

type Note struct {
	Timestamp string `json:"timestamp"`
	Note      string `json:"note"`
}

type PromptIteration struct {
	Timestamp   string `json:"timestamp"`
	Original    string `json:"original"`
	Revised     string `json:"revised"`
	Improvement string `json:"improvement"`
}

// Document is everything logged on one calendar day. PromptIterations stays nil, and
// therefore absent from the file, until the first iteration is appended.
type Document struct {
	Date             string            `json:"date"`
	Timestamp        string            `json:"timestamp"`
	Decisions        []Decision        `json:"decisions"`
	Outcomes         []Outcome         `json:"outcomes"`
	Notes            []Note            `json:"notes"`
	PromptIterations []PromptIteration `json:"prompt_iterations,omitempty"`
}

type Summary struct {
	Decisions        int `json:"decisions"`
	Successes        int `json:"successes"`
	Failures         int `json:"failures"`
	Notes            int `json:"notes"`
	PromptIterations int `json:"prompt_iterations"`
}

// ScanFailure names a backing record that could not be read as a Document.
type ScanFailure struct {
	Name string
	Err  error
}

// Scan is the result of reading every backing record: decoded documents in
// enumeration order plus the records that were skipped.
type Scan struct {
	Documents []Document
	Failures  []ScanFailure
}

func NewDocument(day string, now time.Time) Document {
	return Document{
		Date:      day,
		Timestamp: FormatTimestamp(now),
		Decisions: []Decision{},
		Outcomes:  []Outcome{},
		Notes:     []Note{},
	}
}

// Normalize fills lists a hand-edited or older file may omit so appends never hit nil maps
// and saved files always carry the three core lists.
func (d *Document) Normalize(day string) {
	if d.Date == "" {
		d.Date = day
	}
	if d.Decisions == nil {
		d.Decisions = []Decision{}
	}
	if d.Outcomes == nil {
		d.Outcomes = []Outcome{}
	}
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	for i := range d.Outcomes {
		if d.Outcomes[i].Context == nil {
			d.Outcomes[i].Context = map[string]any{}
		}
	}
}

func (d Document) Summary() Summary {
	s := Summary{
		Decisions:        len(d.Decisions),
		Notes:            len(d.Notes),
		PromptIterations: len(d.PromptIterations),
	}
	for _, o := range d.Outcomes {
		switch o.Result {
		case OutcomeSuccess:
			s.Successes++
		case OutcomeFailure:
			s.Failures++
		}
	}
	return s
}

func NewDecision(now time.Time, category, decision, reasoning string) (Decision, error) {
	if err := required("category", category); err != nil {
		return Decision{}, err
	}
	if err := required("decision", decision); err != nil {
		return Decision{}, err
	}
	return Decision{Timestamp: FormatTimestamp(now), Category: category, Decision: decision, Reasoning: reasoning}, nil
}

func NewOutcome(now time.Time, result OutcomeResult, description string, context map[string]any) (Outcome, error) {
	if err := result.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := required("description", description); err != nil {
		return Outcome{}, err
	}
	if context == nil {
		context = map[string]any{}
	}
	return Outcome{Timestamp: FormatTimestamp(now), Result: result, Description: description, Context: context}, nil
}

func NewNote(now time.Time, note string) (Note, error) {
	if err := required("note", note); err != nil {
		return Note{}, err
	}
	return Note{Timestamp: FormatTimestamp(now), Note: note}, nil
}

func NewPromptIteration(now time.Time, original, revised, improvement string) (PromptIteration, error) {
	if err := required("improvement", improvement); err != nil {
		return PromptIteration{}, err
	}
	return PromptIteration{Timestamp: FormatTimestamp(now), Original: original, Revised: revised, Improvement: improvement}, nil
}

// ParseDay accepts only real calendar dates, which also keeps day keys path-safe.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day must be YYYY-MM-DD, got %q", apperrors.ErrInvalidInput, day)
	}
	return t, nil
}

func DayOf(t time.Time) string { return t.Format(DayLayout) }

func FormatTimestamp(t time.Time) string { return t.Format(TimestampLayout) }

func FileName(day string) string { return filePrefix + day + fileExt }

// DayFromFileName recovers the day key from a record name, or "" when name is not one.
func DayFromFileName(name string) string {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return ""
	}
	day := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	if _, err := ParseDay(day); err != nil {
		return ""
	}
	return day
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", apperrors.ErrInvalidInput, field)
	}
	return nil
}
