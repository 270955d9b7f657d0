package dto

import "agentcoach/internal/modules/session/domain"

// Outcome results accepted by OutcomeInput.
const (
	ResultSuccess = string(domain.OutcomeSuccess)
	ResultFailure = string(domain.OutcomeFailure)
)

type DecisionInput struct {
	Category  string
	Decision  string
	Reasoning string
}

type OutcomeInput struct {
	Result      string
	Description string
	Context     map[string]any
}

type NoteInput struct {
	Note string
}

type PromptIterationInput struct {
	Original    string
	Revised     string
	Improvement string
}

// RecordOutput describes the record that was just appended.
type RecordOutput struct {
	Day       string
	Kind      string
	Timestamp string
	Label     string
	Result    string
	Summary   domain.Summary
}

type SummaryOutput struct {
	Day     string
	Summary domain.Summary
}

type DocumentOutput struct {
	Day      string
	Document domain.Document
	Summary  domain.Summary
}

type SkippedRecord struct {
	Name   string
	Reason string
}

type ScanOutput struct {
	Documents []domain.Document
	Skipped   []SkippedRecord
}
