package dto

import "time"

type ReflectInput struct {
	MaxAgeDays int
	MaxCount   int
	Save       bool
}

type SkippedSession struct {
	Name   string
	Reason string
}

type RunOutput struct {
	ID           string
	CreatedAt    time.Time
	SessionCount int
	SkippedCount int
	MaxAgeDays   int
	MaxCount     int
	Path         string
}

type ReflectOutput struct {
	Prompt       string
	SessionCount int
	Skipped      []SkippedSession
	// Checklist holds paths relative to the coach root.
	Checklist []string
	// Run is set only when the reflection was archived.
	Run *RunOutput
}

type RunDocumentOutput struct {
	Run    RunOutput
	Prompt string
}

type HistoryOutput struct {
	Runs []RunOutput
}

type ReindexOutput struct {
	Indexed int
}
