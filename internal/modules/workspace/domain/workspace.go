package domain

import "time"

type EntryStatus string

const (
	StatusCreated EntryStatus = "created"
	StatusExists  EntryStatus = "exists"
)

type EntryKind string

const (
	KindDir  EntryKind = "dir"
	KindFile EntryKind = "file"
)

// Entry reports what Initialize did for one path. Path is relative to the coach root,
// with "." naming the root itself.
type Entry struct {
	Path   string
	Kind   EntryKind
	Status EntryStatus
}

// StarterDoc pairs a document path with the template that seeds it.
type StarterDoc struct {
	Path     string
	Template string
}

// TemplateData is what starter templates may reference.
type TemplateData struct {
	Date string
}

var Dirs = []string{".", "sessions", "patterns", "reflections"}

var StarterDocs = []StarterDoc{
	{Path: "profile.md", Template: "profile.md.tmpl"},
	{Path: "patterns/effective.md", Template: "effective.md.tmpl"},
	{Path: "patterns/anti-patterns.md", Template: "anti-patterns.md.tmpl"},
	{Path: "patterns/prompting.md", Template: "prompting.md.tmpl"},
	{Path: "curriculum.md", Template: "curriculum.md.tmpl"},
	{Path: "evolution.md", Template: "evolution.md.tmpl"},
}

func NewTemplateData(now time.Time) TemplateData {
	return TemplateData{Date: now.Format(time.DateOnly)}
}

func StatusOf(created bool) EntryStatus {
	if created {
		return StatusCreated
	}
	return StatusExists
}
