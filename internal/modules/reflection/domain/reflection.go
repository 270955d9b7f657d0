package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	sessiondomain "agentcoach/internal/modules/session/domain"
)

const (
	DefaultMaxCount = 20

	noPatternsPlaceholder = "None documented yet"
	noSessionsPlaceholder = "No sessions logged yet"
)

// UpdateChecklist lists, relative to the coach root, the documents to revise by hand
// once the analysis comes back.
var UpdateChecklist = []string{
	"patterns/effective.md",
	"patterns/anti-patterns.md",
	"curriculum.md",
	"evolution.md",
}

// Window bounds which sessions take part in a reflection. MaxAgeDays <= 0 disables the
// age cutoff; MaxCount <= 0 means DefaultMaxCount.
type Window struct {
	MaxAgeDays int
	MaxCount   int
}

func (w Window) Limit() int {
	if w.MaxCount <= 0 {
		return DefaultMaxCount
	}
	return w.MaxCount
}

// Skip records a session that was left out because it could not be used.
type Skip struct {
	Name   string
	Reason string
}

type Collection struct {
	Sessions []sessiondomain.Document
	Skipped  []Skip
}

// CoachDocs carries the hand-maintained documents embedded into the prompt.
// Absent documents are empty strings.
type CoachDocs struct {
	Profile      string
	Effective    string
	AntiPatterns string
}

// Select applies w to a full scan: drops sessions older than the cutoff, orders the rest
// newest first by timestamp and keeps at most w.Limit(). Ties keep scan order.
func Select(all Collection, w Window, now time.Time) Collection {
	out := Collection{
		Sessions: make([]sessiondomain.Document, 0, len(all.Sessions)),
		Skipped:  append([]Skip(nil), all.Skipped...),
	}

	var cutoff time.Time
	if w.MaxAgeDays > 0 {
		today, _ := sessiondomain.ParseDay(sessiondomain.DayOf(now))
		cutoff = today.AddDate(0, 0, -w.MaxAgeDays)
	}
	for _, doc := range all.Sessions {
		if w.MaxAgeDays > 0 {
			day, err := sessiondomain.ParseDay(doc.Date)
			if err != nil {
				out.Skipped = append(out.Skipped, Skip{Name: undatedName(doc), Reason: err.Error()})
				continue
			}
			if day.Before(cutoff) {
				continue
			}
		}
		out.Sessions = append(out.Sessions, doc)
	}

	sort.SliceStable(out.Sessions, func(i, j int) bool {
		return out.Sessions[i].Timestamp > out.Sessions[j].Timestamp
	})
	if limit := w.Limit(); len(out.Sessions) > limit {
		out.Sessions = out.Sessions[:limit]
	}
	return out
}

func undatedName(doc sessiondomain.Document) string {
	if doc.Date == "" {
		return "session without date (timestamp " + doc.Timestamp + ")"
	}
	return "session dated " + doc.Date
}

var promptTemplate = template.Must(template.New("reflection").Parse(`You are a coding coach analyzing a developer's recent sessions.

## Developer Profile
{{.Profile}}

## Current Effective Patterns
{{.Effective}}

## Current Anti-Patterns
{{.AntiPatterns}}

## Recent Sessions
{{.Sessions}}

---

ANALYZE recent sessions for patterns:
1. What prompting approaches worked/didn't work?
2. What architecture decisions were made?
3. What errors kept recurring?

UPDATE the pattern files with new observations:
- Add effective patterns discovered
- Add anti-patterns to avoid
- Note any debugging insights

UPDATE the curriculum:
- What should they focus on improving?
- Suggest 1-2 specific exercises

UPDATE evolution.md:
- Note any progress or milestones

PROVIDE a brief summary:
- Key insight from this reflection
- One specific thing to try next session
`))

// RenderPrompt builds the analysis prompt. The output depends only on its arguments.
func RenderPrompt(sessions []sessiondomain.Document, docs CoachDocs) (string, error) {
	rendered := noSessionsPlaceholder
	if len(sessions) > 0 {
		buf := bytes.Buffer{}
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sessions); err != nil {
			return "", fmt.Errorf("encode sessions: %w", err)
		}
		rendered = strings.TrimSuffix(buf.String(), "\n")
	}

	out := strings.Builder{}
	err := promptTemplate.Execute(&out, struct {
		Profile      string
		Effective    string
		AntiPatterns string
		Sessions     string
	}{
		Profile:      docs.Profile,
		Effective:    orPlaceholder(docs.Effective),
		AntiPatterns: orPlaceholder(docs.AntiPatterns),
		Sessions:     rendered,
	})
	if err != nil {
		return "", fmt.Errorf("render reflection prompt: %w", err)
	}
	return out.String(), nil
}

func orPlaceholder(doc string) string {
	if strings.TrimSpace(doc) == "" {
		return noPatternsPlaceholder
	}
	return doc
}
