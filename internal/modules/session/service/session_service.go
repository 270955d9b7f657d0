package service

import (
	"context"
	"fmt"
	"time"

	"agentcoach/internal/modules/session/domain"
	sessionout "agentcoach/internal/modules/session/port/out"
	"agentcoach/internal/platform/clock"
	apperrors "agentcoach/internal/platform/errors"
)

// SessionService is the per-day append log. Every call re-reads the backing record,
// so independent short-lived processes see each other's writes; concurrent writers
// to the same day are last-writer-wins.
type SessionService struct {
	clock clock.Clock
	store sessionout.DocumentStore
}

func NewSessionService(clock clock.Clock, store sessionout.DocumentStore) *SessionService {
	return &SessionService{clock: clock, store: store}
}

func (s *SessionService) Today() string {
	return domain.DayOf(s.clock.Now())
}

// LoadSession returns the document for day, or an unsaved default when none exists.
func (s *SessionService) LoadSession(ctx context.Context, day string) (domain.Document, error) {
	return s.load(ctx, day, s.clock.Now)
}

func (s *SessionService) SaveSession(ctx context.Context, day string, doc domain.Document) error {
	if _, err := domain.ParseDay(day); err != nil {
		return err
	}
	if doc.Date != "" && doc.Date != day {
		return fmt.Errorf("%w: document dated %s cannot be saved as %s", apperrors.ErrInvalidInput, doc.Date, day)
	}
	if _, err := s.store.Save(ctx, day, doc); err != nil {
		return err
	}
	return nil
}

func (s *SessionService) AppendDecision(ctx context.Context, category, decision, reasoning string) (domain.Decision, domain.Document, error) {
	var rec domain.Decision
	doc, err := s.appendToday(ctx, func(doc *domain.Document, now time.Time) error {
		var err error
		if rec, err = domain.NewDecision(now, category, decision, reasoning); err != nil {
			return err
		}
		doc.Decisions = append(doc.Decisions, rec)
		return nil
	})
	return rec, doc, err
}

func (s *SessionService) AppendOutcome(ctx context.Context, result domain.OutcomeResult, description string, outcomeContext map[string]any) (domain.Outcome, domain.Document, error) {
	var rec domain.Outcome
	doc, err := s.appendToday(ctx, func(doc *domain.Document, now time.Time) error {
		var err error
		if rec, err = domain.NewOutcome(now, result, description, outcomeContext); err != nil {
			return err
		}
		doc.Outcomes = append(doc.Outcomes, rec)
		return nil
	})
	return rec, doc, err
}

func (s *SessionService) AppendNote(ctx context.Context, note string) (domain.Note, domain.Document, error) {
	var rec domain.Note
	doc, err := s.appendToday(ctx, func(doc *domain.Document, now time.Time) error {
		var err error
		if rec, err = domain.NewNote(now, note); err != nil {
			return err
		}
		doc.Notes = append(doc.Notes, rec)
		return nil
	})
	return rec, doc, err
}

func (s *SessionService) AppendPromptIteration(ctx context.Context, original, revised, improvement string) (domain.PromptIteration, domain.Document, error) {
	var rec domain.PromptIteration
	doc, err := s.appendToday(ctx, func(doc *domain.Document, now time.Time) error {
		var err error
		if rec, err = domain.NewPromptIteration(now, original, revised, improvement); err != nil {
			return err
		}
		doc.PromptIterations = append(doc.PromptIterations, rec)
		return nil
	})
	return rec, doc, err
}

func (s *SessionService) Summarize(ctx context.Context, day string) (domain.Summary, error) {
	doc, err := s.LoadSession(ctx, day)
	if err != nil {
		return domain.Summary{}, err
	}
	return doc.Summary(), nil
}

func (s *SessionService) ListDocuments(ctx context.Context) (domain.Scan, error) {
	return s.store.Scan(ctx)
}

// appendToday runs one read-modify-write unit against today's document. The clock is
// read once so a freshly created document and its first record share a timestamp.
func (s *SessionService) appendToday(ctx context.Context, mutate func(*domain.Document, time.Time) error) (domain.Document, error) {
	now := s.clock.Now()
	day := domain.DayOf(now)
	doc, err := s.load(ctx, day, func() time.Time { return now })
	if err != nil {
		return domain.Document{}, err
	}
	if err := mutate(&doc, now); err != nil {
		return domain.Document{}, err
	}
	if err := s.SaveSession(ctx, day, doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (s *SessionService) load(ctx context.Context, day string, now func() time.Time) (domain.Document, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return domain.Document{}, err
	}
	doc, found, err := s.store.Load(ctx, day)
	if err != nil {
		return domain.Document{}, err
	}
	if !found {
		return domain.NewDocument(day, now()), nil
	}
	return doc, nil
}
