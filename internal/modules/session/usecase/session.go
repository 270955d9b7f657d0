package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"agentcoach/internal/modules/session/domain"
	sessiondto "agentcoach/internal/modules/session/dto"
	sessionin "agentcoach/internal/modules/session/port/in"
	"agentcoach/internal/modules/session/service"
	apperrors "agentcoach/internal/platform/errors"
	"agentcoach/internal/platform/logging"
)

const (
	KindDecision        = "decision"
	KindOutcome         = "outcome"
	KindNote            = "note"
	KindPromptIteration = "prompt_iteration"
)

type Interactor struct {
	svc    *service.SessionService
	logger *zap.Logger
}

func NewInteractor(svc *service.SessionService, logger *zap.Logger) sessionin.Usecase {
	return &Interactor{svc: svc, logger: logging.OrNop(logger).Named("session")}
}

func (i *Interactor) LogDecision(ctx context.Context, input sessiondto.DecisionInput) (sessiondto.RecordOutput, error) {
	rec, doc, err := i.svc.AppendDecision(ctx, input.Category, input.Decision, input.Reasoning)
	if err != nil {
		return sessiondto.RecordOutput{}, i.fail(KindDecision, err)
	}
	i.logger.Info("decision logged", zap.String("day", doc.Date), zap.String("category", rec.Category))
	return sessiondto.RecordOutput{
		Day:       doc.Date,
		Kind:      KindDecision,
		Timestamp: rec.Timestamp,
		Label:     "[" + rec.Category + "] " + rec.Decision,
		Summary:   doc.Summary(),
	}, nil
}

func (i *Interactor) LogOutcome(ctx context.Context, input sessiondto.OutcomeInput) (sessiondto.RecordOutput, error) {
	rec, doc, err := i.svc.AppendOutcome(ctx, domain.OutcomeResult(input.Result), input.Description, input.Context)
	if err != nil {
		return sessiondto.RecordOutput{}, i.fail(KindOutcome, err)
	}
	i.logger.Info("outcome logged", zap.String("day", doc.Date), zap.String("result", string(rec.Result)), zap.Int("context_keys", len(rec.Context)))
	return sessiondto.RecordOutput{
		Day:       doc.Date,
		Kind:      KindOutcome,
		Timestamp: rec.Timestamp,
		Label:     rec.Description,
		Result:    string(rec.Result),
		Summary:   doc.Summary(),
	}, nil
}

func (i *Interactor) LogNote(ctx context.Context, input sessiondto.NoteInput) (sessiondto.RecordOutput, error) {
	rec, doc, err := i.svc.AppendNote(ctx, input.Note)
	if err != nil {
		return sessiondto.RecordOutput{}, i.fail(KindNote, err)
	}
	i.logger.Info("note logged", zap.String("day", doc.Date))
	return sessiondto.RecordOutput{Day: doc.Date, Kind: KindNote, Timestamp: rec.Timestamp, Label: rec.Note, Summary: doc.Summary()}, nil
}

func (i *Interactor) LogPromptIteration(ctx context.Context, input sessiondto.PromptIterationInput) (sessiondto.RecordOutput, error) {
	rec, doc, err := i.svc.AppendPromptIteration(ctx, input.Original, input.Revised, input.Improvement)
	if err != nil {
		return sessiondto.RecordOutput{}, i.fail(KindPromptIteration, err)
	}
	i.logger.Info("prompt iteration logged", zap.String("day", doc.Date))
	return sessiondto.RecordOutput{Day: doc.Date, Kind: KindPromptIteration, Timestamp: rec.Timestamp, Label: rec.Improvement, Summary: doc.Summary()}, nil
}

func (i *Interactor) Summary(ctx context.Context, day string) (sessiondto.SummaryOutput, error) {
	day = i.dayOrToday(day)
	summary, err := i.svc.Summarize(ctx, day)
	if err != nil {
		return sessiondto.SummaryOutput{}, err
	}
	return sessiondto.SummaryOutput{Day: day, Summary: summary}, nil
}

func (i *Interactor) Show(ctx context.Context, day string) (sessiondto.DocumentOutput, error) {
	day = i.dayOrToday(day)
	doc, err := i.svc.LoadSession(ctx, day)
	if err != nil {
		return sessiondto.DocumentOutput{}, err
	}
	return sessiondto.DocumentOutput{Day: day, Document: doc, Summary: doc.Summary()}, nil
}

func (i *Interactor) ListDocuments(ctx context.Context) (sessiondto.ScanOutput, error) {
	scan, err := i.svc.ListDocuments(ctx)
	if err != nil {
		return sessiondto.ScanOutput{}, err
	}
	out := sessiondto.ScanOutput{Documents: scan.Documents}
	for _, f := range scan.Failures {
		out.Skipped = append(out.Skipped, sessiondto.SkippedRecord{Name: f.Name, Reason: f.Err.Error()})
	}
	return out, nil
}

func (i *Interactor) dayOrToday(day string) string {
	if day == "" {
		return i.svc.Today()
	}
	return day
}

// fail logs storage and parse failures; rejected input is the caller's to report.
func (i *Interactor) fail(kind string, err error) error {
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		i.logger.Error("append failed", zap.String("kind", kind), zap.Error(err))
	}
	return err
}
