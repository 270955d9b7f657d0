package usecase

import (
	"context"

	"go.uber.org/zap"

	"agentcoach/internal/modules/reflection/domain"
	reflectiondto "agentcoach/internal/modules/reflection/dto"
	reflectionin "agentcoach/internal/modules/reflection/port/in"
	"agentcoach/internal/modules/reflection/service"
	"agentcoach/internal/platform/logging"
)

const defaultHistoryLimit = 20

type Interactor struct {
	reflections *service.ReflectionService
	archive     *service.ArchiveService
	logger      *zap.Logger
}

func NewInteractor(reflections *service.ReflectionService, archive *service.ArchiveService, logger *zap.Logger) reflectionin.Usecase {
	return &Interactor{reflections: reflections, archive: archive, logger: logging.OrNop(logger).Named("reflection")}
}

func (i *Interactor) Reflect(ctx context.Context, input reflectiondto.ReflectInput) (reflectiondto.ReflectOutput, error) {
	window := domain.Window{MaxAgeDays: input.MaxAgeDays, MaxCount: input.MaxCount}
	reflection, err := i.reflections.Prepare(ctx, window)
	if err != nil {
		return reflectiondto.ReflectOutput{}, err
	}

	out := reflectiondto.ReflectOutput{
		Prompt:       reflection.Prompt,
		SessionCount: len(reflection.Collection.Sessions),
		Checklist:    append([]string(nil), domain.UpdateChecklist...),
	}
	for _, skip := range reflection.Collection.Skipped {
		i.logger.Warn("session skipped", zap.String("name", skip.Name), zap.String("reason", skip.Reason))
		out.Skipped = append(out.Skipped, reflectiondto.SkippedSession{Name: skip.Name, Reason: skip.Reason})
	}

	if input.Save {
		run, err := i.archive.Save(ctx, reflection)
		if err != nil {
			i.logger.Error("archive reflection failed", zap.Error(err))
			return reflectiondto.ReflectOutput{}, err
		}
		runOut := toRunOutput(run)
		out.Run = &runOut
	}

	i.logger.Info("reflection rendered",
		zap.Int("sessions", out.SessionCount),
		zap.Int("skipped", len(out.Skipped)),
		zap.Int("max_age_days", window.MaxAgeDays),
		zap.Int("max_count", window.Limit()),
		zap.Bool("saved", input.Save),
	)
	return out, nil
}

func (i *Interactor) History(ctx context.Context, limit int) (reflectiondto.HistoryOutput, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := i.archive.History(ctx, limit)
	if err != nil {
		return reflectiondto.HistoryOutput{}, err
	}
	out := reflectiondto.HistoryOutput{Runs: make([]reflectiondto.RunOutput, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, toRunOutput(run))
	}
	return out, nil
}

func (i *Interactor) ShowRun(ctx context.Context, id string) (reflectiondto.RunDocumentOutput, error) {
	doc, err := i.archive.Find(ctx, id)
	if err != nil {
		return reflectiondto.RunDocumentOutput{}, err
	}
	return reflectiondto.RunDocumentOutput{Run: toRunOutput(doc.Run), Prompt: doc.Prompt}, nil
}

func (i *Interactor) Reindex(ctx context.Context) (reflectiondto.ReindexOutput, error) {
	n, err := i.archive.Reindex(ctx)
	if err != nil {
		i.logger.Error("reindex failed", zap.Error(err))
		return reflectiondto.ReindexOutput{}, err
	}
	i.logger.Info("reflection history reindexed", zap.Int("runs", n))
	return reflectiondto.ReindexOutput{Indexed: n}, nil
}

func toRunOutput(run domain.Run) reflectiondto.RunOutput {
	return reflectiondto.RunOutput{
		ID:           run.ID,
		CreatedAt:    run.CreatedAt,
		SessionCount: run.SessionCount,
		SkippedCount: run.SkippedCount,
		MaxAgeDays:   run.MaxAgeDays,
		MaxCount:     run.MaxCount,
		Path:         run.Path,
	}
}
