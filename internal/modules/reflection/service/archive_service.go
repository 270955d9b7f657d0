package service

import (
	"context"
	"time"

	"agentcoach/internal/modules/reflection/domain"
	reflectionout "agentcoach/internal/modules/reflection/port/out"
	"agentcoach/internal/platform/clock"
	"agentcoach/internal/platform/id"
)

const evolutionEntries = 10

// ArchiveService keeps rendered reflections as notes; the SQLite history is a projection
// of those notes and can always be rebuilt from them.
type ArchiveService struct {
	clock     clock.Clock
	idGen     id.Generator
	store     reflectionout.ArchiveStore
	projector reflectionout.HistoryProjector
	evolution reflectionout.EvolutionLog
}

func NewArchiveService(clock clock.Clock, idGen id.Generator, store reflectionout.ArchiveStore, projector reflectionout.HistoryProjector, evolution reflectionout.EvolutionLog) *ArchiveService {
	return &ArchiveService{clock: clock, idGen: idGen, store: store, projector: projector, evolution: evolution}
}

func (s *ArchiveService) Save(ctx context.Context, reflection Reflection) (domain.Run, error) {
	// Archive notes keep second precision.
	run := domain.Run{
		ID:           s.idGen.New(),
		CreatedAt:    s.clock.Now().Truncate(time.Second),
		SessionCount: len(reflection.Collection.Sessions),
		SkippedCount: len(reflection.Collection.Skipped),
		MaxAgeDays:   reflection.Window.MaxAgeDays,
		MaxCount:     reflection.Window.Limit(),
	}
	if err := run.Validate(); err != nil {
		return domain.Run{}, err
	}
	path, err := s.store.Save(ctx, domain.RunDocument{Run: run, Prompt: reflection.Prompt})
	if err != nil {
		return domain.Run{}, err
	}
	run.Path = path
	if err := s.projector.UpsertRun(ctx, run); err != nil {
		return domain.Run{}, err
	}
	recent, err := s.projector.ListRecent(ctx, evolutionEntries)
	if err != nil {
		return domain.Run{}, err
	}
	if err := s.evolution.Record(ctx, recent); err != nil {
		return domain.Run{}, err
	}
	return run, nil
}

func (s *ArchiveService) History(ctx context.Context, limit int) ([]domain.Run, error) {
	return s.projector.ListRecent(ctx, limit)
}

func (s *ArchiveService) Find(ctx context.Context, id string) (domain.RunDocument, error) {
	return s.store.FindByID(ctx, id)
}

// Reindex rebuilds the history projection from the archive notes and returns how many
// runs it indexed. Notes are read before the projection is cleared.
func (s *ArchiveService) Reindex(ctx context.Context) (int, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.projector.Reset(ctx); err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if err := s.projector.UpsertRun(ctx, doc.Run); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}
