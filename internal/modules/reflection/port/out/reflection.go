package out

import (
	"context"

	"agentcoach/internal/modules/reflection/domain"
)

// SessionSource yields every logged session plus the records that could not be read.
type SessionSource interface {
	Scan(ctx context.Context) (domain.Collection, error)
}

type ContextStore interface {
	RootExists(ctx context.Context) (bool, error)
	Read(ctx context.Context) (domain.CoachDocs, error)
}

type ArchiveStore interface {
	Save(ctx context.Context, document domain.RunDocument) (string, error)
	FindByID(ctx context.Context, id string) (domain.RunDocument, error)
	List(ctx context.Context) ([]domain.RunDocument, error)
}

type HistoryProjector interface {
	Reset(ctx context.Context) error
	UpsertRun(ctx context.Context, run domain.Run) error
	ListRecent(ctx context.Context, limit int) ([]domain.Run, error)
}

type EvolutionLog interface {
	Record(ctx context.Context, recent []domain.Run) error
}
