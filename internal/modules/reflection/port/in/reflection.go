package in

import (
	"context"

	"agentcoach/internal/modules/reflection/dto"
)

type Usecase interface {
	Reflect(ctx context.Context, input dto.ReflectInput) (dto.ReflectOutput, error)
	History(ctx context.Context, limit int) (dto.HistoryOutput, error)
	ShowRun(ctx context.Context, id string) (dto.RunDocumentOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
}
