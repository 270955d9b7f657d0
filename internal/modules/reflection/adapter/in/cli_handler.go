package in

import (
	"context"

	reflectiondto "agentcoach/internal/modules/reflection/dto"
	reflectionin "agentcoach/internal/modules/reflection/port/in"
)

type CLIHandler struct {
	usecase reflectionin.Usecase
}

func NewCLIHandler(usecase reflectionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Reflect(ctx context.Context, maxAgeDays, maxCount int, save bool) (reflectiondto.ReflectOutput, error) {
	return h.usecase.Reflect(ctx, reflectiondto.ReflectInput{MaxAgeDays: maxAgeDays, MaxCount: maxCount, Save: save})
}

func (h CLIHandler) History(ctx context.Context, limit int) (reflectiondto.HistoryOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) Show(ctx context.Context, id string) (reflectiondto.RunDocumentOutput, error) {
	return h.usecase.ShowRun(ctx, id)
}

func (h CLIHandler) Reindex(ctx context.Context) (reflectiondto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}
