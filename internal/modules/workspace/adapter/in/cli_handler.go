package in

import (
	"context"

	workspacedto "agentcoach/internal/modules/workspace/dto"
	workspacein "agentcoach/internal/modules/workspace/port/in"
)

type CLIHandler struct {
	usecase workspacein.Usecase
}

func NewCLIHandler(usecase workspacein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Init(ctx context.Context) (workspacedto.InitOutput, error) {
	return h.usecase.Initialize(ctx)
}
