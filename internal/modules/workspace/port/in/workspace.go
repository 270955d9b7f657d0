package in

import (
	"context"

	"agentcoach/internal/modules/workspace/dto"
)

type Usecase interface {
	Initialize(ctx context.Context) (dto.InitOutput, error)
}
