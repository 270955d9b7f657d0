package in

import (
	"context"

	"agentcoach/internal/modules/session/dto"
)

type Usecase interface {
	LogDecision(ctx context.Context, input dto.DecisionInput) (dto.RecordOutput, error)
	LogOutcome(ctx context.Context, input dto.OutcomeInput) (dto.RecordOutput, error)
	LogNote(ctx context.Context, input dto.NoteInput) (dto.RecordOutput, error)
	LogPromptIteration(ctx context.Context, input dto.PromptIterationInput) (dto.RecordOutput, error)
	Summary(ctx context.Context, day string) (dto.SummaryOutput, error)
	Show(ctx context.Context, day string) (dto.DocumentOutput, error)
	ListDocuments(ctx context.Context) (dto.ScanOutput, error)
}
