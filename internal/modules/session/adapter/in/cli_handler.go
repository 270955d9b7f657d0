package in

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	sessiondto "agentcoach/internal/modules/session/dto"
	sessionin "agentcoach/internal/modules/session/port/in"
	apperrors "agentcoach/internal/platform/errors"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) LogDecision(ctx context.Context, category, decision, reasoning string) (sessiondto.RecordOutput, error) {
	return h.usecase.LogDecision(ctx, sessiondto.DecisionInput{Category: category, Decision: decision, Reasoning: reasoning})
}

func (h CLIHandler) LogOutcome(ctx context.Context, result, description string, outcomeContext map[string]any) (sessiondto.RecordOutput, error) {
	return h.usecase.LogOutcome(ctx, sessiondto.OutcomeInput{Result: result, Description: description, Context: outcomeContext})
}

func (h CLIHandler) LogSuccess(ctx context.Context, description string, outcomeContext map[string]any) (sessiondto.RecordOutput, error) {
	return h.LogOutcome(ctx, sessiondto.ResultSuccess, description, outcomeContext)
}

func (h CLIHandler) LogFailure(ctx context.Context, description string, outcomeContext map[string]any) (sessiondto.RecordOutput, error) {
	return h.LogOutcome(ctx, sessiondto.ResultFailure, description, outcomeContext)
}

func (h CLIHandler) LogNote(ctx context.Context, note string) (sessiondto.RecordOutput, error) {
	return h.usecase.LogNote(ctx, sessiondto.NoteInput{Note: note})
}

func (h CLIHandler) LogPromptIteration(ctx context.Context, original, revised, improvement string) (sessiondto.RecordOutput, error) {
	return h.usecase.LogPromptIteration(ctx, sessiondto.PromptIterationInput{Original: original, Revised: revised, Improvement: improvement})
}

func (h CLIHandler) Summary(ctx context.Context, day string) (sessiondto.SummaryOutput, error) {
	return h.usecase.Summary(ctx, day)
}

func (h CLIHandler) Show(ctx context.Context, day string) (sessiondto.DocumentOutput, error) {
	return h.usecase.Show(ctx, day)
}

func (h CLIHandler) ListDocuments(ctx context.Context) (sessiondto.ScanOutput, error) {
	return h.usecase.ListDocuments(ctx)
}

// ParseContext merges repeated key=value pairs over an optional JSON object.
// Pair values that are JSON literals or canonical decimals keep their type, anything else
// stays a string so what was typed is what gets stored.
func ParseContext(pairs []string, rawJSON string) (map[string]any, error) {
	out := map[string]any{}
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &out); err != nil {
			return nil, fmt.Errorf("%w: context json must be an object: %v", apperrors.ErrInvalidInput, err)
		}
		if out == nil {
			out = map[string]any{}
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: context entry %q must be key=value", apperrors.ErrInvalidInput, pair)
		}
		out[key] = scalar(value)
	}
	return out, nil
}

func scalar(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return value
	}
	// Leading or trailing zeros, exponents and digits beyond float precision would not survive.
	if strconv.FormatFloat(f, 'f', -1, 64) != value {
		return value
	}
	return f
}
