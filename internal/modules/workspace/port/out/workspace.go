package out

import (
	"context"

	"agentcoach/internal/modules/workspace/domain"
)

// Scaffold creates workspace paths relative to the coach root without touching
// anything that already exists.
type Scaffold interface {
	EnsureDir(ctx context.Context, rel string) (bool, error)
	WriteIfAbsent(ctx context.Context, rel string, content []byte) (bool, error)
}

type TemplateSource interface {
	Render(name string, data domain.TemplateData) ([]byte, error)
}
