package out

import (
	"context"

	"agentcoach/internal/modules/session/domain"
)

// DocumentStore persists one Document per day. Load reports found=false, not an
// error, when the day has no backing record.
type DocumentStore interface {
	Load(ctx context.Context, day string) (doc domain.Document, found bool, err error)
	Save(ctx context.Context, day string, doc domain.Document) (string, error)
	Scan(ctx context.Context) (domain.Scan, error)
}
