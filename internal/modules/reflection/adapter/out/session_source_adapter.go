package out

import (
	"context"

	"agentcoach/internal/modules/reflection/domain"
	reflectionout "agentcoach/internal/modules/reflection/port/out"
	sessionin "agentcoach/internal/modules/session/port/in"
)

type SessionSourceAdapter struct {
	sessions sessionin.Usecase
}

func NewSessionSourceAdapter(sessions sessionin.Usecase) reflectionout.SessionSource {
	return &SessionSourceAdapter{sessions: sessions}
}

func (a *SessionSourceAdapter) Scan(ctx context.Context) (domain.Collection, error) {
	listed, err := a.sessions.ListDocuments(ctx)
	if err != nil {
		return domain.Collection{}, err
	}
	out := domain.Collection{Sessions: listed.Documents}
	for _, skipped := range listed.Skipped {
		out.Skipped = append(out.Skipped, domain.Skip{Name: skipped.Name, Reason: skipped.Reason})
	}
	return out, nil
}
