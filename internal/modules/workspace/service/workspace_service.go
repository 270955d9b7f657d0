package service

import (
	"context"

	"agentcoach/internal/modules/workspace/domain"
	workspaceout "agentcoach/internal/modules/workspace/port/out"
	"agentcoach/internal/platform/clock"
)

type WorkspaceService struct {
	clock     clock.Clock
	scaffold  workspaceout.Scaffold
	templates workspaceout.TemplateSource
}

func NewWorkspaceService(clock clock.Clock, scaffold workspaceout.Scaffold, templates workspaceout.TemplateSource) *WorkspaceService {
	return &WorkspaceService{clock: clock, scaffold: scaffold, templates: templates}
}

// Initialize lays out the coach directories and seeds each starter document that is
// missing. It is safe to run repeatedly.
func (s *WorkspaceService) Initialize(ctx context.Context) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0, len(domain.Dirs)+len(domain.StarterDocs))
	for _, dir := range domain.Dirs {
		created, err := s.scaffold.EnsureDir(ctx, dir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.Entry{Path: dir, Kind: domain.KindDir, Status: domain.StatusOf(created)})
	}

	data := domain.NewTemplateData(s.clock.Now())
	for _, doc := range domain.StarterDocs {
		content, err := s.templates.Render(doc.Template, data)
		if err != nil {
			return nil, err
		}
		created, err := s.scaffold.WriteIfAbsent(ctx, doc.Path, content)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.Entry{Path: doc.Path, Kind: domain.KindFile, Status: domain.StatusOf(created)})
	}
	return entries, nil
}
