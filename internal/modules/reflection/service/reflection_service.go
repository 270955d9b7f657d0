package service

import (
	"context"

	"agentcoach/internal/modules/reflection/domain"
	reflectionout "agentcoach/internal/modules/reflection/port/out"
	"agentcoach/internal/platform/clock"
	apperrors "agentcoach/internal/platform/errors"
)

// Reflection is a rendered prompt together with the sessions it was built from.
type Reflection struct {
	Prompt     string
	Collection domain.Collection
	Window     domain.Window
}

type ReflectionService struct {
	clock    clock.Clock
	sessions reflectionout.SessionSource
	docs     reflectionout.ContextStore
}

func NewReflectionService(clock clock.Clock, sessions reflectionout.SessionSource, docs reflectionout.ContextStore) *ReflectionService {
	return &ReflectionService{clock: clock, sessions: sessions, docs: docs}
}

// LoadRecentSessions never fails on an unreadable session; those come back as skips.
func (s *ReflectionService) LoadRecentSessions(ctx context.Context, window domain.Window) (domain.Collection, error) {
	all, err := s.sessions.Scan(ctx)
	if err != nil {
		return domain.Collection{}, err
	}
	return domain.Select(all, window, s.clock.Now()), nil
}

func (s *ReflectionService) Prepare(ctx context.Context, window domain.Window) (Reflection, error) {
	exists, err := s.docs.RootExists(ctx)
	if err != nil {
		return Reflection{}, err
	}
	if !exists {
		return Reflection{}, apperrors.ErrWorkspaceMissing
	}
	collection, err := s.LoadRecentSessions(ctx, window)
	if err != nil {
		return Reflection{}, err
	}
	docs, err := s.docs.Read(ctx)
	if err != nil {
		return Reflection{}, err
	}
	prompt, err := domain.RenderPrompt(collection.Sessions, docs)
	if err != nil {
		return Reflection{}, err
	}
	return Reflection{Prompt: prompt, Collection: collection, Window: window}, nil
}
