package usecase

import (
	"context"

	"go.uber.org/zap"

	"agentcoach/internal/modules/workspace/domain"
	workspacedto "agentcoach/internal/modules/workspace/dto"
	workspacein "agentcoach/internal/modules/workspace/port/in"
	"agentcoach/internal/modules/workspace/service"
	"agentcoach/internal/platform/logging"
)

type Interactor struct {
	root   string
	svc    *service.WorkspaceService
	logger *zap.Logger
}

func NewInteractor(root string, svc *service.WorkspaceService, logger *zap.Logger) workspacein.Usecase {
	return &Interactor{root: root, svc: svc, logger: logging.OrNop(logger).Named("workspace")}
}

func (i *Interactor) Initialize(ctx context.Context) (workspacedto.InitOutput, error) {
	entries, err := i.svc.Initialize(ctx)
	if err != nil {
		i.logger.Error("initialize workspace failed", zap.String("root", i.root), zap.Error(err))
		return workspacedto.InitOutput{}, err
	}
	out := workspacedto.InitOutput{Root: i.root, Entries: make([]workspacedto.EntryOutput, 0, len(entries))}
	for _, entry := range entries {
		if entry.Status == domain.StatusCreated {
			out.Created++
		}
		out.Entries = append(out.Entries, workspacedto.EntryOutput{Path: entry.Path, Kind: string(entry.Kind), Status: string(entry.Status)})
	}
	i.logger.Info("workspace initialized", zap.String("root", i.root), zap.Int("created", out.Created))
	return out, nil
}
