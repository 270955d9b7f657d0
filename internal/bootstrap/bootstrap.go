package bootstrap

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	reflectioninadapter "agentcoach/internal/modules/reflection/adapter/in"
	reflectionoutadapter "agentcoach/internal/modules/reflection/adapter/out"
	reflectionservice "agentcoach/internal/modules/reflection/service"
	reflectionusecase "agentcoach/internal/modules/reflection/usecase"
	sessioninadapter "agentcoach/internal/modules/session/adapter/in"
	sessionoutadapter "agentcoach/internal/modules/session/adapter/out"
	sessionservice "agentcoach/internal/modules/session/service"
	sessionusecase "agentcoach/internal/modules/session/usecase"
	workspaceinadapter "agentcoach/internal/modules/workspace/adapter/in"
	workspaceoutadapter "agentcoach/internal/modules/workspace/adapter/out"
	workspaceservice "agentcoach/internal/modules/workspace/service"
	workspaceusecase "agentcoach/internal/modules/workspace/usecase"
	"agentcoach/internal/platform/clock"
	"agentcoach/internal/platform/config"
	"agentcoach/internal/platform/id"
	"agentcoach/internal/platform/logging"
	uiapp "agentcoach/internal/ui/app"
)

type App struct {
	Config        config.Config
	Logger        *zap.Logger
	SessionCLI    sessioninadapter.CLIHandler
	ReflectionCLI reflectioninadapter.CLIHandler
	WorkspaceCLI  workspaceinadapter.CLIHandler

	closers []func()
}

func New(cfg config.Config) (*App, error) {
	logger, syncLogs, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	clk := clock.SystemClock{}

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, sessionoutadapter.NewFileDocumentStore(cfg.SessionsDir())),
		logger,
	)

	history := reflectionoutadapter.NewSQLiteHistoryProjector(cfg.DBPath)
	reflectionUC := reflectionusecase.NewInteractor(
		reflectionservice.NewReflectionService(clk,
			reflectionoutadapter.NewSessionSourceAdapter(sessionUC),
			reflectionoutadapter.NewFileContextStore(cfg.Root),
		),
		reflectionservice.NewArchiveService(clk, id.UUID{},
			reflectionoutadapter.NewMarkdownArchiveStore(cfg.ReflectionsDir()),
			history,
			reflectionoutadapter.NewFileEvolutionLog(filepath.Join(cfg.Root, "evolution.md")),
		),
		logger,
	)

	templates, err := workspaceoutadapter.NewEmbeddedTemplates()
	if err != nil {
		syncLogs()
		return nil, err
	}
	workspaceUC := workspaceusecase.NewInteractor(cfg.Root,
		workspaceservice.NewWorkspaceService(clk, workspaceoutadapter.NewFileScaffold(cfg.Root), templates),
		logger,
	)

	return &App{
		Config:        cfg,
		Logger:        logger,
		SessionCLI:    sessioninadapter.NewCLIHandler(sessionUC),
		ReflectionCLI: reflectioninadapter.NewCLIHandler(reflectionUC),
		WorkspaceCLI:  workspaceinadapter.NewCLIHandler(workspaceUC),
		closers:       []func(){func() { _ = history.Close() }, syncLogs},
	}, nil
}

// Close releases the database handle and flushes logs.
func (a *App) Close() {
	for _, closer := range a.closers {
		closer()
	}
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(
		app.Config.Root,
		uiapp.Window{MaxAgeDays: app.Config.Reflect.MaxAgeDays, MaxCount: app.Config.Reflect.MaxCount},
		app.SessionCLI,
		app.ReflectionCLI,
	)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
