package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	reflectiondto "agentcoach/internal/modules/reflection/dto"
	sessiondto "agentcoach/internal/modules/session/dto"
	"agentcoach/internal/ui/components"
	"agentcoach/internal/ui/theme"
	reflectionsview "agentcoach/internal/ui/views/reflections"
	sessionsview "agentcoach/internal/ui/views/sessions"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	sessionsview.SessionPort
	LogDecision(ctx context.Context, category, decision, reasoning string) (sessiondto.RecordOutput, error)
	LogSuccess(ctx context.Context, description string, outcomeContext map[string]any) (sessiondto.RecordOutput, error)
	LogFailure(ctx context.Context, description string, outcomeContext map[string]any) (sessiondto.RecordOutput, error)
	LogNote(ctx context.Context, note string) (sessiondto.RecordOutput, error)
}

type reflectionPort interface {
	reflectionsview.ReflectionPort
	Reflect(ctx context.Context, maxAgeDays, maxCount int, save bool) (reflectiondto.ReflectOutput, error)
}

// Window is the reflection window used by reflect:save.
type Window struct {
	MaxAgeDays int
	MaxCount   int
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabSessions tabID = iota
	tabReflections
	tabCount
)

var tabLabels = [tabCount]string{"Sessions", "Reflections"}

// hints must stay in sync with the switch in executePalette.
var paletteHints = []string{
	"note <text>",
	"success <description>",
	"failure <description>",
	"decision <category> <decision>",
	"reflect:save",
	"refresh",
}

// ─── async messages ───────────────────────────────────────────────────────────

type loggedMsg struct {
	out sessiondto.RecordOutput
	err error
}

type reflectedMsg struct {
	out reflectiondto.ReflectOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "quick log")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes between the session browser and the
// reflection history and turns palette commands into log and reflect calls.
type Model struct {
	root       string
	window     Window
	session    sessionPort
	reflection reflectionPort

	sessionsView    sessionsview.Model
	reflectionsView reflectionsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(root string, window Window, session sessionPort, reflection reflectionPort) Model {
	return Model{
		root:            root,
		window:          window,
		session:         session,
		reflection:      reflection,
		sessionsView:    sessionsview.New(session),
		reflectionsView: reflectionsview.New(reflection),
		activeTab:       tabSessions,
		keys:            defaultKeys(),
		help:            help.New(),
		palette:         components.NewPalette(paletteHints),
		status:          "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sessionsView.Init(), m.reflectionsView.Init())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case loggedMsg:
		if msg.err != nil {
			m.status = "log failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s logged for %s", strings.ReplaceAll(msg.out.Kind, "_", " "), msg.out.Day)
		return m, m.sessionsView.Reload()

	case reflectedMsg:
		if msg.err != nil {
			m.status = "reflect failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("reflection archived: %d sessions, %d skipped", msg.out.SessionCount, len(msg.out.Skipped))
		m.activeTab = tabReflections
		return m, m.reflectionsView.Reload()

	case sessionsview.LoadedMsg:
		var cmd tea.Cmd
		m.sessionsView, cmd = m.sessionsView.Update(msg)
		return m, cmd

	case reflectionsview.HistoryLoadedMsg, reflectionsview.RunLoadedMsg:
		var cmd tea.Cmd
		m.reflectionsView, cmd = m.reflectionsView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Refresh):
			m.status = "refreshing"
			return m, tea.Batch(m.sessionsView.Reload(), m.reflectionsView.Reload())
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabSessions:
		m.sessionsView, tabCmd = m.sessionsView.Update(msg)
	case tabReflections:
		m.reflectionsView, tabCmd = m.reflectionsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()

	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabReflections:
		content = m.reflectionsView.View()
	default:
		content = m.sessionsView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "coach  " + strings.Join(parts, sep) + theme.Muted.Render("   "+m.root)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  ::log  r:refresh  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	command, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	rest = strings.TrimSpace(rest)
	if command == "" {
		return m, nil
	}

	switch command {
	case "note":
		if rest == "" {
			m.status = "usage: note <text>"
			return m, nil
		}
		return m, m.logCmd(func(ctx context.Context) (sessiondto.RecordOutput, error) {
			return m.session.LogNote(ctx, rest)
		})

	case "success", "failure":
		if rest == "" {
			m.status = "usage: " + command + " <description>"
			return m, nil
		}
		log := m.session.LogSuccess
		if command == "failure" {
			log = m.session.LogFailure
		}
		return m, m.logCmd(func(ctx context.Context) (sessiondto.RecordOutput, error) {
			return log(ctx, rest, nil)
		})

	case "decision":
		category, decision, _ := strings.Cut(rest, " ")
		if strings.TrimSpace(decision) == "" {
			m.status = "usage: decision <category> <decision>"
			return m, nil
		}
		return m, m.logCmd(func(ctx context.Context) (sessiondto.RecordOutput, error) {
			return m.session.LogDecision(ctx, category, strings.TrimSpace(decision), "")
		})

	case "reflect:save":
		m.status = "reflecting"
		return m, m.reflectCmd()

	case "refresh":
		m.status = "refreshing"
		return m, tea.Batch(m.sessionsView.Reload(), m.reflectionsView.Reload())

	default:
		m.status = "unknown command: " + command
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabSessions:
		return m.sessionsView.Filtering()
	case tabReflections:
		return m.reflectionsView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.sessionsView, _ = m.sessionsView.Update(sz)
	m.reflectionsView, _ = m.reflectionsView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) logCmd(log func(context.Context) (sessiondto.RecordOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := log(context.Background())
		return loggedMsg{out: out, err: err}
	}
}

func (m Model) reflectCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.reflection.Reflect(context.Background(), m.window.MaxAgeDays, m.window.MaxCount, true)
		return reflectedMsg{out: out, err: err}
	}
}
