package reflections

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	reflectiondto "agentcoach/internal/modules/reflection/dto"
	"agentcoach/internal/ui/theme"
)

const historyLimit = 50

type ReflectionPort interface {
	History(ctx context.Context, limit int) (reflectiondto.HistoryOutput, error)
	Show(ctx context.Context, id string) (reflectiondto.RunDocumentOutput, error)
}

type HistoryLoadedMsg struct {
	History reflectiondto.HistoryOutput
	Err     error
}

type RunLoadedMsg struct {
	Run reflectiondto.RunDocumentOutput
	Err error
}

type runItem struct {
	run reflectiondto.RunOutput
}

func (i runItem) Title() string { return i.run.CreatedAt.Format("2006-01-02 15:04") }
func (i runItem) Description() string {
	return fmt.Sprintf("%s  %d sessions  %d skipped", shortID(i.run.ID), i.run.SessionCount, i.run.SkippedCount)
}
func (i runItem) FilterValue() string { return i.run.ID }

type Model struct {
	port    ReflectionPort
	list    list.Model
	preview viewport.Model
	width   int
	height  int
}

func New(port ReflectionPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Peach).BorderForeground(theme.Peach)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Peach)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Reflections"
	l.Styles.Title = theme.Title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)
	vp.SetContent(theme.Muted.Render("No archived reflections. Run `reflect:save` from the palette."))

	return Model{port: port, list: l, preview: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the reflection history.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		history, err := m.port.History(context.Background(), historyLimit)
		return HistoryLoadedMsg{History: history, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listW := m.width * 3 / 10
		m.list.SetSize(listW, m.height)
		m.preview.Width = m.width - listW - 4
		m.preview.Height = m.height - 4

	case HistoryLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Reflections: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.History.Runs))
		for i, run := range msg.History.Runs {
			items[i] = runItem{run: run}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(items) > 0 {
			cmds = append(cmds, m.loadRunCmd(msg.History.Runs[0].ID))
		}

	case RunLoadedMsg:
		if msg.Err != nil {
			m.preview.SetContent(theme.Failure.Render(msg.Err.Error()))
		} else {
			m.preview.SetContent(renderRun(msg.Run))
			m.preview.GotoTop()
		}
	}

	var lCmd tea.Cmd
	prevIdx := m.list.Index()
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prevIdx {
		if item, ok := m.list.SelectedItem().(runItem); ok {
			cmds = append(cmds, m.loadRunCmd(item.run.ID))
		}
	}

	var vCmd tea.Cmd
	m.preview, vCmd = m.preview.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 3 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.
		Padding(0).
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) loadRunCmd(id string) tea.Cmd {
	return func() tea.Msg {
		run, err := m.port.Show(context.Background(), id)
		return RunLoadedMsg{Run: run, Err: err}
	}
}

func renderRun(doc reflectiondto.RunDocumentOutput) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Reflection "+shortID(doc.Run.ID)) + "\n")
	sb.WriteString(theme.Muted.Render("file:   ") + doc.Run.Path + "\n")
	sb.WriteString(theme.Muted.Render("window: ") + fmt.Sprintf("%d days, at most %d sessions", doc.Run.MaxAgeDays, doc.Run.MaxCount) + "\n\n")
	sb.WriteString(doc.Prompt)
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
