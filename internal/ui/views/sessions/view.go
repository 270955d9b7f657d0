package sessions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondomain "agentcoach/internal/modules/session/domain"
	sessiondto "agentcoach/internal/modules/session/dto"
	"agentcoach/internal/ui/theme"
)

type SessionPort interface {
	ListDocuments(ctx context.Context) (sessiondto.ScanOutput, error)
}

type LoadedMsg struct {
	Scan sessiondto.ScanOutput
	Err  error
}

type dayItem struct {
	doc sessiondomain.Document
}

func (i dayItem) Title() string       { return i.doc.Date }
func (i dayItem) Description() string { return SummaryLine(i.doc.Summary()) }
func (i dayItem) FilterValue() string { return i.doc.Date }

type Model struct {
	port    SessionPort
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	skipped []sessiondto.SkippedRecord
	loading bool
	width   int
	height  int
}

func New(port SessionPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload rescans the session directory.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		scan, err := m.port.ListDocuments(context.Background())
		return LoadedMsg{Scan: scan, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Sessions: " + msg.Err.Error()
			return m, nil
		}
		docs := append([]sessiondomain.Document(nil), msg.Scan.Documents...)
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Date > docs[j].Date })
		items := make([]list.Item, len(docs))
		for i, d := range docs {
			items[i] = dayItem{doc: d}
		}
		m.skipped = msg.Scan.Skipped
		m.list.Title = "Sessions"
		if len(m.skipped) > 0 {
			m.list.Title = fmt.Sprintf("Sessions (%d unreadable)", len(m.skipped))
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.showSelected()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.showSelected()
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sessions…")
	}

	listW := m.width * 3 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := theme.Pane.
		Padding(0).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width * 3 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m *Model) showSelected() {
	item, ok := m.list.SelectedItem().(dayItem)
	if !ok {
		m.preview.SetContent(theme.Muted.Render("No sessions logged yet. Use : to log a note."))
		return
	}
	m.preview.SetContent(RenderDocument(item.doc, m.skipped))
	m.preview.GotoTop()
}

// SummaryLine is the one-line digest of a day used in lists and CLI output.
func SummaryLine(s sessiondomain.Summary) string {
	return fmt.Sprintf("%d decisions  %s %d  %s %d  %d notes  %d iterations",
		s.Decisions, theme.MarkOK, s.Successes, theme.MarkFail, s.Failures, s.Notes, s.PromptIterations)
}

// RenderDocument lays out every record of one day, oldest first.
func RenderDocument(doc sessiondomain.Document, skipped []sessiondto.SkippedRecord) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Session "+doc.Date) + "\n")
	sb.WriteString(theme.Muted.Render("started "+doc.Timestamp) + "\n")
	sb.WriteString(SummaryLine(doc.Summary()) + "\n")

	if len(doc.Decisions) > 0 {
		sb.WriteString("\n" + theme.Hot.Render("Decisions") + "\n")
		for _, d := range doc.Decisions {
			sb.WriteString(fmt.Sprintf("%s [%s] %s\n", theme.MarkNote, d.Category, d.Decision))
			if d.Reasoning != "" {
				sb.WriteString(theme.Muted.Render("    "+d.Reasoning) + "\n")
			}
		}
	}
	if len(doc.Outcomes) > 0 {
		sb.WriteString("\n" + theme.Hot.Render("Outcomes") + "\n")
		for _, o := range doc.Outcomes {
			sb.WriteString(theme.Result(string(o.Result)) + "  " + o.Description + "\n")
			keys := make([]string, 0, len(o.Context))
			for k := range o.Context {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				sb.WriteString(theme.Muted.Render(fmt.Sprintf("    %s: %v", k, o.Context[k])) + "\n")
			}
		}
	}
	if len(doc.Notes) > 0 {
		sb.WriteString("\n" + theme.Hot.Render("Notes") + "\n")
		for _, n := range doc.Notes {
			sb.WriteString(theme.MarkNote + " " + n.Note + "\n")
		}
	}
	if len(doc.PromptIterations) > 0 {
		sb.WriteString("\n" + theme.Hot.Render("Prompt iterations") + "\n")
		for _, p := range doc.PromptIterations {
			sb.WriteString(theme.MarkNote + " " + p.Improvement + "\n")
			sb.WriteString(theme.Muted.Render("    before: "+p.Original) + "\n")
			sb.WriteString(theme.Muted.Render("    after:  "+p.Revised) + "\n")
		}
	}
	if len(skipped) > 0 {
		sb.WriteString("\n" + theme.Warning.Render("Unreadable session files") + "\n")
		for _, s := range skipped {
			sb.WriteString(theme.MarkWarn + " " + s.Name + theme.Muted.Render("  "+s.Reason) + "\n")
		}
	}
	return sb.String()
}
