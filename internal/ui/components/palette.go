package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentcoach/internal/ui/theme"
)

// PaletteSubmitMsg carries a confirmed quick-log line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

const (
	maxHints   = 5
	maxHistory = 20
)

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is the quick-log prompt. Up and down walk previously submitted lines,
// tab completes the command word from the first matching hint.
type Palette struct {
	input   textinput.Model
	hints   []string
	history []string
	cursor  int
	open    bool
	width   int
}

func NewPalette(hints []string) Palette {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "note, success, failure, decision, reflect…"
	ti.CharLimit = 512
	return Palette{input: ti, hints: hints}
}

func (p Palette) Visible() bool { return p.open }

// Open shows an empty palette and returns the cursor blink command.
func (p *Palette) Open() tea.Cmd {
	p.open = true
	p.cursor = len(p.history)
	p.input.Reset()
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.open {
		return p, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		p.close()
		return p, func() tea.Msg { return PaletteCancelMsg{} }
	case tea.KeyEnter:
		line := strings.TrimSpace(p.input.Value())
		p.close()
		p.remember(line)
		return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
	case tea.KeyUp:
		p.recall(-1)
		return p, nil
	case tea.KeyDown:
		p.recall(1)
		return p, nil
	case tea.KeyTab:
		p.complete()
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Matching returns up to five hints whose command word starts with the typed one.
func (p Palette) Matching() []string {
	word := commandWord(p.input.Value())
	var out []string
	for _, h := range p.hints {
		if word != "" && !strings.HasPrefix(h, word) {
			continue
		}
		out = append(out, h)
		if len(out) == maxHints {
			break
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.open {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Quick log") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if matching := p.Matching(); len(matching) > 0 {
		sb.WriteString("\n")
		for _, h := range matching {
			sb.WriteString(hintStyle.Render("  "+h) + "\n")
		}
	}
	if len(p.history) > 0 {
		sb.WriteString(hintStyle.Render("\n↑/↓ previous entries  tab complete"))
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.open = false
	p.input.Blur()
}

func (p *Palette) remember(line string) {
	if line == "" {
		return
	}
	if n := len(p.history); n > 0 && p.history[n-1] == line {
		return
	}
	p.history = append(p.history, line)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

func (p *Palette) recall(step int) {
	if len(p.history) == 0 {
		return
	}
	p.cursor = max(0, min(p.cursor+step, len(p.history)))
	if p.cursor == len(p.history) {
		p.input.SetValue("")
		return
	}
	p.input.SetValue(p.history[p.cursor])
	p.input.CursorEnd()
}

func (p *Palette) complete() {
	value := p.input.Value()
	if strings.Contains(value, " ") {
		return
	}
	matching := p.Matching()
	if len(matching) == 0 {
		return
	}
	word, _, hasArgs := strings.Cut(matching[0], " ")
	if hasArgs {
		word += " "
	}
	p.input.SetValue(word)
	p.input.CursorEnd()
}

func commandWord(value string) string {
	word, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(value)), " ")
	return word
}
