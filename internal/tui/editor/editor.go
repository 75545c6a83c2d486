package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mclrc/vizier/internal/tui/theme"
)

// ExecuteQueryMsg carries the ADQL text to send to the service.
type ExecuteQueryMsg struct {
	Query string
}

// Model is the ADQL editor pane.
type Model struct {
	textarea textarea.Model
	focused  bool
	width    int
	height   int

	comp completion
}

func New() Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT TOP 10 * FROM \"I/239/hip_main\""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "

	muted := lipgloss.NewStyle().Foreground(theme.ColorMuted)
	for _, s := range []*textarea.Style{&ta.FocusedStyle, &ta.BlurredStyle} {
		s.Base = lipgloss.NewStyle()
		s.Placeholder = muted
	}
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize sets the outer size; the text area keeps a one cell margin.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.textarea.SetWidth(w - 2)
	m.textarea.SetHeight(h - 2)
}

func (m *Model) SetFocused(f bool) {
	m.focused = f
	if !f {
		m.textarea.Blur()
		return
	}
	m.textarea.Focus()
}

func (m Model) Focused() bool { return m.focused }

// Value returns the query text as typed.
func (m Model) Value() string { return m.textarea.Value() }

func (m *Model) SetQuery(query string) { m.textarea.SetValue(query) }

// SetTableNames sets the names offered by Tab completion.
func (m *Model) SetTableNames(names []string) { m.comp.tables = names }

// CompletionActive reports whether Tab is cycling completion candidates.
func (m Model) CompletionActive() bool { return m.comp.active() }

// WantsTab reports whether Tab should complete a table name instead of
// switching panes.
func (m Model) WantsTab() bool {
	return m.comp.active() || len(m.comp.match(m.Value())) > 0
}

func (m *Model) Clear() {
	m.textarea.Reset()
	m.comp.reset()
}

func (m Model) Init() tea.Cmd { return textarea.Blink }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.passThrough(msg)
	}

	switch key.String() {
	case "ctrl+e", "f5":
		m.comp.reset()
		query := strings.TrimSpace(m.Value())
		if query == "" {
			return m, nil
		}
		return m, func() tea.Msg { return ExecuteQueryMsg{Query: query} }
	case "ctrl+k":
		m.Clear()
		return m, nil
	case "ctrl+l":
		m.SetQuery(FormatKeywords(m.Value()))
		return m, nil
	case "tab":
		if completed, ok := m.comp.complete(m.Value()); ok {
			m.SetQuery(completed)
			return m, nil
		}
	case "esc":
		if m.comp.active() {
			m.comp.reset()
			return m, nil
		}
	default:
		m.comp.reset()
	}
	return m.passThrough(msg)
}

func (m Model) passThrough(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	title := lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true).Padding(0, 1).Render("ADQL")
	out := title + "\n" + m.textarea.View()

	if len(m.comp.candidates) < 2 {
		return out
	}
	current := lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true)
	names := make([]string, len(m.comp.candidates))
	for i, c := range m.comp.candidates {
		if i == m.comp.index {
			names[i] = current.Render(c)
		} else {
			names[i] = theme.StyleMuted.Render(c)
		}
	}
	return out + "\n" + lipgloss.NewStyle().Padding(0, 1).Render(theme.StyleMuted.Render("Tab: ")+strings.Join(names, " │ "))
}
