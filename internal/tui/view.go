package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mclrc/vizier/internal/tui/theme"
)

func (m Model) View() string {
	switch {
	case m.showHelp:
		return m.centered(m.viewHelp())
	case m.mode == ModeSelectEndpoint:
		return m.centered(m.viewSelectEndpoint())
	case m.mode == ModeConnect:
		return m.centered(m.viewConnect())
	}
	return m.viewMain()
}

func (m Model) centered(lines []string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func heading() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.ColorPrimary).Bold(true)
}

func banner() []string {
	return []string{
		"",
		heading().Padding(1, 0).Render("vizier"),
		theme.StyleMuted.Render("ADQL over TAP, in the terminal."),
		"",
	}
}

func (m Model) errorLine() string {
	if m.err == nil {
		return ""
	}
	return "\n" + theme.StyleError.Render("  Error: "+m.err.Error())
}

func (m Model) viewSelectEndpoint() []string {
	current := lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true)
	item := func(i int, label string) string {
		if i == m.endpointCursor {
			return current.Render("> " + label)
		}
		return "  " + label
	}

	lines := append(banner(), heading().Render("Saved Endpoints"))
	for i, ep := range m.cfg.Endpoints {
		lines = append(lines, item(i, fmt.Sprintf("%s (%s)", ep.Name, ep.DisplayString())))
	}
	lines = append(lines, "", item(len(m.cfg.Endpoints), "[New Endpoint]"))
	if e := m.errorLine(); e != "" {
		lines = append(lines, e)
	}
	return append(lines, "", theme.StyleMuted.Render("  ↑/↓: Navigate  Enter: Connect  n: New  q: Quit"))
}

func (m Model) viewConnect() []string {
	keys := "Enter: Connect │ Ctrl+C: Quit"
	if len(m.cfg.Endpoints) > 0 {
		keys = "Esc: Back │ " + keys
	}
	return append(banner(),
		lipgloss.NewStyle().Foreground(theme.ColorPrimary).Render("TAP sync endpoint:"),
		"  "+m.urlInput.View(),
		m.errorLine(),
		"",
		theme.StyleMuted.Render("  "+keys),
	)
}

// frame draws content inside a border of the given outer size, highlighted
// when pane has focus.
func (m Model) frame(pane Pane, width, height int, content string) string {
	style := theme.StyleBorder
	if m.activePane == pane {
		style = theme.StyleActiveBorder
	}
	return style.Width(width - 2).Height(height - 2).Render(content)
}

func (m Model) viewMain() string {
	g := m.geometry()
	side := m.frame(PaneExplorer, g.sideWidth, g.bodyHeight, m.explorer.View())
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.frame(PaneEditor, g.mainWidth, g.editorHeight, m.editor.View()),
		m.frame(PaneResults, g.mainWidth, g.resultsHeight, m.results.View()),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, side, right),
		m.statusbar.View(),
	)
}

type helpSection struct {
	title string
	keys  [][2]string
}

func (m Model) helpSections() []helpSection {
	return []helpSection{
		{"Global", [][2]string{
			{"q / Ctrl+C", "Quit"},
			{"Tab / Shift+Tab", "Next / previous pane"},
			{"?", "Toggle this help"},
		}},
		{"Catalogues", [][2]string{
			{"↑/k  ↓/j  g/G", "Move through the tree"},
			{"Enter/→/l", "Load tables or columns"},
			{"←/h", "Collapse, or go to parent"},
			{"s", fmt.Sprintf("SELECT TOP %d * from the table", m.rowLimit())},
			{"d", "COUNT(*) of the table"},
		}},
		{"ADQL editor", [][2]string{
			{"Ctrl+E / F5", "Send to the TAP service"},
			{"Ctrl+K", "Clear"},
			{"Ctrl+L", "Uppercase ADQL keywords"},
			{"Tab", "Complete table name after FROM/JOIN"},
			{"Esc", "Cancel completion"},
		}},
		{"Results", [][2]string{
			{"↑/k ↓/j ←/h →/l", "Move the cell cursor"},
			{"PgUp/PgDn g/G", "Page, first/last row"},
			{"0 / $", "First / last column"},
			{"y / Y", "Copy cell / row as JSON"},
			{"c / t", "Copy row as CSV / tab-separated"},
			{"f", "Filter the table by the selected value"},
			{"e / E", "Export JSON / CSV"},
		}},
	}
}

func (m Model) viewHelp() []string {
	section := lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true)
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	lines := []string{heading().Render("vizier keys"), ""}
	for _, s := range m.helpSections() {
		lines = append(lines, section.Render(s.title))
		for _, k := range s.keys {
			lines = append(lines, key.Render(fmt.Sprintf("  %-16s", k[0]))+" "+theme.StyleMuted.Render(k[1]))
		}
		lines = append(lines, "")
	}
	return append(lines, theme.StyleMuted.Render("Any key closes this help"))
}
