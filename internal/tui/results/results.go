package results

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/internal/tui/theme"
)

const maxColWidth = 40

// Model is the query results component.
type Model struct {
	result    *catalog.QueryResult
	lastQuery string
	headers   []string
	err       error
	width     int
	height    int
	focused   bool
	loading   bool
	colWidths []int

	cursorX   int // selected column
	cursorY   int // selected row
	scrollY   int // first visible row
	colOffset int // first visible column

	rowLimit  int
	exportDir string
}

// New creates a new results model.
func New() Model {
	return Model{rowLimit: 100, exportDir: "."}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.ensureVisible()
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetRowLimit sets the TOP limit of generated filter queries.
func (m *Model) SetRowLimit(n int) {
	if n > 0 {
		m.rowLimit = n
	}
}

// SetExportDir sets where exports are written.
func (m *Model) SetExportDir(dir string) {
	m.exportDir = dir
}

// SetResult sets the query result to display.
func (m *Model) SetResult(r *catalog.QueryResult, query string) {
	m.result = r
	m.lastQuery = query
	m.err = nil
	m.loading = false
	m.cursorX, m.cursorY, m.scrollY, m.colOffset = 0, 0, 0, 0
	m.headers = headers(r)
	m.calculateColumnWidths()
}

// SetError sets an error to display.
func (m *Model) SetError(err error) {
	m.err = err
	m.result = nil
	m.headers = nil
	m.colWidths = nil
	m.loading = false
}

// headers labels columns with their unit, as in "RAJ2000 [deg]".
func headers(r *catalog.QueryResult) []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Columns))
	for i, name := range r.Columns {
		out[i] = name
		if i < len(r.Meta) {
			if unit := r.Meta[i].UnitString(); unit != "" {
				out[i] = name + " [" + unit + "]"
			}
		}
	}
	return out
}

func (m *Model) calculateColumnWidths() {
	if m.result == nil || len(m.headers) == 0 {
		m.colWidths = nil
		return
	}

	m.colWidths = make([]int, len(m.headers))
	for i, h := range m.headers {
		m.colWidths[i] = lipgloss.Width(h)
	}

	for _, row := range m.result.Rows {
		for i, cell := range row {
			if i < len(m.colWidths) {
				m.colWidths[i] = max(m.colWidths[i], lipgloss.Width(cell))
			}
		}
	}

	for i := range m.colWidths {
		m.colWidths[i] = min(max(m.colWidths[i], 1), maxColWidth)
	}
}

func (m Model) rowCount() int {
	if m.result == nil {
		return 0
	}
	return len(m.result.Rows)
}

func (m Model) visibleRows() int {
	return max(1, m.height-4)
}

// lastVisibleColumn returns the index of the last column that fits when
// rendering from colOffset.
func (m Model) lastVisibleColumn() int {
	used := 2
	last := m.colOffset
	for i := m.colOffset; i < len(m.colWidths); i++ {
		used += m.colWidths[i]
		if i > m.colOffset {
			used += 3
		}
		if m.width > 0 && used > m.width && i > m.colOffset {
			break
		}
		last = i
	}
	return last
}

// ensureVisible scrolls so the cursor cell is on screen.
func (m *Model) ensureVisible() {
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if m.cursorY >= m.scrollY+m.visibleRows() {
		m.scrollY = m.cursorY - m.visibleRows() + 1
	}
	if m.cursorX < m.colOffset {
		m.colOffset = m.cursorX
	}
	for m.colOffset < m.cursorX && m.cursorX > m.lastVisibleColumn() {
		m.colOffset++
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.result == nil {
		return m, nil
	}

	rows := m.rowCount()
	cols := len(m.result.Columns)

	switch keyMsg.String() {
	case "up", "k":
		m.cursorY = max(0, m.cursorY-1)
	case "down", "j":
		m.cursorY = max(0, min(rows-1, m.cursorY+1))
	case "left", "h":
		m.cursorX = max(0, m.cursorX-1)
	case "right", "l":
		m.cursorX = max(0, min(cols-1, m.cursorX+1))
	case "pgup":
		m.cursorY = max(0, m.cursorY-m.visibleRows())
	case "pgdown":
		m.cursorY = max(0, min(rows-1, m.cursorY+m.visibleRows()))
	case "g", "home":
		m.cursorY = 0
	case "G", "end":
		m.cursorY = max(0, rows-1)
	case "0":
		m.cursorX = 0
	case "$":
		m.cursorX = max(0, cols-1)
	case "y":
		return m, m.copyCellCmd()
	case "Y":
		return m, m.copyRowJSONCmd()
	case "c":
		return m, m.copyRowCSVCmd()
	case "t":
		return m, m.copyRowTextCmd()
	case "f":
		return m, m.filterByValueCmd()
	case "e":
		return m, m.exportJSONCmd()
	case "E":
		return m, m.exportCSVCmd()
	}

	m.ensureVisible()
	return m, nil
}

// View renders the results pane.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	if m.loading {
		return titleStyle.Render("Results") + "\n" + theme.StyleMuted.Render("  Executing query...")
	}

	if m.err != nil {
		return titleStyle.Render("Results") + "\n" +
			theme.StyleError.Render("  Error: "+m.err.Error())
	}

	if m.result == nil {
		return titleStyle.Render("Results") + "\n" +
			theme.StyleMuted.Render("  Execute a query to see results")
	}

	stats := fmt.Sprintf("%d row(s) | %s", m.result.RowCount, m.result.Duration.Round(time.Millisecond))
	if m.rowCount() > 0 {
		stats += fmt.Sprintf(" | row %d, col %d", m.cursorY+1, m.cursorX+1)
	}
	header := titleStyle.Render("Results") + "  " + theme.StyleMuted.Render(stats)

	if len(m.result.Columns) == 0 {
		return header + "\n" + theme.StyleMuted.Render("  No columns")
	}

	last := m.lastVisibleColumn()

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderRow(m.headers, -1, last))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator(last))

	end := min(m.rowCount(), m.scrollY+m.visibleRows())
	for i := m.scrollY; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(m.result.Rows[i], i, last))
	}

	return b.String()
}

// renderRow renders columns colOffset..last of a row; row -1 is the header.
func (m Model) renderRow(cells []string, row, last int) string {
	parts := make([]string, 0, last-m.colOffset+1)
	for i := m.colOffset; i <= last && i < len(m.colWidths); i++ {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		display := fit(cell, m.colWidths[i])

		switch {
		case row < 0:
			display = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case row == m.cursorY && i == m.cursorX && m.focused:
			display = lipgloss.NewStyle().Reverse(true).Render(display)
		case row == m.cursorY:
			display = lipgloss.NewStyle().Foreground(theme.ColorHighlight).Render(display)
		case row >= 0 && m.result.IsNull(row, i):
			display = theme.StyleMuted.Render(display)
		}
		parts = append(parts, display)
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator(last int) string {
	parts := make([]string, 0, last-m.colOffset+1)
	for i := m.colOffset; i <= last && i < len(m.colWidths); i++ {
		parts = append(parts, strings.Repeat("─", m.colWidths[i]))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int) string {
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
