package statusbar

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mclrc/vizier/internal/tui/theme"
)

const defaultHints = "Ctrl+E: Run │ Tab: Switch pane │ ?: Help │ q: Quit"

// Model is the status bar component.
type Model struct {
	width       int
	connected   bool
	serviceName string
	activePane  string
	message     string
}

// New creates a new status bar model.
func New() Model {
	return Model{
		activePane: "explorer",
	}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnected updates the service status display.
func (m *Model) SetConnected(connected bool, name string) {
	m.connected = connected
	m.serviceName = name
}

// SetActivePane updates the displayed active pane name.
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetMessage sets a temporary status message.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// Message returns the current status message.
func (m Model) Message() string {
	return m.message
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (status bar has no interactive behavior).
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var indicator string
	if m.connected {
		indicator = lipgloss.NewStyle().
			Foreground(theme.ColorSuccess).
			Render("●") + " " + m.serviceName
	} else {
		indicator = lipgloss.NewStyle().
			Foreground(theme.ColorError).
			Render("●") + " disconnected"
	}
	left := indicator + theme.StyleMuted.Render(" ["+m.activePane+"]")

	right := defaultHints
	if m.message != "" {
		right = m.message
	}

	padding := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-4)

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
