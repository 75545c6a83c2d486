package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mclrc/vizier/internal/app"
	"github.com/mclrc/vizier/internal/config"
	"github.com/mclrc/vizier/internal/tui/editor"
	"github.com/mclrc/vizier/internal/tui/explorer"
	"github.com/mclrc/vizier/internal/tui/results"
	"github.com/mclrc/vizier/internal/tui/statusbar"
	"github.com/mclrc/vizier/internal/tui/theme"
	"github.com/mclrc/vizier/tap"
)

// Pane is one of the three areas of the main screen that can take focus.
// Tab order follows the declaration order.
type Pane int

const (
	PaneExplorer Pane = iota
	PaneEditor
	PaneResults

	paneCount
)

var paneNames = [paneCount]string{"explorer", "editor", "results"}

func (p Pane) String() string {
	if p < 0 || p >= paneCount {
		return "unknown"
	}
	return paneNames[p]
}

// AppMode is the screen currently shown.
type AppMode int

const (
	ModeSelectEndpoint AppMode = iota // saved endpoints list
	ModeConnect                       // endpoint URL input
	ModeMain                          // explorer, editor and results
)

// Model is the root bubbletea model. It owns the service and routes
// catalogue and query traffic between the panes.
type Model struct {
	service *app.Service
	cfg     *config.Config

	explorer  explorer.Model
	editor    editor.Model
	results   results.Model
	statusbar statusbar.Model
	urlInput  textinput.Model

	mode       AppMode
	activePane Pane
	showHelp   bool
	err        error

	width, height int

	pendingEndpoint string // connected to by Init
	endpoint        string // URL of the current service
	endpointCursor  int    // index into cfg.Endpoints; len means "new"
}

// NewModel creates the root model. A non-empty endpoint is connected to
// right away; otherwise saved endpoints are offered first.
func NewModel(service *app.Service, cfg *config.Config, endpoint string) Model {
	if cfg == nil {
		cfg = &config.Config{}
	}
	theme.Use(cfg.Preferences.Theme)

	input := textinput.New()
	input.Placeholder = tap.DefaultEndpoint
	input.SetValue(tap.DefaultEndpoint)
	input.CharLimit = 500
	input.Width = 70
	input.Focus()

	m := Model{
		service:         service,
		cfg:             cfg,
		explorer:        explorer.New(),
		editor:          editor.New(),
		results:         results.New(),
		statusbar:       statusbar.New(),
		urlInput:        input,
		mode:            ModeConnect,
		activePane:      PaneExplorer,
		pendingEndpoint: endpoint,
	}
	if endpoint == "" && len(cfg.Endpoints) > 0 {
		m.mode = ModeSelectEndpoint
	}
	m.explorer.SetRowLimit(cfg.Preferences.RowLimit)
	m.results.SetRowLimit(cfg.Preferences.RowLimit)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.pendingEndpoint == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.connectCmd(m.pendingEndpoint))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if schema, ok := explorer.IsRequestTablesMsg(msg); ok {
		return m, m.loadTablesCmd(schema)
	}
	if schema, table, ok := explorer.IsRequestColumnsMsg(msg); ok {
		return m, m.loadColumnsCmd(schema, table)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		return m.onConnected(msg)

	case endpointSavedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Endpoint not saved: " + msg.err.Error())
		} else {
			m.statusbar.SetMessage("Saved endpoint " + msg.name)
		}
		return m, nil

	case schemaLoadedMsg:
		m.explorer.SetLoading(false)
		if msg.err != nil {
			m.err = msg.err
			m.statusbar.SetMessage("TAP_SCHEMA.schemas: " + msg.err.Error())
			return m, nil
		}
		m.explorer.SetTree(msg.tree)
		m.statusbar.SetMessage(fmt.Sprintf("%d schema(s)", len(msg.tree.Schemas)))
		return m, nil

	case tablesLoadedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Tables of " + msg.schema + ": " + msg.err.Error())
			return m, nil
		}
		m.explorer.SetTables(msg.schema, msg.tables)
		m.editor.SetTableNames(m.explorer.TableNames())
		return m, nil

	case columnsLoadedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Columns of " + msg.table + ": " + msg.err.Error())
			return m, nil
		}
		m.explorer.SetColumns(msg.schema, msg.table, msg.columns)
		return m, nil

	case queryExecutedMsg:
		m.results.SetLoading(false)
		if msg.err != nil {
			m.results.SetError(msg.err)
			m.statusbar.SetMessage("Query failed")
			return m, nil
		}
		m.results.SetResult(msg.result, msg.query)
		m.statusbar.SetMessage("")
		return m, nil

	case explorer.QuickQueryMsg:
		m.editor.SetQuery(msg.Query)
		return m.runQuery(msg.Query)

	case editor.ExecuteQueryMsg:
		return m.runQuery(msg.Query)

	case results.SetEditorQueryMsg:
		m.editor.SetQuery(msg.Query)
		m.setFocus(PaneEditor)
		m.statusbar.SetMessage("Filter query in editor, Ctrl+E to run")
		return m, nil

	case results.StatusNotifyMsg:
		m.statusbar.SetMessage(msg.Message)
		return m, nil
	}

	if m.mode != ModeMain {
		return m, nil
	}
	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key == "?" && m.mode == ModeMain && m.activePane != PaneEditor {
		m.showHelp = true
		return m, nil
	}

	switch m.mode {
	case ModeSelectEndpoint:
		return m.keySelectEndpoint(key)
	case ModeConnect:
		return m.keyConnect(msg)
	}
	return m.keyMain(msg)
}

func (m Model) onConnected(msg connectedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.statusbar.SetMessage("Cannot reach " + msg.endpoint + ": " + msg.err.Error())
		return m, nil
	}

	m.err = nil
	m.endpoint = msg.endpoint
	m.mode = ModeMain
	m.explorer.SetLoading(true)
	m.statusbar.SetConnected(true, m.service.ServiceName())
	m.setFocus(PaneExplorer)
	m.layout()

	if knownEndpoint(m.cfg, msg.endpoint) {
		return m, m.loadSchemaCmd()
	}
	return m, tea.Batch(m.loadSchemaCmd(), m.saveEndpointCmd(msg.endpoint))
}

func (m Model) runQuery(query string) (tea.Model, tea.Cmd) {
	m.results.SetLoading(true)
	m.statusbar.SetMessage("Running ADQL query...")
	return m, m.executeQueryCmd(query)
}

func (m Model) keySelectEndpoint(key string) (tea.Model, tea.Cmd) {
	saved := m.cfg.Endpoints

	switch key {
	case "up", "k":
		m.endpointCursor = max(0, m.endpointCursor-1)
	case "down", "j":
		m.endpointCursor = min(len(saved), m.endpointCursor+1)
	case "enter":
		if m.endpointCursor == len(saved) {
			return m.enterURL()
		}
		ep := saved[m.endpointCursor]
		m.statusbar.SetMessage("Connecting to " + ep.Name + "...")
		return m, m.connectCmd(ep.URL)
	case "n":
		return m.enterURL()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) enterURL() (tea.Model, tea.Cmd) {
	m.mode = ModeConnect
	m.urlInput.Focus()
	return m, nil
}

func (m Model) keyConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(m.urlInput.Value())
		if raw == "" {
			return m, nil
		}
		if _, err := config.ParseEndpoint(raw); err != nil {
			m.err = err
			return m, nil
		}
		m.statusbar.SetMessage("Connecting to " + raw + "...")
		return m, m.connectCmd(raw)
	case "esc":
		if len(m.cfg.Endpoints) > 0 {
			m.mode = ModeSelectEndpoint
			m.err = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m Model) keyMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		// q is text inside the editor
		if m.activePane != PaneEditor {
			return m, tea.Quit
		}
	case "tab":
		if m.activePane == PaneEditor && m.editor.WantsTab() {
			break
		}
		m.setFocus((m.activePane + 1) % paneCount)
		return m, nil
	case "shift+tab":
		m.setFocus((m.activePane + paneCount - 1) % paneCount)
		return m, nil
	}
	return m.forward(msg)
}

// forward hands msg to the focused pane.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activePane {
	case PaneExplorer:
		m.explorer, cmd = m.explorer.Update(msg)
	case PaneEditor:
		m.editor, cmd = m.editor.Update(msg)
	case PaneResults:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(pane Pane) {
	m.activePane = pane
	m.explorer.SetFocused(pane == PaneExplorer)
	m.editor.SetFocused(pane == PaneEditor)
	m.results.SetFocused(pane == PaneResults)
	m.statusbar.SetActivePane(pane.String())
}

// geometry is the outer size of each frame on the main screen.
type geometry struct {
	sideWidth     int
	mainWidth     int
	bodyHeight    int
	editorHeight  int
	resultsHeight int
}

func (m Model) geometry() geometry {
	g := geometry{bodyHeight: m.height - 1} // status bar
	g.sideWidth = min(35, max(22, m.width/4))
	g.mainWidth = m.width - g.sideWidth
	g.editorHeight = max(5, g.bodyHeight*2/5)
	g.resultsHeight = g.bodyHeight - g.editorHeight
	return g
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	g := m.geometry()
	m.explorer.SetSize(g.sideWidth, g.bodyHeight)
	m.editor.SetSize(g.mainWidth, g.editorHeight)
	m.results.SetSize(g.mainWidth, g.resultsHeight-1)
	m.statusbar.SetWidth(m.width)
}

func knownEndpoint(cfg *config.Config, url string) bool {
	for _, ep := range cfg.Endpoints {
		if ep.URL == url {
			return true
		}
	}
	return false
}

func (m Model) rowLimit() int {
	if m.cfg.Preferences.RowLimit > 0 {
		return m.cfg.Preferences.RowLimit
	}
	return explorer.DefaultRowLimit
}
