package explorer

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mclrc/vizier/internal/app"
	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/internal/tui/theme"
	"github.com/mclrc/vizier/tap"
)

// DefaultRowLimit caps quick SELECT queries when no limit is configured.
const DefaultRowLimit = 100

// NodeKind identifies the type of a tree node.
type NodeKind int

const (
	NodeService NodeKind = iota
	NodeSchema
	NodeTable
	NodeColumn
)

// TreeNode represents a single node in the catalogue tree.
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Children []*TreeNode
	Expanded bool
	Loaded   bool // whether children have been fetched

	Schema   string // parent schema (tables, columns)
	Table    string // parent table (columns)
	DataType string // column datatype
	Unit     string // column unit
}

// flatItem is a visible item in the flattened tree view.
type flatItem struct {
	node  *TreeNode
	depth int
}

// Model is the explorer (TAP_SCHEMA tree) component.
type Model struct {
	tree     *TreeNode
	items    []flatItem
	cursor   int
	width    int
	height   int
	focused  bool
	loading  bool
	rowLimit int
}

// New creates a new explorer model.
func New() Model {
	return Model{rowLimit: DefaultRowLimit}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the explorer has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetRowLimit sets the TOP limit of quick SELECT queries.
func (m *Model) SetRowLimit(n int) {
	if n <= 0 {
		n = DefaultRowLimit
	}
	m.rowLimit = n
}

// SetTree populates the explorer with the schemas of a service. Tables
// and columns are requested when their parent is expanded.
func (m *Model) SetTree(tree *app.SchemaTree) {
	root := &TreeNode{
		Kind:     NodeService,
		Name:     tree.Service,
		Expanded: true,
		Loaded:   true,
	}

	for _, s := range tree.Schemas {
		schemaNode := &TreeNode{Kind: NodeSchema, Name: s.Name}
		if len(s.Tables) > 0 {
			schemaNode.Children = tableNodes(s.Name, s.Tables)
			schemaNode.Loaded = true
		}
		root.Children = append(root.Children, schemaNode)
	}

	m.tree = root
	m.cursor = 0
	m.flatten()
	m.loading = false
}

// SetTables adds table nodes to a schema node.
func (m *Model) SetTables(schema string, tables []string) {
	if node := m.findSchema(schema); node != nil {
		node.Children = tableNodes(schema, tables)
		node.Loaded = true
		m.flatten()
	}
}

// SetColumns adds column nodes to a table node.
func (m *Model) SetColumns(schema, table string, columns []catalog.Column) {
	node := m.findTable(schema, table)
	if node == nil {
		return
	}
	node.Children = nil
	for _, col := range columns {
		node.Children = append(node.Children, &TreeNode{
			Kind:     NodeColumn,
			Name:     col.Name,
			Schema:   schema,
			Table:    table,
			DataType: col.DataType,
			Unit:     col.Unit,
		})
	}
	node.Loaded = true
	m.flatten()
}

// TableNames returns the names of every loaded table, for completion.
func (m Model) TableNames() []string {
	if m.tree == nil {
		return nil
	}
	var names []string
	for _, s := range m.tree.Children {
		for _, t := range s.Children {
			names = append(names, t.Name)
		}
	}
	return names
}

func tableNodes(schema string, tables []string) []*TreeNode {
	nodes := make([]*TreeNode, 0, len(tables))
	for _, t := range tables {
		nodes = append(nodes, &TreeNode{Kind: NodeTable, Name: t, Schema: schema})
	}
	return nodes
}

func (m *Model) findSchema(schema string) *TreeNode {
	if m.tree == nil {
		return nil
	}
	for _, s := range m.tree.Children {
		if s.Name == schema {
			return s
		}
	}
	return nil
}

func (m *Model) findTable(schema, table string) *TreeNode {
	s := m.findSchema(schema)
	if s == nil {
		return nil
	}
	for _, t := range s.Children {
		if t.Name == table {
			return t
		}
	}
	return nil
}

// SelectedTable returns the schema and table name of the currently selected table node, if any.
func (m Model) SelectedTable() (schema, table string, ok bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return "", "", false
	}
	node := m.items[m.cursor].node
	switch node.Kind {
	case NodeTable:
		return node.Schema, node.Name, true
	case NodeColumn:
		return node.Schema, node.Table, true
	}
	return "", "", false
}

// flatten rebuilds the flat item list from the tree.
func (m *Model) flatten() {
	m.items = nil
	if m.tree != nil {
		m.flattenNode(m.tree, 0)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m *Model) flattenNode(node *TreeNode, depth int) {
	m.items = append(m.items, flatItem{node: node, depth: depth})
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child, depth+1)
		}
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the explorer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = max(0, len(m.items)-1)
		case "enter", "right", "l":
			return m, m.toggleExpand()
		case "left", "h":
			m.collapse()
		case "s":
			if _, table, ok := m.SelectedTable(); ok {
				return m, quickQuery(SelectQuery(table, m.rowLimit))
			}
		case "d":
			if _, table, ok := m.SelectedTable(); ok {
				return m, quickQuery(CountQuery(table))
			}
		}
	}

	return m, nil
}

func (m *Model) toggleExpand() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	node := m.items[m.cursor].node

	// Columns have no children
	if node.Kind == NodeColumn {
		return nil
	}

	if node.Expanded {
		node.Expanded = false
		m.flatten()
		return nil
	}

	node.Expanded = true
	m.flatten()

	if node.Loaded {
		return nil
	}
	switch node.Kind {
	case NodeSchema:
		msg := requestTablesMsg{Schema: node.Name}
		return func() tea.Msg { return msg }
	case NodeTable:
		msg := requestColumnsMsg{Schema: node.Schema, Table: node.Name}
		return func() tea.Msg { return msg }
	}
	return nil
}

// collapse folds the selected node, or moves to and folds its parent.
func (m *Model) collapse() {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return
	}
	item := m.items[m.cursor]

	if item.node.Expanded && item.node.Kind != NodeService {
		item.node.Expanded = false
		m.flatten()
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.items[i].depth < item.depth {
			m.cursor = i
			return
		}
	}
}

// SelectQuery builds the quick "first rows" query for a table.
func SelectQuery(table string, limit int) string {
	return tap.NewBuilder[tap.Row](nil).
		Select("SELECT TOP " + strconv.Itoa(limit) + " *").
		From("FROM " + catalog.QuoteIdent(table)).
		Build()
}

// CountQuery builds the row count query for a table.
func CountQuery(table string) string {
	return tap.NewBuilder[tap.Row](nil).
		Select("SELECT COUNT(*) AS row_count").
		From("FROM " + catalog.QuoteIdent(table)).
		Build()
}

// QuickQueryMsg asks the app to load a query into the editor and run it.
type QuickQueryMsg struct {
	Query string
}

func quickQuery(q string) tea.Cmd {
	return func() tea.Msg { return QuickQueryMsg{Query: strings.TrimSpace(q)} }
}

// requestTablesMsg is sent when a schema is expanded for the first time.
type requestTablesMsg struct {
	Schema string
}

// requestColumnsMsg is sent when a table is expanded and needs column data.
type requestColumnsMsg struct {
	Schema string
	Table  string
}

// IsRequestTablesMsg reports whether msg asks for the tables of a schema.
func IsRequestTablesMsg(msg tea.Msg) (schema string, ok bool) {
	if m, ok := msg.(requestTablesMsg); ok {
		return m.Schema, true
	}
	return "", false
}

// IsRequestColumnsMsg reports whether msg asks for the columns of a table.
func IsRequestColumnsMsg(msg tea.Msg) (schema, table string, ok bool) {
	if m, ok := msg.(requestColumnsMsg); ok {
		return m.Schema, m.Table, true
	}
	return "", "", false
}

// View renders the explorer.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	title := titleStyle.Render("Catalogues")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}

	if m.tree == nil {
		return title + "\n" + theme.StyleMuted.Render("  No service")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	visibleHeight := max(1, m.height-2)

	// Scroll offset to keep cursor visible
	scrollOffset := 0
	if m.cursor >= visibleHeight {
		scrollOffset = m.cursor - visibleHeight + 1
	}

	for i := scrollOffset; i < len(m.items) && i < scrollOffset+visibleHeight; i++ {
		b.WriteString(m.renderNode(m.items[i], i == m.cursor))
		if i < scrollOffset+visibleHeight-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderNode(item flatItem, selected bool) string {
	node := item.node
	indent := strings.Repeat("  ", item.depth)

	icon := "▶ "
	switch {
	case node.Kind == NodeColumn:
		icon = "  "
	case node.Expanded:
		icon = "▼ "
	}

	line := indent + icon + node.Name
	detail := ""
	if node.Kind == NodeColumn {
		detail = columnDetail(node)
	}

	plain := line
	if detail != "" {
		plain += " " + detail
	}
	switch {
	case m.width > 4 && lipgloss.Width(plain) > m.width-2:
		line = truncate(plain, m.width-4) + ".."
	case detail != "":
		line += " " + theme.StyleMuted.Render(detail)
	}

	if selected {
		return lipgloss.NewStyle().
			Foreground(theme.ColorHighlight).
			Bold(true).
			Render(line)
	}

	return line
}

func columnDetail(node *TreeNode) string {
	switch {
	case node.DataType != "" && node.Unit != "":
		return node.DataType + " [" + node.Unit + "]"
	case node.Unit != "":
		return "[" + node.Unit + "]"
	default:
		return node.DataType
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
