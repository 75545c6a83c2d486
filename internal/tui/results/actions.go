package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/tap"
)

// SetEditorQueryMsg asks the app to load Query into the editor pane.
type SetEditorQueryMsg struct {
	Query string
}

// StatusNotifyMsg carries a one-line status for the status bar.
type StatusNotifyMsg struct {
	Message string
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func notify(msg string) tea.Cmd {
	return func() tea.Msg { return StatusNotifyMsg{Message: msg} }
}

func (m Model) currentRow() ([]string, bool) {
	if m.result == nil || m.cursorY < 0 || m.cursorY >= len(m.result.Rows) {
		return nil, false
	}
	return m.result.Rows[m.cursorY], true
}

// cellValue returns the text of the selected cell and whether it was null.
func (m Model) cellValue() (text string, null, ok bool) {
	row, ok := m.currentRow()
	if !ok || m.cursorX < 0 || m.cursorX >= len(row) {
		return "", false, false
	}
	return row[m.cursorX], m.result.IsNull(m.cursorY, m.cursorX), true
}

// --- Copy ---

func copyCmd(text, done string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			return StatusNotifyMsg{Message: "Copy failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: done}
	}
}

func (m Model) copyCellCmd() tea.Cmd {
	val, _, ok := m.cellValue()
	if !ok {
		return notify("Nothing to copy")
	}
	return copyCmd(val, "Copied: "+truncateStatus(val, 40))
}

func (m Model) copyRowJSONCmd() tea.Cmd {
	if _, ok := m.currentRow(); !ok {
		return notify("No row to copy")
	}
	return copyCmd(rowToJSON(m.result, m.cursorY), "Copied row as JSON")
}

func (m Model) copyRowCSVCmd() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return notify("No row to copy")
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(m.result.Columns)
	_ = w.Write(row)
	w.Flush()
	return copyCmd(b.String(), "Copied row as CSV")
}

func (m Model) copyRowTextCmd() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return notify("No row to copy")
	}
	return copyCmd(strings.Join(row, "\t"), "Copied row as text")
}

// --- Filter ---

// filterByValueCmd puts a query selecting the rows whose current column
// equals the selected cell into the editor.
func (m Model) filterByValueCmd() tea.Cmd {
	val, null, ok := m.cellValue()
	table := extractTableName(m.lastQuery)
	if !ok || table == "" {
		return notify("Cannot filter: no cell selected")
	}

	col := m.result.Columns[m.cursorX]
	var meta tap.ColumnMetadata
	if m.cursorX < len(m.result.Meta) {
		meta = m.result.Meta[m.cursorX]
	}

	var value *string
	if !null {
		value = &val
	}
	query := FilterQuery(table, col, meta.DatatypeString(), value, m.rowLimit)
	return func() tea.Msg { return SetEditorQueryMsg{Query: query} }
}

// FilterQuery builds "SELECT TOP n * FROM table WHERE col = value". Numeric
// datatypes compare against the bare value, everything else against a
// string literal. A nil value becomes IS NULL.
func FilterQuery(table, column, datatype string, value *string, limit int) string {
	ident := catalog.QuoteIdent(column)

	var condition string
	switch {
	case value == nil:
		condition = ident + " IS NULL"
	case isNumericType(datatype):
		condition = ident + " = " + *value
	default:
		condition = ident + " = " + catalog.QuoteLiteral(*value)
	}

	return tap.NewBuilder[tap.Row](nil).
		Select(fmt.Sprintf("SELECT TOP %d *", limit)).
		From("FROM " + table).
		Where("WHERE " + condition).
		Build()
}

func isNumericType(datatype string) bool {
	switch strings.ToLower(datatype) {
	case "short", "int", "long", "float", "double", "unsignedbyte",
		"smallint", "integer", "bigint", "real":
		return true
	}
	return false
}

// --- Export ---

func (m Model) exportJSONCmd() tea.Cmd {
	result := m.result
	if result == nil {
		return notify("Nothing to export")
	}
	dir := m.exportDir
	return func() tea.Msg {
		filename := exportName(dir, "json")

		var b strings.Builder
		b.WriteString("[\n")
		for ri := range result.Rows {
			if ri > 0 {
				b.WriteString(",\n")
			}
			b.WriteString("  ")
			b.WriteString(rowToJSON(result, ri))
		}
		b.WriteString("\n]\n")

		if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(result.Rows), filename)}
	}
}

func (m Model) exportCSVCmd() tea.Cmd {
	result := m.result
	if result == nil {
		return notify("Nothing to export")
	}
	dir := m.exportDir
	return func() tea.Msg {
		filename := exportName(dir, "csv")

		f, err := os.Create(filename)
		if err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		defer f.Close()

		w := csv.NewWriter(f)
		_ = w.Write(result.Columns)
		for _, row := range result.Rows {
			_ = w.Write(row)
		}
		w.Flush()

		if err := w.Error(); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(result.Rows), filename)}
	}
}

func exportName(dir, ext string) string {
	ts := time.Now().Format("20060102_150405.000")
	return filepath.Join(dir, fmt.Sprintf("vizier_export_%s.%s", strings.ReplaceAll(ts, ".", "_"), ext))
}

// --- Helpers ---

// extractTableName returns the token following the first FROM, keeping
// delimited identifiers whole.
func extractTableName(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		if strings.EqualFold(tok, "FROM") && i+1 < len(tokens) {
			name := strings.TrimRight(tokens[i+1], ";,)")
			if name != "" {
				return name
			}
		}
	}
	return ""
}

// rowToJSON preserves column order unlike map marshaling
func rowToJSON(result *catalog.QueryResult, ri int) string {
	row := result.Rows[ri]
	var b strings.Builder
	b.WriteString("{")
	for i, col := range result.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteString(": ")
		if i >= len(row) || result.IsNull(ri, i) {
			b.WriteString("null")
			continue
		}
		val, _ := json.Marshal(row[i])
		b.Write(val)
	}
	b.WriteString("}")
	return b.String()
}

func truncateStatus(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
