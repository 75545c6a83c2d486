package results

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/tap"
)

func str(s string) *string { return &s }

func sample() *catalog.QueryResult {
	return &catalog.QueryResult{
		Meta: []tap.ColumnMetadata{
			{Name: "HIP", UCD: "meta.id", Datatype: str("int")},
			{Name: "Vmag", UCD: "phot.mag", Datatype: str("double"), Unit: str("mag")},
			{Name: "SpType", UCD: "src.spType", Datatype: str("char")},
		},
		Columns: []string{"HIP", "Vmag", "SpType"},
		Rows: [][]string{
			{"32349", "-1.44", "A0m..."},
			{"30438", "-0.62", "null"},
		},
		Nulls: [][]bool{
			{false, false, false},
			{false, false, true},
		},
		RowCount: 2,
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T) Model {
	t.Helper()
	m := New()
	m.SetSize(120, 20)
	m.SetFocused(true)
	m.SetResult(sample(), `SELECT TOP 10 HIP, Vmag, SpType FROM "I/239/hip_main"`)
	return m
}

func stubClipboard(t *testing.T) *string {
	t.Helper()
	var got string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		got = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })
	return &got
}

func TestHeadersCarryUnits(t *testing.T) {
	m := loaded(t)
	assert.Equal(t, []string{"HIP", "Vmag [mag]", "SpType"}, m.headers)
	assert.Equal(t, []int{5, 10, 6}, m.colWidths)
}

func TestCursorStaysInBounds(t *testing.T) {
	m := loaded(t)

	for range 5 {
		m, _ = m.Update(key("down"))
		m, _ = m.Update(key("right"))
	}
	assert.Equal(t, 1, m.cursorY)
	assert.Equal(t, 2, m.cursorX)

	m, _ = m.Update(key("g"))
	m, _ = m.Update(key("0"))
	assert.Equal(t, 0, m.cursorY)
	assert.Equal(t, 0, m.cursorX)
}

func TestHorizontalScrollFollowsCursor(t *testing.T) {
	m := loaded(t)
	m.SetSize(16, 20)

	m, _ = m.Update(key("$"))
	assert.Equal(t, 2, m.cursorX)
	assert.Equal(t, 2, m.lastVisibleColumn())
	assert.Positive(t, m.colOffset)
}

func TestCopyCell(t *testing.T) {
	got := stubClipboard(t)
	m := loaded(t)
	m, _ = m.Update(key("right"))

	_, cmd := m.Update(key("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, StatusNotifyMsg{Message: "Copied: -1.44"}, cmd())
	assert.Equal(t, "-1.44", *got)
}

func TestCopyRowJSONKeepsOrderAndNulls(t *testing.T) {
	got := stubClipboard(t)
	m := loaded(t)
	m, _ = m.Update(key("down"))

	_, cmd := m.Update(key("Y"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, `{"HIP": "30438", "Vmag": "-0.62", "SpType": null}`, *got)
}

func TestCopyFailureIsReported(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { writeClipboard = orig })

	m := loaded(t)
	_, cmd := m.Update(key("t"))
	assert.Equal(t, StatusNotifyMsg{Message: "Copy failed: no clipboard"}, cmd())
}

func TestFilterByValue(t *testing.T) {
	m := loaded(t)
	m.SetRowLimit(50)

	_, cmd := m.Update(key("f"))
	require.NotNil(t, cmd)
	assert.Equal(t, SetEditorQueryMsg{Query: `SELECT TOP 50 * FROM "I/239/hip_main" WHERE HIP = 32349`}, cmd())

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("$"))
	_, cmd = m.Update(key("f"))
	assert.Equal(t, SetEditorQueryMsg{Query: `SELECT TOP 50 * FROM "I/239/hip_main" WHERE SpType IS NULL`}, cmd())
}

func TestFilterQuery(t *testing.T) {
	assert.Equal(t,
		`SELECT TOP 5 * FROM t WHERE "B-V" = 0.5`,
		FilterQuery("t", "B-V", "float", str("0.5"), 5))
	assert.Equal(t,
		`SELECT TOP 5 * FROM t WHERE Name = 'O''Neil'`,
		FilterQuery("t", "Name", "char", str("O'Neil"), 5))
	assert.Equal(t,
		`SELECT TOP 5 * FROM t WHERE Name = 'null'`,
		FilterQuery("t", "Name", "char", str("null"), 5))
	assert.Equal(t,
		`SELECT TOP 5 * FROM t WHERE Name IS NULL`,
		FilterQuery("t", "Name", "char", nil, 5))
	assert.Equal(t,
		`SELECT TOP 5 * FROM t WHERE source_id = 4295806720123456789`,
		FilterQuery("t", "source_id", "long", str("4295806720123456789"), 5))
}

func TestFilterByValueOnNullText(t *testing.T) {
	m := New()
	m.SetSize(80, 20)
	m.SetFocused(true)
	m.SetRowLimit(10)
	m.SetResult(&catalog.QueryResult{
		Meta:     []tap.ColumnMetadata{{Name: "Name", UCD: "meta.id", Datatype: str("char")}},
		Columns:  []string{"Name"},
		Rows:     [][]string{{"null"}},
		Nulls:    [][]bool{{false}},
		RowCount: 1,
	}, `SELECT Name FROM "B/mk/mktypes"`)

	_, cmd := m.Update(key("f"))
	require.NotNil(t, cmd)
	assert.Equal(t, SetEditorQueryMsg{Query: `SELECT TOP 10 * FROM "B/mk/mktypes" WHERE Name = 'null'`}, cmd())
}

func TestExtractTableName(t *testing.T) {
	assert.Equal(t, `"I/239/hip_main"`, extractTableName(`select * from "I/239/hip_main" where x = 1`))
	assert.Equal(t, "TAP_SCHEMA.tables", extractTableName("SELECT * FROM TAP_SCHEMA.tables;"))
	assert.Equal(t, "", extractTableName("SELECT 1"))
}

func TestExportJSONAndCSV(t *testing.T) {
	dir := t.TempDir()
	m := loaded(t)
	m.SetExportDir(dir)

	_, cmd := m.Update(key("e"))
	msg := cmd().(StatusNotifyMsg)
	assert.Contains(t, msg.Message, "Exported 2 rows")

	_, cmd = m.Update(key("E"))
	cmd()

	jsonFiles, err := filepath.Glob(filepath.Join(dir, "vizier_export_*.json"))
	require.NoError(t, err)
	require.Len(t, jsonFiles, 1)

	b, err := os.ReadFile(jsonFiles[0])
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(b, &rows))
	require.Len(t, rows, 2)
	assert.Nil(t, rows[1]["SpType"])

	csvFiles, err := filepath.Glob(filepath.Join(dir, "vizier_export_*.csv"))
	require.NoError(t, err)
	require.Len(t, csvFiles, 1)
	b, err = os.ReadFile(csvFiles[0])
	require.NoError(t, err)
	assert.Equal(t, "HIP,Vmag,SpType\n32349,-1.44,A0m...\n30438,-0.62,null\n", string(b))
}

func TestViewStates(t *testing.T) {
	m := New()
	assert.Contains(t, m.View(), "Execute a query")

	m.SetLoading(true)
	assert.Contains(t, m.View(), "Executing query")

	m.SetError(errors.New("non-success status code: 400 Bad Request"))
	assert.Contains(t, m.View(), "400 Bad Request")

	m = loaded(t)
	view := m.View()
	assert.Contains(t, view, "Vmag [mag]")
	assert.Contains(t, view, "2 row(s)")
}
