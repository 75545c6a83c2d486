package explorer

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mclrc/vizier/internal/app"
	"github.com/mclrc/vizier/internal/catalog"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLoaded(t *testing.T) Model {
	t.Helper()
	m := New()
	m.SetFocused(true)
	m.SetTree(&app.SchemaTree{
		Service: "tapvizier.u-strasbg.fr",
		Schemas: []app.SchemaNode{{Name: "I/239"}, {Name: "TAP_SCHEMA"}},
	})
	return m
}

func TestSelectQuery(t *testing.T) {
	assert.Equal(t, `SELECT TOP 10 * FROM "I/239/hip_main" `, SelectQuery("I/239/hip_main", 10))
	assert.Equal(t, `SELECT COUNT(*) AS row_count FROM TAP_SCHEMA.tables `, CountQuery("TAP_SCHEMA.tables"))
}

func TestSetTreeStartsCollapsed(t *testing.T) {
	m := newLoaded(t)

	require.Len(t, m.items, 3)
	assert.Equal(t, NodeService, m.items[0].node.Kind)
	assert.Equal(t, "I/239", m.items[1].node.Name)
	assert.False(t, m.items[1].node.Loaded)
}

func TestExpandSchemaRequestsTables(t *testing.T) {
	m := newLoaded(t)

	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)

	schema, ok := IsRequestTablesMsg(cmd())
	require.True(t, ok)
	assert.Equal(t, "I/239", schema)

	m.SetTables("I/239", []string{"I/239/hip_main", "I/239/tyc_main"})
	assert.Equal(t, []string{"I/239/hip_main", "I/239/tyc_main"}, m.TableNames())
	assert.Len(t, m.items, 5)

	// Collapsing and expanding again does not refetch.
	m, _ = m.Update(key("enter"))
	m, cmd = m.Update(key("enter"))
	assert.Nil(t, cmd)
}

func TestExpandTableRequestsColumns(t *testing.T) {
	m := newLoaded(t)
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	m.SetTables("I/239", []string{"I/239/hip_main"})

	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)

	schema, table, ok := IsRequestColumnsMsg(cmd())
	require.True(t, ok)
	assert.Equal(t, "I/239", schema)
	assert.Equal(t, "I/239/hip_main", table)

	m.SetColumns(schema, table, []catalog.Column{
		{Name: "HIP", DataType: "int"},
		{Name: "RAhms", DataType: "char", Unit: "h:m:s"},
	})
	require.Len(t, m.items, 6)
	assert.Equal(t, "RAhms", m.items[4].node.Name)
	assert.Equal(t, "char [h:m:s]", columnDetail(m.items[4].node))
}

func TestQuickQueries(t *testing.T) {
	m := newLoaded(t)
	m.SetRowLimit(5)
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	m.SetTables("I/239", []string{"I/239/hip_main"})
	m, _ = m.Update(key("down"))

	_, cmd := m.Update(key("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, QuickQueryMsg{Query: `SELECT TOP 5 * FROM "I/239/hip_main"`}, cmd())

	_, cmd = m.Update(key("d"))
	require.NotNil(t, cmd)
	assert.Equal(t, QuickQueryMsg{Query: `SELECT COUNT(*) AS row_count FROM "I/239/hip_main"`}, cmd())
}

func TestQuickQueryNeedsTable(t *testing.T) {
	m := newLoaded(t)
	_, cmd := m.Update(key("s"))
	assert.Nil(t, cmd)
}

func TestLeftMovesToParent(t *testing.T) {
	m := newLoaded(t)
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	m.SetTables("I/239", []string{"I/239/hip_main"})
	m, _ = m.Update(key("down"))

	m, _ = m.Update(key("left"))
	assert.Equal(t, 1, m.cursor)

	m, _ = m.Update(key("left"))
	assert.False(t, m.items[1].node.Expanded)
}

func TestUnfocusedIgnoresKeys(t *testing.T) {
	m := newLoaded(t)
	m.SetFocused(false)
	m, _ = m.Update(key("down"))
	assert.Equal(t, 0, m.cursor)
}
