package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"select top 5 * from t", "SELECT TOP 5 * FROM t"},
		{"select ra, dec from \"I/239/hip_main\" where vmag < 2", "SELECT ra, dec FROM \"I/239/hip_main\" WHERE vmag < 2"},
		{"select * from t where name = 'select from'", "SELECT * FROM t WHERE name = 'select from'"},
		{"select log10(flux) from t", "SELECT LOG10(flux) FROM t"},
		{"where 1=contains(point('ICRS', ra, dec), circle('ICRS', 10, 20, 1))", "WHERE 1=CONTAINS(POINT('ICRS', ra, dec), CIRCLE('ICRS', 10, 20, 1))"},
		{"selection", "selection"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatKeywords(tt.in), tt.in)
	}
}

func TestMatchTables(t *testing.T) {
	names := []string{"I/239/hip_main", "I/239/tyc_main", "J/A+A/600/A1/table1", "TAP_SCHEMA.tables"}

	assert.Equal(t, []string{"I/239/hip_main", "I/239/tyc_main"}, matchTables(names, "i/239"))
	assert.Equal(t, []string{"I/239/hip_main"}, matchTables(names, `"I/239/h`))
	assert.Equal(t, []string{"J/A+A/600/A1/table1"}, matchTables(names, "J/A+A"))
	assert.Empty(t, matchTables(names, "II/"))
}

func TestLastWord(t *testing.T) {
	assert.Equal(t, "I/239/h", lastWord("SELECT * FROM I/239/h"))
	assert.Equal(t, `"I/239/hip_main"`, lastWord(`SELECT * FROM "I/239/hip_main"`))
	assert.Equal(t, "TAP_SCHEMA.tab", lastWord("SELECT * FROM TAP_SCHEMA.tab  "))
	assert.Equal(t, "", lastWord("   "))
}

func newFocused(tables ...string) Model {
	m := New()
	m.SetFocused(true)
	m.SetTableNames(tables)
	return m
}

func TestTabCompletesAndCyclesTables(t *testing.T) {
	m := newFocused("I/239/hip_main", "I/239/tyc_main")
	m.SetQuery("SELECT * FROM I/239")
	assert.True(t, m.WantsTab())

	tab := tea.KeyMsg{Type: tea.KeyTab}
	m, _ = m.Update(tab)
	assert.True(t, m.CompletionActive())
	assert.Equal(t, `SELECT * FROM "I/239/hip_main"`, m.Value())

	m, _ = m.Update(tab)
	assert.Equal(t, `SELECT * FROM "I/239/tyc_main"`, m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.CompletionActive())
}

func TestTabOutsideFromDoesNotComplete(t *testing.T) {
	m := newFocused("I/239/hip_main")
	m.SetQuery("SELECT I/2")
	assert.False(t, m.WantsTab())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.CompletionActive())
}

func TestExecuteSendsTrimmedQuery(t *testing.T) {
	m := newFocused()
	m.SetQuery("  SELECT TOP 1 * FROM t \n")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	require.NotNil(t, cmd)
	assert.Equal(t, ExecuteQueryMsg{Query: "SELECT TOP 1 * FROM t"}, cmd())
}

func TestExecuteIgnoresEmptyEditor(t *testing.T) {
	m := newFocused()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Nil(t, cmd)
}

func TestTypingEndsCompletion(t *testing.T) {
	m := newFocused("I/239/hip_main", "I/239/tyc_main")
	m.SetQuery("SELECT * FROM I/2")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, m.CompletionActive())
	assert.Contains(t, m.View(), "I/239/tyc_main")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})
	assert.False(t, m.CompletionActive())
	assert.Equal(t, `SELECT * FROM "I/239/hip_main" `, m.Value())
}
