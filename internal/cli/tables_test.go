package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogueBodies() map[string]string {
	return map[string]string{
		"SELECT schema_name FROM TAP_SCHEMA.schemas": `{
			"metadata": [{"name": "schema_name", "ucd": ""}],
			"data": [["TAP_SCHEMA"], ["I/239"]]
		}`,
		"SELECT table_name FROM TAP_SCHEMA.tables WHERE schema_name = 'I/239'": `{
			"metadata": [{"name": "table_name", "ucd": ""}],
			"data": [["I/239/tyc_main"], ["I/239/hip_main"]]
		}`,
		"SELECT column_name, datatype, unit, ucd, description FROM TAP_SCHEMA.columns WHERE table_name = 'I/239/hip_main'": `{
			"metadata": [
				{"name": "column_name", "ucd": ""},
				{"name": "datatype", "ucd": ""},
				{"name": "unit", "ucd": ""},
				{"name": "ucd", "ucd": ""},
				{"name": "description", "ucd": ""}
			],
			"data": [
				["HIP", "INTEGER", null, "meta.id;meta.main", "Identifier (HIP number)"],
				["Vmag", "DOUBLE", "mag", "phot.mag;em.opt.V", "Magnitude in Johnson V"]
			]
		}`,
	}
}

func TestTablesListsSchemas(t *testing.T) {
	_, endpoint := newFakeTAP(t, catalogueBodies())

	out, _, err := run(t, "--endpoint", endpoint, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "schema")
	assert.Contains(t, out, "I/239")
	assert.Contains(t, out, "TAP_SCHEMA")
}

func TestTablesOfSchemaJSON(t *testing.T) {
	_, endpoint := newFakeTAP(t, catalogueBodies())

	out, _, err := run(t, "--endpoint", endpoint, "--format", "json", "tables", "I/239")
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"I/239/hip_main", "I/239/tyc_main"}, names)
}

func TestTablesConnectFailure(t *testing.T) {
	_, _, err := run(t, "--endpoint", "http://127.0.0.1:1/tap/sync", "--timeout", "2s", "tables")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestColumnsText(t *testing.T) {
	_, endpoint := newFakeTAP(t, catalogueBodies())

	out, _, err := run(t, "--endpoint", endpoint, "columns", "I/239/hip_main")
	require.NoError(t, err)
	assert.Contains(t, out, "datatype")
	assert.Contains(t, out, "Vmag")
	assert.Contains(t, out, "phot.mag;em.opt.V")
}

func TestColumnsJSON(t *testing.T) {
	_, endpoint := newFakeTAP(t, catalogueBodies())

	out, _, err := run(t, "--endpoint", endpoint, "--format", "json", "columns", "I/239/hip_main")
	require.NoError(t, err)

	var cols []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &cols))
	require.Len(t, cols, 2)
	assert.Equal(t, "HIP", cols[0]["name"])
	assert.NotContains(t, cols[0], "unit")
	assert.Equal(t, "mag", cols[1]["unit"])
}

func TestColumnsRequiresTable(t *testing.T) {
	_, _, err := run(t, "columns")
	require.Error(t, err)
}
