package catalog

import (
	"time"

	"github.com/mclrc/vizier/tap"
)

// Column describes a table column as published in TAP_SCHEMA.columns.
type Column struct {
	Name        string `json:"name"`
	DataType    string `json:"datatype"`
	Unit        string `json:"unit,omitempty"`
	UCD         string `json:"ucd,omitempty"`
	Description string `json:"description,omitempty"`
}

// QueryResult is a query result flattened to text cells for display.
// Nulls marks the cells that were JSON null, since a string cell may read
// "null" too.
type QueryResult struct {
	Meta     []tap.ColumnMetadata
	Columns  []string
	Rows     [][]string
	Nulls    [][]bool
	RowCount int
	Duration time.Duration
}

// IsNull reports whether the cell at row, col was a JSON null.
func (r *QueryResult) IsNull(row, col int) bool {
	if row < 0 || row >= len(r.Nulls) || col < 0 || col >= len(r.Nulls[row]) {
		return false
	}
	return r.Nulls[row][col]
}
