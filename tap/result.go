package tap

import "encoding/json"

// Row is a result row keyed by column name. It is also the untyped record
// type: Query[Row] returns every row as decoded JSON values, with numbers
// as json.Number.
type Row = map[string]any

// QueryResult holds the column metadata of a response and its rows decoded
// into T, in response order.
type QueryResult[T any] struct {
	meta []ColumnMetadata
	data []T
}

// Meta returns the column metadata in response order.
func (r *QueryResult[T]) Meta() []ColumnMetadata {
	return r.meta
}

// Data returns the decoded rows.
func (r *QueryResult[T]) Data() []T {
	return r.data
}

// Len returns the number of rows.
func (r *QueryResult[T]) Len() int {
	return len(r.data)
}

// IsEmpty reports whether the result has no rows.
func (r *QueryResult[T]) IsEmpty() bool {
	return len(r.data) == 0
}

// Columns returns the column names in response order.
func (r *QueryResult[T]) Columns() []string {
	names := make([]string, len(r.meta))
	for i, c := range r.meta {
		names[i] = c.Name
	}
	return names
}

// Column looks up the metadata of a column by name.
func (r *QueryResult[T]) Column(name string) (ColumnMetadata, bool) {
	for _, c := range r.meta {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnMetadata{}, false
}

// MarshalJSON encodes the result as {"metadata": [...], "data": [...]},
// with every row encoded the way T encodes.
func (r *QueryResult[T]) MarshalJSON() ([]byte, error) {
	data := r.data
	if data == nil {
		data = []T{}
	}
	return json.Marshal(struct {
		Metadata []ColumnMetadata `json:"metadata"`
		Data     []T              `json:"data"`
	}{r.meta, data})
}
