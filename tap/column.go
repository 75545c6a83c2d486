package tap

// ColumnMetadata describes one column of a TAP result.
type ColumnMetadata struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ArraySize   *string `json:"arraysize,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	UCD         string  `json:"ucd"`
	Datatype    *string `json:"datatype,omitempty"`
}

// IsArray reports whether the column holds fixed or variable length arrays.
func (c ColumnMetadata) IsArray() bool {
	return c.ArraySize != nil
}

// UnitString returns the unit, or "" when the column has none.
func (c ColumnMetadata) UnitString() string {
	if c.Unit == nil {
		return ""
	}
	return *c.Unit
}

// DatatypeString returns the declared datatype, or "" when absent.
func (c ColumnMetadata) DatatypeString() string {
	if c.Datatype == nil {
		return ""
	}
	return *c.Datatype
}

// rawColumn mirrors a metadata entry with every field optional so that
// missing required fields can be told apart from empty ones.
type rawColumn struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ArraySize   *string `json:"arraysize"`
	Unit        *string `json:"unit"`
	UCD         *string `json:"ucd"`
	Datatype    *string `json:"datatype"`
}

func (r rawColumn) column() ColumnMetadata {
	col := ColumnMetadata{
		Name:      *r.Name,
		ArraySize: r.ArraySize,
		Unit:      r.Unit,
		UCD:       *r.UCD,
		Datatype:  r.Datatype,
	}
	if r.Description != nil {
		col.Description = *r.Description
	}
	return col
}
