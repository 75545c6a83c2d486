package tapschema

import (
	"github.com/mclrc/vizier/internal/catalog"
	"github.com/mclrc/vizier/tap"
)

// Rows of the TAP_SCHEMA tables every TAP service publishes. Only the
// columns required by TAP 1.0 are read; optional ones are pointers since
// services leave them null.
type (
	schemaRow struct {
		SchemaName string `json:"schema_name"`
	}

	tableRow struct {
		TableName string `json:"table_name"`
	}

	columnRow struct {
		ColumnName  string  `json:"column_name"`
		Datatype    *string `json:"datatype"`
		Unit        *string `json:"unit"`
		UCD         *string `json:"ucd"`
		Description *string `json:"description"`
	}

	countRow struct {
		RowCount int64 `json:"row_count"`
	}
)

func pingQuery(c *tap.Client) tap.ReadyBuilder[schemaRow] {
	return tap.NewBuilder[schemaRow](c).
		Select("SELECT TOP 1 schema_name").
		From("FROM TAP_SCHEMA.schemas")
}

func schemasQuery(c *tap.Client) tap.ReadyBuilder[schemaRow] {
	return tap.NewBuilder[schemaRow](c).
		Select("SELECT schema_name").
		From("FROM TAP_SCHEMA.schemas")
}

func tablesQuery(c *tap.Client, schema string) tap.ReadyBuilder[tableRow] {
	return tap.NewBuilder[tableRow](c).
		Select("SELECT table_name").
		From("FROM TAP_SCHEMA.tables").
		Where("WHERE schema_name = " + catalog.QuoteLiteral(schema))
}

func columnsQuery(c *tap.Client, table string) tap.ReadyBuilder[columnRow] {
	return tap.NewBuilder[columnRow](c).
		Select("SELECT column_name, datatype, unit, ucd, description").
		From("FROM TAP_SCHEMA.columns").
		Where("WHERE table_name = " + catalog.QuoteLiteral(table))
}

func countQuery(c *tap.Client, table string) tap.ReadyBuilder[countRow] {
	return tap.NewBuilder[countRow](c).
		Select("SELECT COUNT(*) AS row_count").
		From("FROM " + catalog.QuoteIdent(table))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
