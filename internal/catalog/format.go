package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mclrc/vizier/tap"
)

// NullText is how a JSON null is shown in a cell.
const NullText = "null"

// Tabulate lays out an untyped result as text cells, one column per
// metadata entry and in metadata order.
func Tabulate(res *tap.QueryResult[tap.Row], took time.Duration) *QueryResult {
	columns := res.Columns()
	rows := make([][]string, 0, res.Len())
	nulls := make([][]bool, 0, res.Len())
	for _, rec := range res.Data() {
		row := make([]string, len(columns))
		null := make([]bool, len(columns))
		for i, name := range columns {
			row[i] = FormatValue(rec[name])
			null[i] = rec[name] == nil
		}
		rows = append(rows, row)
		nulls = append(nulls, null)
	}
	return &QueryResult{
		Meta:     res.Meta(),
		Columns:  columns,
		Rows:     rows,
		Nulls:    nulls,
		RowCount: len(rows),
		Duration: took,
	}
}

// FormatValue renders a decoded JSON value as cell text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return NullText
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any, map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// QuoteIdent returns name as an ADQL identifier, delimiting it with double
// quotes when it is not a plain (optionally dotted) regular identifier.
// VizieR table names such as I/261/fonac always need quoting. Names that
// are already delimited are returned unchanged.
func QuoteIdent(name string) string {
	if isRegularIdent(name) || isDelimited(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral returns s as an ADQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isDelimited(name string) bool {
	if len(name) < 2 || name[0] != '"' || name[len(name)-1] != '"' {
		return false
	}
	inner := strings.ReplaceAll(name[1:len(name)-1], `""`, "")
	return !strings.Contains(inner, `"`)
}

func isRegularIdent(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i, c := range part {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			case c >= '0' && c <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}
