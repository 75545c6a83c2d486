package tap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// Parse reshapes a columnar TAP JSON document into rows of T.
//
// The document must look like {"metadata": [...], "data": [[...], ...]}.
// Both sections are validated before any row is touched; a shape problem
// is reported as a *SchemaError. Every row is then zipped with the column
// names by position and decoded into T. The first row that fails to decode
// aborts the call with a *DecodeError and nothing else is returned.
//
// Numbers keep their exact text until decoding. Untyped targets (Row, any)
// receive them as json.Number; typed fields get them converted with range
// checks, so an out-of-range or fractional value for an integer field is a
// decode error. A row with more values than there are columns is rejected
// with ErrColumnCount for every target, Row included, since the surplus
// values would have no column name to be stored under.
func Parse[T any](body []byte) (*QueryResult[T], error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &SchemaError{Reason: "response is not a JSON object", Cause: err}
	}
	if doc == nil {
		return nil, &SchemaError{Reason: "response is not a JSON object"}
	}

	meta, err := parseMetadata(doc)
	if err != nil {
		return nil, err
	}
	rows, err := parseData(doc)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(rows))
	for i, values := range rows {
		rec, err := reshape(meta, values)
		if err != nil {
			return nil, &DecodeError{Row: i, Cause: err}
		}
		var out T
		if err := decodeRow(rec, &out); err != nil {
			return nil, &DecodeError{Row: i, Cause: err}
		}
		records = append(records, out)
	}

	return &QueryResult[T]{meta: meta, data: records}, nil
}

func parseMetadata(doc map[string]json.RawMessage) ([]ColumnMetadata, error) {
	raw, ok := doc["metadata"]
	if !ok {
		return nil, &SchemaError{Reason: `missing "metadata"`}
	}
	var entries []json.RawMessage
	if isNull(raw) {
		return nil, &SchemaError{Reason: `"metadata" is not an array`}
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &SchemaError{Reason: `"metadata" is not an array`, Cause: err}
	}

	meta := make([]ColumnMetadata, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		var col rawColumn
		if err := json.Unmarshal(entry, &col); err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("metadata[%d] is malformed", i), Cause: err}
		}
		if col.Name == nil {
			return nil, &SchemaError{Reason: fmt.Sprintf(`metadata[%d] has no "name"`, i)}
		}
		if col.UCD == nil {
			return nil, &SchemaError{Reason: fmt.Sprintf(`metadata[%d] (%s) has no "ucd"`, i, *col.Name)}
		}
		if _, dup := seen[*col.Name]; dup {
			return nil, &SchemaError{Reason: fmt.Sprintf("duplicate column %q", *col.Name)}
		}
		seen[*col.Name] = struct{}{}
		meta = append(meta, col.column())
	}
	return meta, nil
}

func parseData(doc map[string]json.RawMessage) ([][]any, error) {
	raw, ok := doc["data"]
	if !ok {
		return nil, &SchemaError{Reason: `missing "data"`}
	}
	var rows []json.RawMessage
	if isNull(raw) {
		return nil, &SchemaError{Reason: `"data" is not an array`}
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &SchemaError{Reason: `"data" is not an array`, Cause: err}
	}

	out := make([][]any, len(rows))
	for i, row := range rows {
		if isNull(row) {
			return nil, &SchemaError{Reason: fmt.Sprintf("data[%d] is not an array", i)}
		}
		var values []any
		dec := json.NewDecoder(bytes.NewReader(row))
		dec.UseNumber()
		if err := dec.Decode(&values); err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("data[%d] is not an array", i), Cause: err}
		}
		out[i] = values
	}
	return out, nil
}

// reshape pairs each value with the column at the same position. Short rows
// just lack keys; whether that matters is up to the target type.
func reshape(meta []ColumnMetadata, values []any) (Row, error) {
	if len(values) > len(meta) {
		return nil, fmt.Errorf("%w: %d values for %d columns", ErrColumnCount, len(values), len(meta))
	}
	rec := make(Row, len(values))
	for i, v := range values {
		rec[meta[i].Name] = v
	}
	return rec, nil
}

// jsonNull stands in for a JSON null during decoding, so that a null can be
// rejected for mandatory fields instead of silently leaving a zero value.
// mapstructure skips plain nils, including those inside arrays.
type jsonNull struct{}

var (
	nullType   = reflect.TypeOf(jsonNull{})
	numberType = reflect.TypeOf(json.Number(""))
)

func decodeRow(rec Row, out any) error {
	switch p := out.(type) {
	case *any:
		*p = rec
		return nil
	case *Row:
		*p = rec
		return nil
	}

	input := make(map[string]any, len(rec))
	for k, v := range rec {
		input[k] = markNulls(v)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:            out,
		TagName:           "json",
		ErrorUnset:        true,
		AllowUnsetPointer: true,
		DecodeHook:        mapstructure.DecodeHookFuncType(decodeHook),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func decodeHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() == reflect.Interface {
		return unmarkNulls(data), nil
	}
	if from == nullType {
		switch to.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice:
			return nil, nil
		}
		return nil, fmt.Errorf("null value for non-optional %s", to)
	}
	if from == numberType && to != numberType {
		return convertNumber(data.(json.Number), to)
	}
	return data, nil
}

// convertNumber turns n into a value assignable to a field of type to,
// refusing anything the field cannot hold exactly.
func convertNumber(n json.Number, to reflect.Type) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(n.String(), 64)
			if ferr != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, fmt.Errorf("%s does not fit in %s", n, to)
			}
			i = int64(f)
		}
		if reflect.New(to).Elem().OverflowInt(i) {
			return nil, fmt.Errorf("%s overflows %s", n, to)
		}
		return i, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(n.String(), 64)
			if ferr != nil || f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return nil, fmt.Errorf("%s does not fit in %s", n, to)
			}
			u = uint64(f)
		}
		if reflect.New(to).Elem().OverflowUint(u) {
			return nil, fmt.Errorf("%s overflows %s", n, to)
		}
		return u, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(n.String(), to.Bits())
		if err != nil {
			return nil, fmt.Errorf("%s does not fit in %s", n, to)
		}
		return f, nil
	case reflect.String:
		return nil, fmt.Errorf("number %s for %s field", n, to)
	}
	return n, nil
}

// markNulls replaces every JSON null in v, at any depth, with jsonNull.
func markNulls(v any) any {
	switch x := v.(type) {
	case nil:
		return jsonNull{}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = markNulls(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = markNulls(e)
		}
		return out
	}
	return v
}

// unmarkNulls undoes markNulls for values stored in interface fields.
func unmarkNulls(v any) any {
	switch x := v.(type) {
	case jsonNull:
		return nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = unmarkNulls(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = unmarkNulls(e)
		}
		return out
	}
	return v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
