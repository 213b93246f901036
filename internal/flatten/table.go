// Package flatten reshapes nested JSON feed documents into flat record
// tables. A feed envelope decodes into a Document; Normalize turns it into
// a one-row Table whose list-valued cells are then exploded into one row
// per nested record, keeping only the fields each entity cares about.
package flatten

import (
	"sort"
	"strconv"

	"resonance/internal/logging"
)

// Document is a decoded JSON object.
type Document = map[string]any

// Row is a single flat record. Nested objects are keyed by dotted paths,
// e.g. "post_summary.emotions.overall_sentiment".
type Row map[string]any

// Table is an ordered set of columns over flat rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the table carries the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Empty reports whether the table holds no rows. Callers must treat an
// empty table ("feed had no records") distinctly from an unchanged input
// ("feed column was absent").
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Normalize converts a decoded JSON document into a one-row table.
// Nested objects become dotted columns; lists stay whole as cell values
// so Explode can expand them later.
func Normalize(doc Document) Table {
	row := Row{}
	flattenInto("", doc, row)
	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return Table{Columns: cols, Rows: []Row{row}}
}

func flattenInto(prefix string, obj map[string]any, out Row) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if m, ok := v.(map[string]any); ok {
			flattenInto(key, m, out)
			continue
		}
		out[key] = v
	}
}

// Explode expands a list-valued column into one row per nested record,
// keeping only allow-listed fields. Semantics:
//   - column absent: the input table is returned unchanged (no-op, which
//     also makes flattening an already-flat table idempotent);
//   - no usable records in any row: an empty table is returned;
//   - allow-listed fields absent after flattening: logged as a warning and
//     omitted, never synthesized.
//
// Every row of the column is inspected, not just the first one; records in
// later rows are never silently dropped.
func Explode(t Table, column string, allow []string) Table {
	if !t.HasColumn(column) {
		return t
	}
	var items []Row
	for _, r := range t.Rows {
		list, ok := r[column].([]any)
		if !ok {
			continue
		}
		for _, elem := range list {
			m, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			item := Row{}
			flattenInto("", m, item)
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		logging.Warn("no records in column", map[string]any{"column": column})
		return Table{}
	}

	allowSet := make(map[string]bool, len(allow))
	for _, f := range allow {
		allowSet[f] = true
	}
	var cols []string
	seen := make(map[string]bool)
	for _, item := range items {
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] && allowSet[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	var missing []string
	for _, f := range allow {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		logging.Warn("missing fields after flattening", map[string]any{"column": column, "fields": missing})
	}

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{}
		for _, c := range cols {
			if v, ok := item[c]; ok {
				row[c] = v
			}
		}
		rows = append(rows, row)
	}
	return Table{Columns: cols, Rows: rows}
}

// FillMissing replaces absent or null cells with the sentinel so downstream
// consumers never see nulls.
func FillMissing(t Table, sentinel string) Table {
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			if v, ok := r[c]; !ok || v == nil {
				r[c] = sentinel
			}
		}
	}
	return t
}

// Str coerces a cell to its string form; absent and null cells yield "".
func (r Row) Str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int coerces a cell to int64; anything non-numeric yields 0.
func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Float coerces a cell to float64; anything non-numeric yields 0.
func (r Row) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// Bool coerces a cell to bool; anything non-boolean yields false.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}
