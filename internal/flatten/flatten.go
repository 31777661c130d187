// Package flatten converts nested JSON records into flat tabular columns.
// Nested keys are joined with the " > " path separator, matching the
// convention used by the rest of the pipeline and its artifacts.
package flatten

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Separator joins parent and child keys in flattened column names.
const Separator = " > "

// Flatten converts one decoded JSON record into a flat column→value map.
// Nested objects are walked recursively; arrays and other non-scalar leaves
// are serialized as compact JSON so no information is lost. Nil values are
// omitted entirely and show up as missing cells.
func Flatten(record map[string]any) map[string]string {
	out := make(map[string]string, len(record))
	flattenInto(out, "", record)
	return out
}

func flattenInto(out map[string]string, prefix string, obj map[string]any) {
	for key, val := range obj {
		name := key
		if prefix != "" {
			name = prefix + Separator + key
		}
		switch v := val.(type) {
		case nil:
			// missing cell
		case map[string]any:
			flattenInto(out, name, v)
		case string:
			out[name] = v
		case bool:
			out[name] = strconv.FormatBool(v)
		case float64:
			out[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			out[name] = v.String()
		default:
			// arrays and anything else: compact JSON
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out[name] = string(raw)
		}
	}
}

// Columns flattens a batch of records and returns the column names in
// first-seen order together with the flattened rows. Key iteration order
// within a single record is not stable in Go, so first-seen order is defined
// per record by sorted keys and across records by encounter order.
func Columns(records []map[string]any) ([]string, []map[string]string) {
	var order []string
	seen := make(map[string]bool)
	rows := make([]map[string]string, 0, len(records))

	for _, rec := range records {
		flat := Flatten(rec)
		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
		rows = append(rows, flat)
	}
	return order, rows
}
