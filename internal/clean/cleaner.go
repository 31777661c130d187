// Package clean extracts a fixed allow-list of per-field measures from the
// raw profiling engine output into flat, typed records. The transform is
// pure: it owns no external resources and persists nothing itself.
package clean

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// ErrProfileShape is returned when the raw profile is missing its top-level
// variables collection. Fatal to the run; no partial clean is persisted.
var ErrProfileShape = errors.New("raw profile is missing the variables section")

// measureAllowList maps each field type to the type-specific measures the
// Cleaner extracts. Universal measures (counts, missing, distinct, value
// counts, samples) are always extracted; everything else the engine reports
// is discarded.
var measureAllowList = map[types.FieldType][]string{
	types.TypeNumeric:     {"min", "max", "mean", "std"},
	types.TypeDateTime:    {"min", "max"},
	types.TypeBoolean:     {},
	types.TypeCategorical: {},
	types.TypeText:        {},
	types.TypeUnknown:     {},
}

// Clean produces exactly one CleanedField per variable in the raw profile.
// Fields with an unrecognized type tag pass through with universal measures
// only. Unknown engine keys are tolerated and dropped.
func Clean(raw *types.RawProfile) (*types.CleanedDataset, error) {
	if raw == nil || raw.Variables == nil {
		return nil, ErrProfileShape
	}

	fields := make([]types.CleanedField, 0, len(raw.Variables))
	for _, name := range variableOrder(raw) {
		fields = append(fields, cleanField(name, raw.Variables[name]))
	}

	return &types.CleanedDataset{
		RowCount: raw.Table.N,
		Fields:   fields,
	}, nil
}

// variableOrder returns the profile's recorded column order, with any
// variables absent from the column list appended in sorted order so no
// field is silently dropped.
func variableOrder(raw *types.RawProfile) []string {
	order := make([]string, 0, len(raw.Variables))
	seen := make(map[string]bool, len(raw.Variables))
	for _, name := range raw.Columns {
		if _, ok := raw.Variables[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}

	var leftover []string
	for name := range raw.Variables {
		if !seen[name] {
			leftover = append(leftover, name)
		}
	}
	sort.Strings(leftover)
	return append(order, leftover...)
}

func cleanField(name string, measures map[string]any) types.CleanedField {
	fieldType := normalizeType(measures["type"])

	field := types.CleanedField{
		Name:         name,
		Type:         fieldType,
		N:            asInt(measures["n"]),
		NMissing:     asInt(measures["n_missing"]),
		PMissing:     asFloat(measures["p_missing"]),
		NDistinct:    asInt(measures["n_distinct"]),
		PDistinct:    asFloat(measures["p_distinct"]),
		ValueCounts:  asValueCounts(measures["value_counts_without_nan"]),
		SampleValues: asStrings(measures["sample_values"]),
	}

	for _, key := range measureAllowList[fieldType] {
		val, ok := measures[key]
		if !ok {
			continue
		}
		switch fieldType {
		case types.TypeNumeric:
			if f, ok := toFloat(val); ok {
				switch key {
				case "min":
					field.Min = &f
				case "max":
					field.Max = &f
				case "mean":
					field.Mean = &f
				case "std":
					field.Std = &f
				}
			}
		case types.TypeDateTime:
			if s, ok := val.(string); ok {
				switch key {
				case "min":
					field.MinDate = &s
				case "max":
					field.MaxDate = &s
				}
			}
		}
	}

	return field
}

// normalizeType maps the engine's type tag onto the closed variant set.
// Anything unrecognized becomes TypeUnknown rather than an error.
func normalizeType(tag any) types.FieldType {
	s, ok := tag.(string)
	if !ok {
		return types.TypeUnknown
	}
	switch t := types.FieldType(s); t {
	case types.TypeNumeric, types.TypeCategorical, types.TypeBoolean,
		types.TypeDateTime, types.TypeText:
		return t
	default:
		return types.TypeUnknown
	}
}

// The raw profile reaches the Cleaner either freshly built (typed Go values)
// or re-loaded from its JSON artifact (float64, []any, map[string]any).
// These coercions accept both shapes.

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}

func asFloat(v any) float64 {
	f, _ := toFloat(v)
	return f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	}
	return nil
}

func asValueCounts(v any) []types.ValueCount {
	switch vc := v.(type) {
	case []types.ValueCount:
		return vc
	case []any:
		out := make([]types.ValueCount, 0, len(vc))
		for _, item := range vc {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			value, _ := entry["value"].(string)
			out = append(out, types.ValueCount{
				Value: value,
				Count: asInt(entry["count"]),
			})
		}
		return out
	}
	return nil
}
