// Package types defines the stage artifacts exchanged between pipeline
// stages. Every stage consumes the previous stage's artifact and produces a
// new one; each artifact is a standalone JSON document that can be persisted
// and re-loaded independently.
package types

import "time"

// FieldType is the inferred data type of a profiled column.
// The profiling engine reports one of a closed set of variants; consumers
// that encounter anything else must treat the field as TypeUnknown.
type FieldType string

const (
	TypeNumeric     FieldType = "numeric"
	TypeCategorical FieldType = "categorical"
	TypeBoolean     FieldType = "boolean"
	TypeDateTime    FieldType = "datetime"
	TypeText        FieldType = "text"
	TypeUnknown     FieldType = "unknown"
)

// ValueCount is one entry of a field's value-frequency table.
// Tables are slices rather than maps so that the frequency-descending order
// (insertion-stable on ties) survives JSON round-trips.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SumCounts returns the total frequency across a value-count table.
func SumCounts(counts []ValueCount) int {
	total := 0
	for _, vc := range counts {
		total += vc.Count
	}
	return total
}

// RawProfile is the statistics document returned by the profiling engine.
// Per-variable measures are engine-specific mappings whose keys vary by
// inferred type; consumers must tolerate unknown keys.
type RawProfile struct {
	Analysis  AnalysisInfo              `json:"analysis"`
	Table     TableStats                `json:"table"`
	Columns   []string                  `json:"columns"`
	Variables map[string]map[string]any `json:"variables"`
}

// AnalysisInfo records when and on what the profiling engine ran.
type AnalysisInfo struct {
	Title     string    `json:"title"`
	DateStart time.Time `json:"date_start"`
	DateEnd   time.Time `json:"date_end"`
}

// TableStats holds dataset-level counts from the profiling engine.
type TableStats struct {
	N    int `json:"n"`     // row count
	NVar int `json:"n_var"` // column count
}

// CleanedField is the flat, typed per-field record produced by the Cleaner.
// Only measures relevant to the field's inferred type are populated; absent
// measures are nil/omitted, never defaulted to a sentinel.
type CleanedField struct {
	Name      string    `json:"name"`
	Type      FieldType `json:"inferred_type"`
	N         int       `json:"n"`
	NMissing  int       `json:"n_missing"`
	PMissing  float64   `json:"p_missing"`
	NDistinct int       `json:"n_distinct"`
	PDistinct float64   `json:"p_distinct"`

	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Mean *float64 `json:"mean,omitempty"`
	Std  *float64 `json:"std,omitempty"`

	// Datetime range bounds, RFC3339. Populated for datetime fields only.
	MinDate *string `json:"min_date,omitempty"`
	MaxDate *string `json:"max_date,omitempty"`

	ValueCounts  []ValueCount `json:"value_counts,omitempty"`
	SampleValues []string     `json:"sample_values,omitempty"`
}

// CleanedDataset is the Cleaner's output artifact. Field order is the
// first-seen column order after flattening.
type CleanedDataset struct {
	RowCount int            `json:"row_count"`
	Fields   []CleanedField `json:"fields"`
}

// ShrunkField is a CleanedField whose value-count table has been bounded.
// Invariant: OtherCount + sum(retained ValueCounts) == sum(original counts).
type ShrunkField struct {
	CleanedField
	OtherCount int `json:"other_count"`
}

// ShrunkDataset is the Shrinker's output artifact.
type ShrunkDataset struct {
	RowCount       int           `json:"row_count"`
	MaxValueCounts int           `json:"max_value_counts"`
	Fields         []ShrunkField `json:"fields"`
}

// EnrichedField is a ShrunkField plus its natural-language description.
type EnrichedField struct {
	ShrunkField
	Description string `json:"description"`
}

// EnrichedDataset is the final artifact: per-field descriptions merged into
// the shrunk statistics plus one dataset-level description. FailedFields
// lists fields whose enrichment call failed and carry a placeholder
// description instead.
type EnrichedDataset struct {
	RunID        string          `json:"run_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Model        string          `json:"model"`
	RowCount     int             `json:"row_count"`
	Description  string          `json:"description"`
	Fields       []EnrichedField `json:"fields"`
	FailedFields []string        `json:"failed_fields,omitempty"`
}

// CacheEntry is one persisted LLM response, keyed by the fingerprint of the
// exact request that produced it. Entries are insert-only: a fingerprint is
// never overwritten except through explicit invalidation.
type CacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Prompt      string    `json:"prompt"`
	Model       string    `json:"model"`
	Response    string    `json:"response"`
	CreatedAt   time.Time `json:"created_at"`
}
