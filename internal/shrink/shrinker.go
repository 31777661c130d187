// Package shrink applies a size budget to high-cardinality value-frequency
// tables. Truncated entries are never silently dropped: their total is
// folded into an explicit other_count so the original aggregate stays
// recoverable.
package shrink

import (
	"log"
	"sort"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// DefaultMaxValueCounts is the default K: how many value-count entries a
// field may keep.
const DefaultMaxValueCounts = 10

// DefaultMaxTextChars is the default cumulative character budget over the
// retained values of text fields.
const DefaultMaxTextChars = 1000

// Options bounds the shrink transform.
type Options struct {
	// MaxValueCounts is K, the maximum number of retained entries per field.
	MaxValueCounts int

	// MaxTextChars caps the cumulative length of retained values for text
	// fields. At least one entry is always kept. Zero disables the budget.
	MaxTextChars int
}

// DefaultOptions returns the standard shrink budget.
func DefaultOptions() Options {
	return Options{
		MaxValueCounts: DefaultMaxValueCounts,
		MaxTextChars:   DefaultMaxTextChars,
	}
}

// Shrink bounds every field of a cleaned dataset. Summary scalars pass
// through unchanged; only value-count tables are size-bounded, because they
// are the only unbounded-cardinality structure.
func Shrink(ds *types.CleanedDataset, opts Options) *types.ShrunkDataset {
	out := &types.ShrunkDataset{
		RowCount:       ds.RowCount,
		MaxValueCounts: opts.MaxValueCounts,
		Fields:         make([]types.ShrunkField, 0, len(ds.Fields)),
	}
	for _, f := range ds.Fields {
		out.Fields = append(out.Fields, shrinkField(types.ShrunkField{CleanedField: f}, ds.RowCount, opts))
	}
	return out
}

// Reshrink applies the same bound to an already-shrunk dataset. With the
// same options this is a no-op, which makes the shrink stage safely
// re-runnable against its own artifact.
func Reshrink(ds *types.ShrunkDataset, opts Options) *types.ShrunkDataset {
	out := &types.ShrunkDataset{
		RowCount:       ds.RowCount,
		MaxValueCounts: opts.MaxValueCounts,
		Fields:         make([]types.ShrunkField, 0, len(ds.Fields)),
	}
	for _, f := range ds.Fields {
		out.Fields = append(out.Fields, shrinkField(f, ds.RowCount, opts))
	}
	return out
}

// shrinkField keeps the K most frequent entries (ties broken by the table's
// existing insertion order) and folds the remainder into OtherCount.
// A field whose frequencies sum above the declared row count is reported and
// passed through unshrunk rather than aborting the run.
func shrinkField(f types.ShrunkField, rowCount int, opts Options) types.ShrunkField {
	total := types.SumCounts(f.ValueCounts) + f.OtherCount
	if rowCount > 0 && total > rowCount {
		log.Printf("WARNING: field %q has inconsistent value counts (%d > %d rows), passing through unshrunk",
			f.Name, total, rowCount)
		return f
	}

	counts := make([]types.ValueCount, len(f.ValueCounts))
	copy(counts, f.ValueCounts)
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	keep := len(counts)
	if opts.MaxValueCounts >= 0 && keep > opts.MaxValueCounts {
		keep = opts.MaxValueCounts
	}
	if f.Type == types.TypeText && opts.MaxTextChars > 0 {
		keep = textBudget(counts, keep, opts.MaxTextChars)
	}

	if keep >= len(counts) {
		f.ValueCounts = counts
		return f
	}

	truncated := 0
	for _, vc := range counts[keep:] {
		truncated += vc.Count
	}
	f.ValueCounts = counts[:keep]
	f.OtherCount += truncated
	return f
}

// textBudget lowers the keep count until the cumulative character length of
// retained values fits the budget, keeping at least one entry.
func textBudget(counts []types.ValueCount, keep, maxChars int) int {
	chars := 0
	for i := 0; i < keep && i < len(counts); i++ {
		chars += len(counts[i].Value)
		if chars > maxChars && i > 0 {
			return i
		}
	}
	return keep
}
