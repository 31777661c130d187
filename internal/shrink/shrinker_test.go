package shrink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

func cleanedField(name string, counts ...types.ValueCount) types.CleanedField {
	total := types.SumCounts(counts)
	return types.CleanedField{
		Name:        name,
		Type:        types.TypeCategorical,
		N:           total,
		NDistinct:   len(counts),
		ValueCounts: counts,
	}
}

func TestShrinkAccountingInvariant(t *testing.T) {
	counts := []types.ValueCount{
		{Value: "a", Count: 50},
		{Value: "b", Count: 30},
		{Value: "c", Count: 10},
		{Value: "d", Count: 7},
		{Value: "e", Count: 3},
	}
	original := types.SumCounts(counts)

	for k := 0; k <= len(counts)+1; k++ {
		ds := &types.CleanedDataset{
			RowCount: 100,
			Fields:   []types.CleanedField{cleanedField("status", counts...)},
		}
		shrunk := Shrink(ds, Options{MaxValueCounts: k})

		f := shrunk.Fields[0]
		assert.Equalf(t, original, types.SumCounts(f.ValueCounts)+f.OtherCount,
			"other_count + retained must equal original total for k=%d", k)
		assert.LessOrEqualf(t, len(f.ValueCounts), max(k, 0), "at most k entries retained for k=%d", k)
	}
}

func TestShrinkIdempotence(t *testing.T) {
	ds := &types.CleanedDataset{
		RowCount: 20,
		Fields: []types.CleanedField{cleanedField("status",
			types.ValueCount{Value: "open", Count: 9},
			types.ValueCount{Value: "closed", Count: 6},
			types.ValueCount{Value: "stale", Count: 3},
			types.ValueCount{Value: "new", Count: 2},
		)},
	}
	opts := Options{MaxValueCounts: 2}

	once := Shrink(ds, opts)
	twice := Reshrink(once, opts)

	assert.Equal(t, once, twice, "shrinking an already-shrunk dataset must be a no-op")
}

func TestShrinkTiesKeepInsertionOrder(t *testing.T) {
	ds := &types.CleanedDataset{
		RowCount: 30,
		Fields: []types.CleanedField{cleanedField("label",
			types.ValueCount{Value: "first", Count: 5},
			types.ValueCount{Value: "second", Count: 5},
			types.ValueCount{Value: "third", Count: 5},
		)},
	}

	shrunk := Shrink(ds, Options{MaxValueCounts: 2})

	f := shrunk.Fields[0]
	require.Len(t, f.ValueCounts, 2)
	assert.Equal(t, "first", f.ValueCounts[0].Value)
	assert.Equal(t, "second", f.ValueCounts[1].Value)
	assert.Equal(t, 5, f.OtherCount)
}

func TestShrinkScalarsPassThrough(t *testing.T) {
	min, max, mean, std := 1.0, 9.0, 4.5, 2.1
	ds := &types.CleanedDataset{
		RowCount: 10,
		Fields: []types.CleanedField{{
			Name: "price",
			Type: types.TypeNumeric,
			N:    10,
			Min:  &min, Max: &max, Mean: &mean, Std: &std,
			ValueCounts: []types.ValueCount{
				{Value: "1", Count: 5},
				{Value: "9", Count: 5},
			},
		}},
	}

	shrunk := Shrink(ds, Options{MaxValueCounts: 1})

	f := shrunk.Fields[0]
	assert.Equal(t, &min, f.Min)
	assert.Equal(t, &max, f.Max)
	assert.Equal(t, &mean, f.Mean)
	assert.Equal(t, &std, f.Std)
	assert.Equal(t, 5, f.OtherCount)
}

func TestShrinkInconsistentCountsPassThroughUnshrunk(t *testing.T) {
	// Frequencies sum above the declared row count: data-integrity warning,
	// field passes through untouched.
	ds := &types.CleanedDataset{
		RowCount: 5,
		Fields: []types.CleanedField{cleanedField("broken",
			types.ValueCount{Value: "x", Count: 4},
			types.ValueCount{Value: "y", Count: 4},
			types.ValueCount{Value: "z", Count: 4},
		)},
	}

	shrunk := Shrink(ds, Options{MaxValueCounts: 1})

	f := shrunk.Fields[0]
	assert.Len(t, f.ValueCounts, 3, "malformed field must pass through unshrunk")
	assert.Equal(t, 0, f.OtherCount)
}

func TestShrinkTextCharacterBudget(t *testing.T) {
	long := cleanedField("description",
		types.ValueCount{Value: "aaaaaaaaaa", Count: 10}, // 10 chars
		types.ValueCount{Value: "bbbbbbbbbb", Count: 8},
		types.ValueCount{Value: "cccccccccc", Count: 6},
	)
	long.Type = types.TypeText

	ds := &types.CleanedDataset{RowCount: 24, Fields: []types.CleanedField{long}}
	shrunk := Shrink(ds, Options{MaxValueCounts: 10, MaxTextChars: 15})

	f := shrunk.Fields[0]
	require.Len(t, f.ValueCounts, 1, "character budget should stop after the first value")
	assert.Equal(t, "aaaaaaaaaa", f.ValueCounts[0].Value)
	assert.Equal(t, 14, f.OtherCount)
}

func TestShrinkTextBudgetKeepsAtLeastOneEntry(t *testing.T) {
	long := cleanedField("description",
		types.ValueCount{Value: "a very long value that blows the budget", Count: 3},
		types.ValueCount{Value: "short", Count: 1},
	)
	long.Type = types.TypeText

	ds := &types.CleanedDataset{RowCount: 4, Fields: []types.CleanedField{long}}
	shrunk := Shrink(ds, Options{MaxValueCounts: 10, MaxTextChars: 5})

	require.NotEmpty(t, shrunk.Fields[0].ValueCounts)
	assert.Equal(t, 1, shrunk.Fields[0].OtherCount)
}
