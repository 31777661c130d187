package clean

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

func TestCleanMissingVariablesIsFatal(t *testing.T) {
	_, err := Clean(nil)
	require.ErrorIs(t, err, ErrProfileShape)

	_, err = Clean(&types.RawProfile{})
	require.ErrorIs(t, err, ErrProfileShape)
}

func TestCleanCompleteness(t *testing.T) {
	// Every variable in the profile yields exactly one field, including ones
	// missing from the recorded column order.
	raw := &types.RawProfile{
		Table:   types.TableStats{N: 3},
		Columns: []string{"status"},
		Variables: map[string]map[string]any{
			"status":   {"type": "categorical", "n": 3},
			"orphaned": {"type": "numeric", "n": 3},
		},
	}

	ds, err := Clean(raw)
	require.NoError(t, err)

	require.Len(t, ds.Fields, 2)
	assert.Equal(t, "status", ds.Fields[0].Name)
	assert.Equal(t, "orphaned", ds.Fields[1].Name)
	assert.Equal(t, 3, ds.RowCount)
}

func TestCleanNumericAllowList(t *testing.T) {
	raw := &types.RawProfile{
		Table:   types.TableStats{N: 10},
		Columns: []string{"price"},
		Variables: map[string]map[string]any{
			"price": {
				"type":       "numeric",
				"n":          10,
				"n_missing":  2,
				"p_missing":  0.2,
				"n_distinct": 8,
				"p_distinct": 1.0,
				"min":        1.5,
				"max":        99.0,
				"mean":       40.25,
				"std":        12.5,
				// engine extras outside the allow-list
				"median":   38.0,
				"p_normal": 0.7,
				"entropy":  2.1,
			},
		},
	}

	ds, err := Clean(raw)
	require.NoError(t, err)

	f := ds.Fields[0]
	assert.Equal(t, types.TypeNumeric, f.Type)
	assert.Equal(t, 2, f.NMissing)
	assert.Equal(t, 8, f.NDistinct)
	require.NotNil(t, f.Min)
	require.NotNil(t, f.Max)
	require.NotNil(t, f.Mean)
	require.NotNil(t, f.Std)
	assert.Equal(t, 1.5, *f.Min)
	assert.Equal(t, 99.0, *f.Max)
	assert.Equal(t, 40.25, *f.Mean)
	assert.Equal(t, 12.5, *f.Std)
}

func TestCleanUnknownTypeKeepsUniversalMeasuresOnly(t *testing.T) {
	raw := &types.RawProfile{
		Table:   types.TableStats{N: 4},
		Columns: []string{"mystery"},
		Variables: map[string]map[string]any{
			"mystery": {
				"type":       "hologram",
				"n":          4,
				"n_missing":  1,
				"n_distinct": 3,
				"min":        0.5,
				"mean":       2.0,
			},
		},
	}

	ds, err := Clean(raw)
	require.NoError(t, err)

	f := ds.Fields[0]
	assert.Equal(t, types.TypeUnknown, f.Type)
	assert.Equal(t, 4, f.N)
	assert.Equal(t, 1, f.NMissing)
	assert.Equal(t, 3, f.NDistinct)
	assert.Nil(t, f.Min, "type-specific measures must not leak for unknown types")
	assert.Nil(t, f.Mean)
}

func TestCleanDatetimeRange(t *testing.T) {
	raw := &types.RawProfile{
		Table:   types.TableStats{N: 2},
		Columns: []string{"posted_at"},
		Variables: map[string]map[string]any{
			"posted_at": {
				"type": "datetime",
				"n":    2,
				"min":  "2024-01-01T00:00:00Z",
				"max":  "2024-06-30T00:00:00Z",
			},
		},
	}

	ds, err := Clean(raw)
	require.NoError(t, err)

	f := ds.Fields[0]
	require.NotNil(t, f.MinDate)
	require.NotNil(t, f.MaxDate)
	assert.Equal(t, "2024-01-01T00:00:00Z", *f.MinDate)
	assert.Equal(t, "2024-06-30T00:00:00Z", *f.MaxDate)
	assert.Nil(t, f.Min, "datetime bounds are strings, not numeric measures")
}

func TestCleanTolerantOfJSONRoundTrip(t *testing.T) {
	// A raw profile loaded back from its JSON artifact carries float64 and
	// []any values instead of typed Go values. Cleaning must produce the
	// same result either way.
	raw := &types.RawProfile{
		Table:   types.TableStats{N: 3},
		Columns: []string{"status"},
		Variables: map[string]map[string]any{
			"status": {
				"type":       "categorical",
				"n":          3,
				"n_missing":  0,
				"n_distinct": 2,
				"value_counts_without_nan": []types.ValueCount{
					{Value: "open", Count: 2},
					{Value: "closed", Count: 1},
				},
				"sample_values": []string{"open", "closed"},
			},
		},
	}

	data, err := json.Marshal(raw)
	require.NoError(t, err)
	var reloaded types.RawProfile
	require.NoError(t, json.Unmarshal(data, &reloaded))

	direct, err := Clean(raw)
	require.NoError(t, err)
	viaDisk, err := Clean(&reloaded)
	require.NoError(t, err)

	assert.Equal(t, direct, viaDisk)

	f := viaDisk.Fields[0]
	require.Len(t, f.ValueCounts, 2)
	assert.Equal(t, types.ValueCount{Value: "open", Count: 2}, f.ValueCounts[0])
	assert.Equal(t, types.ValueCount{Value: "closed", Count: 1}, f.ValueCounts[1])
	assert.Equal(t, []string{"open", "closed"}, f.SampleValues)
}
