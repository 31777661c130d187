package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

func TestPathsDefaults(t *testing.T) {
	p := NewPaths("", "")
	assert.Equal(t, filepath.Join("report", "report_raw.json"), p.RawJSON())
	assert.Equal(t, filepath.Join("report", "report_raw.html"), p.ReportHTML())
}

func TestPathsAddressing(t *testing.T) {
	p := NewPaths("out", "jobs")
	assert.Equal(t, filepath.Join("out", "jobs_raw.json"), p.RawJSON())
	assert.Equal(t, filepath.Join("out", "jobs_raw.html"), p.ReportHTML())
	assert.Equal(t, filepath.Join("out", "jobs_cleaned.json"), p.Cleaned())
	assert.Equal(t, filepath.Join("out", "jobs_shrunk.json"), p.Shrunk())
	assert.Equal(t, filepath.Join("out", "jobs_enriched.json"), p.Enriched())
}

func TestEnsureDir(t *testing.T) {
	p := NewPaths(filepath.Join(t.TempDir(), "nested", "out"), "run")
	require.NoError(t, p.EnsureDir())

	info, err := os.Stat(p.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent on an existing directory.
	assert.NoError(t, p.EnsureDir())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := NewPaths(t.TempDir(), "run")

	min := 1.5
	ds := &types.CleanedDataset{
		RowCount: 3,
		Fields: []types.CleanedField{
			{
				Name: "price", Type: types.TypeNumeric, N: 3, Min: &min,
				ValueCounts: []types.ValueCount{{Value: "1.5", Count: 2}},
			},
		},
	}
	require.NoError(t, Save(p.Cleaned(), ds))

	var loaded types.CleanedDataset
	require.NoError(t, Load(p.Cleaned(), &loaded))
	assert.Equal(t, *ds, loaded)
}

func TestSaveReplacesExistingArtifact(t *testing.T) {
	p := NewPaths(t.TempDir(), "run")

	require.NoError(t, Save(p.Shrunk(), &types.ShrunkDataset{RowCount: 1}))
	require.NoError(t, Save(p.Shrunk(), &types.ShrunkDataset{RowCount: 2}))

	var loaded types.ShrunkDataset
	require.NoError(t, Load(p.Shrunk(), &loaded))
	assert.Equal(t, 2, loaded.RowCount)

	// The temp-and-rename discipline leaves no stray files behind.
	entries, err := os.ReadDir(p.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveBytes(t *testing.T) {
	p := NewPaths(t.TempDir(), "run")

	html := []byte("<html><body>report</body></html>")
	require.NoError(t, SaveBytes(p.ReportHTML(), html))

	got, err := os.ReadFile(p.ReportHTML())
	require.NoError(t, err)
	assert.Equal(t, html, got)
}

func TestLoadMissingArtifact(t *testing.T) {
	p := NewPaths(t.TempDir(), "run")

	var ds types.ShrunkDataset
	err := Load(p.Shrunk(), &ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), p.Shrunk())
}
