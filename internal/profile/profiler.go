// Package profile implements the profiler adapter: it loads a directory of
// JSON records, flattens them into columns, and runs the statistics engine
// over each column to produce the raw profile artifact plus a rendered
// report.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/GerritGeeraerts/data-explorer/internal/flatten"
	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// ErrNoRecords is returned when the input directory yields no decodable
// JSON records. Fatal to the run: there is nothing to profile.
var ErrNoRecords = errors.New("no JSON records found in input directory")

// Profiler runs the statistics engine over a directory of JSON files.
type Profiler struct {
	// FileLimit caps how many JSON files are loaded (default 1000).
	FileLimit int

	// SampleValues is how many example values to record per column (default 5).
	SampleValues int
}

// NewProfiler returns a Profiler with default limits.
func NewProfiler() *Profiler {
	return &Profiler{FileLimit: 1000, SampleValues: 5}
}

// Profile loads up to FileLimit JSON files from dir, flattens them, and
// profiles every column. Files that fail to decode are logged and skipped;
// an input with zero decodable records returns ErrNoRecords.
func (p *Profiler) Profile(ctx context.Context, dir string) (*types.RawProfile, error) {
	records, err := p.loadRecords(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, dir)
	}

	started := time.Now().UTC()
	columns, rows := flatten.Columns(records)

	variables := make(map[string]map[string]any, len(columns))
	for _, col := range columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		variables[col] = p.profileColumn(col, rows)
	}

	return &types.RawProfile{
		Analysis: types.AnalysisInfo{
			Title:     "Profiling Report",
			DateStart: started,
			DateEnd:   time.Now().UTC(),
		},
		Table: types.TableStats{
			N:    len(rows),
			NVar: len(columns),
		},
		Columns:   columns,
		Variables: variables,
	}, nil
}

// loadRecords reads *.json files from dir in lexical order up to FileLimit.
func (p *Profiler) loadRecords(ctx context.Context, dir string) ([]map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	limit := p.FileLimit
	if limit <= 0 {
		limit = 1000
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var records []map[string]any
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(records) >= limit {
			log.Printf("profile: reached file limit of %d, stopping", limit)
			break
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("WARNING: failed to read %s: %v", path, err)
			continue
		}

		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			log.Printf("WARNING: failed to decode %s: %v", path, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// profileColumn computes the engine statistics mapping for one column.
// Keys vary by inferred type; consumers must tolerate keys they don't know.
func (p *Profiler) profileColumn(col string, rows []map[string]string) map[string]any {
	var values []string
	missing := 0
	for _, row := range rows {
		v, ok := row[col]
		if !ok {
			missing++
			continue
		}
		values = append(values, v)
	}

	n := len(rows)
	counts, distinct := valueCounts(values)
	fieldType := inferType(values, distinct)

	stats := map[string]any{
		"type":                    string(fieldType),
		"n":                       n,
		"n_missing":               missing,
		"p_missing":               ratio(missing, n),
		"n_distinct":              distinct,
		"p_distinct":              ratio(distinct, len(values)),
		"value_counts_without_nan": counts,
		"sample_values":           sampleValues(values, p.sampleLimit()),
	}

	switch fieldType {
	case types.TypeNumeric:
		for k, v := range numericStats(values) {
			stats[k] = v
		}
	case types.TypeDateTime:
		if min, max, ok := datetimeRange(values); ok {
			stats["min"] = min.Format(time.RFC3339)
			stats["max"] = max.Format(time.RFC3339)
		}
	case types.TypeText:
		meanLen, maxLen := textLengths(values)
		stats["mean_length"] = meanLen
		stats["max_length"] = maxLen
	}

	return stats
}

func (p *Profiler) sampleLimit() int {
	if p.SampleValues <= 0 {
		return 5
	}
	return p.SampleValues
}

// valueCounts builds the frequency table ordered by descending frequency,
// ties broken by first appearance in row order.
func valueCounts(values []string) ([]types.ValueCount, int) {
	freq := make(map[string]int)
	var order []string
	for _, v := range values {
		if freq[v] == 0 {
			order = append(order, v)
		}
		freq[v]++
	}

	counts := make([]types.ValueCount, 0, len(order))
	for _, v := range order {
		counts = append(counts, types.ValueCount{Value: v, Count: freq[v]})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, len(order)
}

// sampleValues returns up to limit distinct values in first-seen order.
func sampleValues(values []string, limit int) []string {
	seen := make(map[string]bool)
	var samples []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		samples = append(samples, v)
		if len(samples) >= limit {
			break
		}
	}
	return samples
}

func textLengths(values []string) (float64, int) {
	if len(values) == 0 {
		return 0, 0
	}
	total, max := 0, 0
	for _, v := range values {
		total += len(v)
		if len(v) > max {
			max = len(v)
		}
	}
	return float64(total) / float64(len(values)), max
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
