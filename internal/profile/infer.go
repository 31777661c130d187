package profile

import (
	"math"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// typeThreshold is the share of values that must parse successfully for a
// type to be inferred. 80%, leaving room for the occasional dirty cell.
const typeThreshold = 0.8

// categoricalMaxDistinct caps how many distinct values a column may have and
// still be called categorical rather than text.
const categoricalMaxDistinct = 100

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// inferType detects the column type from its non-missing values.
// Order matters: boolean and numeric are strict subsets of text, so they are
// tested first.
func inferType(values []string, distinct int) types.FieldType {
	if len(values) == 0 {
		return types.TypeUnknown
	}

	booleans, numerics, datetimes := 0, 0, 0
	for _, v := range values {
		if v == "true" || v == "false" {
			booleans++
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numerics++
		}
		if _, ok := parseDatetime(v); ok {
			datetimes++
		}
	}

	total := float64(len(values))
	switch {
	case float64(booleans)/total >= typeThreshold:
		return types.TypeBoolean
	case float64(numerics)/total >= typeThreshold:
		return types.TypeNumeric
	case float64(datetimes)/total >= typeThreshold:
		return types.TypeDateTime
	}

	if distinct <= categoricalMaxDistinct && distinct < len(values) {
		return types.TypeCategorical
	}
	return types.TypeText
}

func parseDatetime(v string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// numericStats computes the summary statistics for a numeric column.
// Values that fail to parse are skipped; they already count against the
// type-inference threshold.
func numericStats(values []string) map[string]any {
	var data []float64
	for _, v := range values {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return nil
	}

	out := make(map[string]any, 6)
	if min, err := stats.Min(data); err == nil {
		out["min"] = min
	}
	if max, err := stats.Max(data); err == nil {
		out["max"] = max
	}
	if mean, err := stats.Mean(data); err == nil {
		out["mean"] = mean
	}
	if std, err := stats.StandardDeviation(data); err == nil {
		out["std"] = std
	}
	if median, err := stats.Median(data); err == nil {
		out["median"] = median
	}
	if p, ok := normalityP(data); ok {
		out["p_normal"] = p
	}
	return out
}

// normalityP approximates a normality p-value from sample skewness and
// excess kurtosis using a chi-squared distribution. A rough screen, not a
// proper Shapiro-Wilk test.
func normalityP(data []float64) (float64, bool) {
	if len(data) < 8 {
		return 0, false
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return 0, false
	}
	std, err := stats.StandardDeviation(data)
	if err != nil || std == 0 {
		return 0, false
	}

	n := float64(len(data))
	var sumCubed, sumFourth float64
	for _, x := range data {
		d := (x - mean) / std
		sumCubed += d * d * d
		sumFourth += d * d * d * d
	}
	skewness := sumCubed / n
	excessKurtosis := sumFourth/n - 3

	testStat := math.Abs(skewness) + math.Abs(excessKurtosis)/2
	chi := distuv.ChiSquared{K: 2}
	return 1 - chi.CDF(testStat*testStat), true
}

func datetimeRange(values []string) (time.Time, time.Time, bool) {
	var min, max time.Time
	found := false
	for _, v := range values {
		t, ok := parseDatetime(v)
		if !ok {
			continue
		}
		if !found || t.Before(min) {
			min = t
		}
		if !found || t.After(max) {
			max = t
		}
		found = true
	}
	return min, max, found
}
