package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// datasetPromptTemplate summarizes the whole dataset from its shape.
const datasetPromptTemplate = `You are an expert data analyst. Based on the following profile,
which describes the columns of a dataset, provide a summary of what the
entire dataset is likely about. The description should be about 200 words.

Row count: %d

Columns:
%s`

// fieldPromptTemplate describes one column from its shrunk statistics.
const fieldPromptTemplate = `You are an expert data analyst. You are analyzing a dataset.
For context, here is a list of all columns in the dataset: %s

Your task is to describe the specific column named '%s'.
Use ONLY the JSON profiling data provided below to write a concise, one-paragraph
description of what this specific column contains and its key characteristics.

Profiling data for column '%s':
%s`

// datasetPrompt builds the dataset-level prompt from the dataset's shape:
// field names, types, and row count. It deliberately excludes per-field
// statistics so a re-shrink that only changes one field does not invalidate
// the dataset description.
func datasetPrompt(ds *types.ShrunkDataset) string {
	var lines []string
	for _, f := range ds.Fields {
		lines = append(lines, fmt.Sprintf("- %s (%s)", f.Name, f.Type))
	}
	return fmt.Sprintf(datasetPromptTemplate, ds.RowCount, strings.Join(lines, "\n"))
}

// fieldPrompt builds one field's prompt from exactly that field's shrunk
// statistics, so the request fingerprint changes if and only if the field's
// statistics (or the template) change.
func fieldPrompt(ds *types.ShrunkDataset, field types.ShrunkField) (string, error) {
	stats, err := json.Marshal(field)
	if err != nil {
		return "", fmt.Errorf("failed to encode field statistics: %w", err)
	}

	names := make([]string, 0, len(ds.Fields))
	for _, f := range ds.Fields {
		names = append(names, f.Name)
	}
	return fmt.Sprintf(fieldPromptTemplate,
		strings.Join(names, ", "), field.Name, field.Name, string(stats)), nil
}
