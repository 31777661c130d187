package profile

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	dir := writeRecords(t, []string{
		`{"status": "open", "price": 10}`,
		`{"status": "open", "price": 20}`,
		`{"status": "closed", "price": 30}`,
	})

	raw, err := NewProfiler().Profile(context.Background(), dir)
	require.NoError(t, err)

	html := string(RenderReport(raw))

	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html"))
	assert.Contains(t, html, "Profiling Report")
	assert.Contains(t, html, "status")
	assert.Contains(t, html, "price")
	assert.Contains(t, html, "<table>", "column summary renders as an HTML table")
}
