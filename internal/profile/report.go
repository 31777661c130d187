package profile

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/GerritGeeraerts/data-explorer/pkg/types"
)

// RenderReport renders the raw profile as an HTML document. The report is
// composed as markdown and converted with gomarkdown; it is a human-readable
// companion to the raw JSON artifact, not an input to later stages.
func RenderReport(p *types.RawProfile) []byte {
	md := renderMarkdown(p)

	ps := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: p.Analysis.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), ps, renderer)
}

func renderMarkdown(p *types.RawProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Analysis.Title)
	fmt.Fprintf(&b, "Generated %s.\n\n", p.Analysis.DateEnd.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Rows:** %d · **Columns:** %d\n\n", p.Table.N, p.Table.NVar)

	b.WriteString("| Column | Type | Distinct | Missing |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, col := range p.Columns {
		v := p.Variables[col]
		fmt.Fprintf(&b, "| %s | %v | %v | %v |\n",
			col, v["type"], v["n_distinct"], v["n_missing"])
	}
	b.WriteString("\n")

	for _, col := range p.Columns {
		v := p.Variables[col]
		fmt.Fprintf(&b, "## %s\n\n", col)
		fmt.Fprintf(&b, "- type: %v\n", v["type"])
		fmt.Fprintf(&b, "- distinct: %v (%.1f%%)\n", v["n_distinct"], percent(v["p_distinct"]))
		fmt.Fprintf(&b, "- missing: %v (%.1f%%)\n", v["n_missing"], percent(v["p_missing"]))
		for _, key := range []string{"min", "max", "mean", "std", "median"} {
			if val, ok := v[key]; ok {
				fmt.Fprintf(&b, "- %s: %v\n", key, val)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func percent(v any) float64 {
	if f, ok := v.(float64); ok {
		return f * 100
	}
	return 0
}
