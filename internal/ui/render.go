package ui

import (
	"fmt"
	"strings"

	"github.com/mick2004/beyond-vector-search/internal/corpus"
	"github.com/mick2004/beyond-vector-search/internal/retriever"
	"github.com/mick2004/beyond-vector-search/internal/router"
)

// RenderResults formats ranked results as numbered lines with titles.
func RenderResults(st Styles, results []retriever.Result, docs map[string]corpus.Document) string {
	if len(results) == 0 {
		return st.Dim.Render("(no results)")
	}
	var b strings.Builder
	for i, r := range results {
		title := ""
		if d, ok := docs[r.DocID]; ok {
			title = d.Title
		}
		line := fmt.Sprintf("%2d. %s %s %s",
			i+1,
			st.Success.Render(r.DocID),
			title,
			st.Dim.Render(fmt.Sprintf("(%.4f)", r.Score)))
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderState formats the router state as aligned label/value lines.
func RenderState(st Styles, state router.State) string {
	rows := []struct {
		label string
		value string
	}{
		{"weight_keyword", fmt.Sprintf("%+.4f", state.WeightKeyword)},
		{"weight_vector", fmt.Sprintf("%+.4f", state.WeightVector)},
		{"weight_hybrid", fmt.Sprintf("%+.4f", state.WeightHybrid)},
		{"learning_rate", fmt.Sprintf("%.4f", state.LearningRate)},
		{"update_count", fmt.Sprintf("%d", state.UpdateCount)},
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n", st.Label.Render(fmt.Sprintf("%-16s", row.label)), row.value))
	}
	return strings.TrimRight(b.String(), "\n")
}
