package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mick2004/beyond-vector-search/internal/answer"
	"github.com/mick2004/beyond-vector-search/internal/feature"
	"github.com/mick2004/beyond-vector-search/internal/retriever"
	"github.com/mick2004/beyond-vector-search/internal/router"
	"github.com/mick2004/beyond-vector-search/internal/telemetry"
	"github.com/mick2004/beyond-vector-search/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var (
		k        int
		strategy string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Route a query, retrieve ranked documents, and print an answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], k, strategy, asJSON)
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Top-k results (default: config retrieval.k)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Force a strategy: keyword, vector, or hybrid")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of styled output")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, k int, forced string, asJSON bool) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if k <= 0 {
		k = a.cfg.Retrieval.K
	}

	chosen, feats, routeScores := a.router.Choose(query)
	routed := true
	if forced != "" {
		chosen = retriever.Strategy(forced)
		routed = false
	}
	searcher, err := a.searcherFor(chosen)
	if err != nil {
		return err
	}

	start := time.Now()
	results := searcher.Search(query, k)
	latency := time.Since(start)

	ans := answer.Generate(query, results, a.docsByID)

	rec := telemetryRecord(query, chosen, feats, routeScores, results, latency)
	if err := a.store.AppendRun(ctx, rec); err != nil {
		// Retrieval still completes when the sink is unavailable.
		slog.Warn("telemetry write failed", slog.String("error", err.Error()))
	}

	if asJSON {
		out := map[string]any{
			"query":    query,
			"strategy": chosen,
			"routed":   routed,
			"features": feats,
			"results":  results,
			"answer":   ans,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	st := ui.AutoStyles(os.Stdout)
	fmt.Fprintln(cmd.OutOrStdout(), st.Header.Render("Strategy:"), string(chosen))
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderResults(st, results, a.docsByID))
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
	return nil
}

func telemetryRecord(query string, chosen retriever.Strategy, feats feature.Features, routeScores router.Scores, results []retriever.Result, latency time.Duration) telemetry.RunRecord {
	top := ""
	topScore := 0.0
	if len(results) > 0 {
		top = results[0].DocID
		topScore = results[0].Score
	}
	return telemetry.RunRecord{
		RunID:     uuid.NewString(),
		Timestamp: time.Now(),
		Query:     query,
		Strategy:  string(chosen),
		Score:     topScore,
		LatencyMS: latency.Milliseconds(),
		Meta: map[string]any{
			"features":     feats,
			"route_scores": routeScores,
			"top_doc_id":   top,
			"n_results":    len(results),
		},
	}
}
