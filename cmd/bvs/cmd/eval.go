package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mick2004/beyond-vector-search/internal/evaluator"
	"github.com/mick2004/beyond-vector-search/internal/ui"
)

func newEvalCmd() *cobra.Command {
	var (
		k       int
		strict  bool
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the offline evaluation loop and update router weights",
		Long: `eval scores every labeled query against all three strategies, applies the
pairwise weight update per query, and records one run per query in the
telemetry database. Only one eval may run against a database at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEval(cmd, k, strict, asJSON, verbose)
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Top-k depth per strategy (default: config eval.k)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat telemetry write failures as fatal")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full summary as JSON")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print per-query results")

	return cmd
}

func runEval(cmd *cobra.Command, k int, strict, asJSON, verbose bool) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	// Serialize eval runs against the same database. Concurrent passes would
	// interleave state writes and corrupt the weight trajectory.
	lock := flock.New(a.cfg.Data.DBPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire eval lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another eval is running against %s", a.cfg.Data.DBPath)
	}
	defer func() { _ = lock.Unlock() }()

	if k <= 0 {
		k = a.cfg.Eval.K
	}
	if a.cfg.Eval.Strict {
		strict = true
	}

	ev, err := evaluator.New(evaluator.Config{
		Keyword: a.keyword,
		Vector:  a.vector,
		Hybrid:  a.hybrid,
		Router:  a.router,
		Store:   a.store,
		Docs:    a.docsByID,
		Labels:  a.labels,
		K:       k,
		ScoreWeights: evaluator.Weights{
			Hit:   a.cfg.Eval.HitWeight,
			Exact: a.cfg.Eval.ExactWeight,
		},
		Strict: strict,
		Logger: slog.Default(),
	})
	if err != nil {
		return err
	}

	summary, err := ev.Run(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	st := ui.AutoStyles(os.Stdout)
	fmt.Fprintln(cmd.OutOrStdout(), st.Header.Render("Evaluation complete"))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %.4f\n", st.Label.Render(fmt.Sprintf("%-16s", "mean_score")), summary.MeanScore)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", st.Label.Render(fmt.Sprintf("%-16s", "queries")), summary.N)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", st.Label.Render(fmt.Sprintf("%-16s", "skipped")), summary.Skipped)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %.4f\n", st.Label.Render(fmt.Sprintf("%-16s", "total_regret")), summary.TotalRegret)
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), st.Header.Render("Router state"))
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderState(st, summary.State))

	if verbose {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), st.Header.Render("Per-query"))
		for _, q := range summary.PerQuery {
			line := fmt.Sprintf("%-12s %-8s total=%.2f regret=%.2f  %s",
				q.QueryID, q.Chosen, q.ChosenTotal, q.Regret, st.Dim.Render(q.Query))
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	return nil
}
