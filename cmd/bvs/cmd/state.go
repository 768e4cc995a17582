package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mick2004/beyond-vector-search/internal/router"
	"github.com/mick2004/beyond-vector-search/internal/ui"
)

func newStateCmd() *cobra.Command {
	var (
		reset  bool
		runs   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show or reset the persisted router state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runState(cmd, reset, runs, asJSON)
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Reset weights and update count to zero")
	cmd.Flags().IntVar(&runs, "runs", 0, "Also show the N most recent telemetry runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of styled output")

	return cmd
}

func runState(cmd *cobra.Command, reset bool, runs int, asJSON bool) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if reset {
		data, err := router.DefaultState().Marshal()
		if err != nil {
			return err
		}
		if err := a.store.SetState(ctx, a.cfg.Router.StateKey, data); err != nil {
			return fmt.Errorf("reset router state: %w", err)
		}
		if err := a.router.LoadState(ctx); err != nil {
			return err
		}
	}

	state := a.router.State()

	if asJSON {
		out := map[string]any{"state": state}
		if runs > 0 {
			recent, err := a.store.RecentRuns(ctx, runs)
			if err != nil {
				return err
			}
			out["runs"] = recent
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	st := ui.AutoStyles(os.Stdout)
	if reset {
		fmt.Fprintln(cmd.OutOrStdout(), st.Warning.Render("Router state reset."))
	}
	fmt.Fprintln(cmd.OutOrStdout(), st.Header.Render("Router state"))
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderState(st, state))

	if runs > 0 {
		recent, err := a.store.RecentRuns(ctx, runs)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), st.Header.Render(fmt.Sprintf("Recent runs (%d)", len(recent))))
		for _, r := range recent {
			line := fmt.Sprintf("%s %-8s score=%.2f %dms  %s",
				r.Timestamp.Format("2006-01-02 15:04:05"),
				r.Strategy, r.Score, r.LatencyMS, st.Dim.Render(r.Query))
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
	return nil
}
