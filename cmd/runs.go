package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded assignment runs",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assignment runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		dataset, _ := cmd.Flags().GetString("dataset")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Dataset: dataset, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run with its per-point assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		assignments, err := st.ListAssignments(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		fmt.Printf("run %s dataset=%s column=%s step=%g limit=%g\n",
			run.ID, run.Dataset, run.Column, run.Step, run.Limit)
		fmt.Printf("total=%d strict=%d buffered=%d unknown=%d created=%s\n",
			run.Total, run.Strict, run.Buffered, run.Unknown,
			run.CreatedAt.Format("2006-01-02 15:04"))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "POINT\tREGION\tBUFFER\tAMBIGUOUS")
		for _, a := range assignments {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%g\t%t\n", a.PointID, a.RegionID, a.Radius, a.Ambiguous)
		}
		return w.Flush()
	},
}

// -- runs delete --

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and its assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if err := st.DeleteRun(ctx, args[0]); err != nil {
			return eris.Wrap(err, "runs delete")
		}
		fmt.Println("deleted", args[0])
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("dataset", "", "filter by dataset name")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// saveRun records an assignment run in the database and returns nothing
// the caller needs beyond the log line with the new run id.
func saveRun(ctx context.Context, dataset string, opts assign.Options, res *assign.Result) error {
	st, err := initStore()
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, assignments := store.RunFromResult(dataset, opts, res)
	if err := st.SaveRun(ctx, run, assignments); err != nil {
		return eris.Wrap(err, "save run")
	}

	zap.L().Info("run recorded",
		zap.String("run_id", run.ID),
		zap.String("dataset", dataset),
		zap.Int("points", run.Total),
	)
	return nil
}

// saveRunWithAggregates records a run plus one derived regional metric.
func saveRunWithAggregates(ctx context.Context, dataset string, opts assign.Options, res *assign.Result, metric string, byRegion map[string]float64) error {
	st, err := initStore()
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, assignments := store.RunFromResult(dataset, opts, res)
	if err := st.SaveRun(ctx, run, assignments); err != nil {
		return eris.Wrap(err, "save run")
	}
	if err := st.SaveAggregates(ctx, store.AggregatesFromMap(run.ID, metric, byRegion)); err != nil {
		return eris.Wrap(err, "save aggregates")
	}

	zap.L().Info("run recorded",
		zap.String("run_id", run.ID),
		zap.String("dataset", dataset),
		zap.String("metric", metric),
		zap.Int("points", run.Total),
		zap.Int("regions", len(byRegion)),
	)
	return nil
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATASET\tCOLUMN\tSTEP\tLIMIT\tTOTAL\tSTRICT\tBUFFERED\tUNKNOWN\tCREATED")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%d\t%d\t%d\t%d\t%s\n",
			truncateID(r.ID),
			r.Dataset,
			r.Column,
			r.Step,
			r.Limit,
			r.Total,
			r.Strict,
			r.Buffered,
			r.Unknown,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
