package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect pipeline run history",
	Long:  "Commands for listing past runs and viewing their exported prospects.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipeline runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, limit)
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

// -- runs prospects --

var runsProspectsCmd = &cobra.Command{
	Use:   "prospects <run-id>",
	Short: "List the prospects exported by a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		prospects, err := st.GetProspects(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs prospects")
		}

		if len(prospects) == 0 {
			fmt.Fprintln(os.Stderr, "No prospects found.")
			return nil
		}

		formatProspects(os.Stdout, prospects)
		return nil
	},
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tMODE\tSTATUS\tDISCOVERED\tEXPORTED\tOUTPUT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t----------\t--------\t------\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.Mode, r.Status, r.Discovered, r.Exported,
			r.OutputFile, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

// formatProspects writes a tabular list of prospects to out.
func formatProspects(out io.Writer, prospects []*model.BusinessRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCITY\tSTATE\tSCORE\tFIT\tWEBSITE")
	_, _ = fmt.Fprintln(w, "----\t----\t-----\t-----\t---\t-------")

	for _, p := range prospects {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\n",
			p.Name, p.City, p.State, p.ICPScore, p.FitCategory, p.Website)
	}
	_ = w.Flush()
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsProspectsCmd)
	rootCmd.AddCommand(runsCmd)
}
