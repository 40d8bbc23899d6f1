package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transitdraw/transitmap/pkg/store"
)

// newHistoryCmd creates the "history" command group for inspecting past
// pipeline runs recorded by run.go into the run-history store.
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past pipeline runs",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent pipeline runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			hist := historyFromContext(cmd.Context())
			if hist == nil {
				printInfo("Run history is unavailable")
				return nil
			}
			runs, err := hist.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded yet")
				return nil
			}
			for _, r := range runs {
				printRunSummary(r)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the full record for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hist := historyFromContext(cmd.Context())
			if hist == nil {
				printInfo("Run history is unavailable")
				return nil
			}
			run, err := hist.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printKeyValue("ID", run.ID)
			printKeyValue("Status", string(run.Status))
			if run.Status == store.StatusFailed {
				printKeyValue("Error", fmt.Sprintf("%s (%s)", run.ErrorMsg, run.ErrorCode))
			}
			printKeyValue("Network hash", run.NetworkHash)
			printKeyValue("Nodes/Edges", fmt.Sprintf("%d/%d", run.NodeCount, run.EdgeCount))
			printKeyValue("Duration", fmt.Sprintf("%dms", run.DurationMS))
			printKeyValue("Created", run.CreatedAt.Format("2006-01-02 15:04:05"))
			for stage, ms := range run.Stages {
				printKeyValue("  "+stage, fmt.Sprintf("%dms", ms))
			}
			return nil
		},
	}
}

func printRunSummary(r *store.Run) {
	status := string(r.Status)
	switch r.Status {
	case store.StatusFailed:
		status = r.ErrorCode + ": " + r.ErrorMsg
	case store.StatusSucceeded:
		status = fmt.Sprintf("ok (%d nodes, %d edges, %dms)", r.NodeCount, r.EdgeCount, r.DurationMS)
	}
	printKeyValue(r.CreatedAt.Format("2006-01-02 15:04")+" "+r.ID, status)
}
