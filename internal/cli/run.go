package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/transitdraw/transitmap/pkg/config"
	"github.com/transitdraw/transitmap/pkg/graph/geojson"
	"github.com/transitdraw/transitmap/pkg/pipeline"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
	"github.com/transitdraw/transitmap/pkg/store"
)

// newRunCmd creates the "run" command: the full parse -> topology ->
// contract -> order -> schematize pipeline over a GeoJSON exchange
// document.
func newRunCmd() *cobra.Command {
	var (
		output     string
		configPath string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "run [exchange.json]",
		Short: "Run the full pipeline on a GeoJSON exchange document",
		Long: `Run reads a GeoJSON exchange document (§6), orders each line bundle's
slot assignment, places every station on a schematic grid, and routes
every edge, writing the result back in the same exchange format with
final positions and geometry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), args[0], output, configPath, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.out.json)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "transitmap.toml", "configuration file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and recompute every stage")

	return cmd
}

func runPipeline(ctx context.Context, input, output, configPath string, refresh bool) error {
	logger := loggerFromContext(ctx)
	runner := runnerFromContext(ctx)
	hist := historyFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return pipelineerr.Wrap(pipelineerr.CodeMalformedInput, err, "open input %s", input)
	}
	defer f.Close()

	opts := pipeline.Options{
		Topology:   cfg.Topology(),
		Quality:    cfg.Quality(),
		Schematize: cfg.Schematize(),
		Refresh:    refresh,
		Logger:     logger,
	}

	runID, _ := store.NewID()
	run := &store.Run{ID: runID, Status: store.StatusRunning, CreatedAt: time.Now()}
	saveRun(ctx, hist, run)

	spinner := newSpinnerWithContext(ctx, "Running pipeline...")
	spinner.Start()

	start := time.Now()
	result, err := runner.Execute(ctx, f, opts)
	run.DurationMS = time.Since(start).Milliseconds()
	run.CompletedAt = time.Now()

	if err != nil {
		spinner.StopWithError("Pipeline failed")
		run.Status = store.StatusFailed
		run.ErrorCode = string(pipelineerr.GetCode(err))
		run.ErrorMsg = pipelineerr.UserMessage(err)
		saveRun(ctx, hist, run)
		return err
	}
	spinner.Stop()

	run.Status = store.StatusSucceeded
	run.NetworkHash = result.NetworkHash
	run.NodeCount = result.Stats.NodeCount
	run.EdgeCount = result.Stats.EdgeCount
	saveRun(ctx, hist, run)

	outputPath := output
	if outputPath == "" {
		outputPath = input + ".out.json"
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "create output %s", outputPath)
	}
	defer out.Close()
	if err := geojson.Write(out, result.Network); err != nil {
		return pipelineerr.Wrap(pipelineerr.CodeInvariantViolated, err, "write output %s", outputPath)
	}

	printSuccess("Pipeline complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.ParseHit)
	printKeyValue("Grid size", fmt.Sprintf("%dx%d", result.Layout.Width, result.Layout.Height))
	printKeyValue("Run ID", runID)
	printNewline()
	printNextStep("Export debug dot", "transitmap dot "+outputPath)

	return nil
}

func saveRun(ctx context.Context, hist store.Store, run *store.Run) {
	if hist == nil {
		return
	}
	if err := hist.Put(ctx, run); err != nil {
		loggerFromContext(ctx).Warn("save run history failed", "run", run.ID, "err", err)
	}
}
