package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/transitdraw/transitmap/pkg/cache"
	"github.com/transitdraw/transitmap/pkg/pipeline"
	"github.com/transitdraw/transitmap/pkg/store"
)

// Version information, set by main via SetVersion before Execute runs.
var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. Called
// by cmd/transitmap's main during initialization with values injected
// via ldflags at build time.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// Execute runs the transitmap CLI under ctx and returns an error if any
// command fails. The caller should pass the returned error through
// pipelineerr.ExitCode to determine the process exit status.
func Execute(ctx context.Context) error {
	var verbose bool
	var noCache bool
	var historyDir string

	root := &cobra.Command{
		Use:   "transitmap",
		Short: "transitmap orders and schematizes transit line networks",
		Long: `transitmap is the thin driver around the parse -> topology -> contract ->
order -> schematize pipeline: it reads a GeoJSON exchange document, runs
the pipeline stages, and writes back the same format with final station
positions and routed edge geometry.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			c, err := newCache(noCache)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			runner := pipeline.NewRunner(c, cache.NewDefaultKeyer(), logger)

			hist, err := store.NewFileStore(historyDir)
			if err != nil {
				return fmt.Errorf("initialize run history: %w", err)
			}

			ctx := withLogger(cmd.Context(), logger)
			ctx = withRunner(ctx, runner)
			ctx = withHistory(ctx, hist)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("transitmap %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the parse cache")
	root.PersistentFlags().StringVar(&historyDir, "history-dir", "", "run history directory (default: ~/.local/share/transitmap/runs)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newDotCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// newCache builds the CLI's parse cache: a NullCache when
// --no-cache is set or the cache directory can't be determined, a
// FileCache otherwise.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// runnerKeyVal/historyKeyVal let subcommands retrieve the shared Runner and
// run-history Store built once in PersistentPreRunE, the same pattern
// log.go uses for the logger.
type runnerCtxKey int
type historyCtxKey int

const (
	runnerKeyVal  runnerCtxKey  = 0
	historyKeyVal historyCtxKey = 0
)

func withRunner(ctx context.Context, r *pipeline.Runner) context.Context {
	return context.WithValue(ctx, runnerKeyVal, r)
}

func runnerFromContext(ctx context.Context) *pipeline.Runner {
	if r, ok := ctx.Value(runnerKeyVal).(*pipeline.Runner); ok {
		return r
	}
	return pipeline.NewRunner(nil, nil, nil)
}

func withHistory(ctx context.Context, s store.Store) context.Context {
	return context.WithValue(ctx, historyKeyVal, s)
}

func historyFromContext(ctx context.Context) store.Store {
	if s, ok := ctx.Value(historyKeyVal).(store.Store); ok {
		return s
	}
	return nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
