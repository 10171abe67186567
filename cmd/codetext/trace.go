package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jward/codetext"
	"github.com/jward/codetext/internal/config"
	"github.com/jward/codetext/internal/runtime"
	"github.com/jward/codetext/scripts"
	"github.com/spf13/cobra"
)

// latestRun is the --from-snapshot value that selects the newest run.
const latestRun = "latest"

var (
	flagTimeout      time.Duration
	flagMaxDepth     int
	flagFullDepth    int
	flagMatch        string
	flagFromSnapshot string
	flagDot          string
	flagNoInput      bool
	flagScript       string
	flagScriptsDir   string
	flagWorkers      int
	flagNoGit        bool
)

var traceCmd = &cobra.Command{
	Use:   "trace KEYWORD [path]",
	Short: "Find an element by keyword and trace its logic chain",
	Long: "Scans the directory (default: current), finds the function, class or method matching KEYWORD " +
		"and prints it with every element it transitively references. Type 'q' and Enter to stop early.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runTrace,
}

func init() {
	f := traceCmd.Flags()
	f.DurationVar(&flagTimeout, "timeout", 0, "wall-clock budget for the run (default from config, 300s)")
	f.IntVar(&flagMaxDepth, "max-depth", 0, "deepest traced level (default from config, 20)")
	f.IntVar(&flagFullDepth, "full-depth", 0, "nested levels printed with full content (default from config, 2)")
	f.StringVar(&flagMatch, "match", "", "keyword match policy: substring|exact|prefix")
	f.StringVar(&flagFromSnapshot, "from-snapshot", "", "trace a saved snapshot instead of scanning (run ID, or latest)")
	f.Lookup("from-snapshot").NoOptDefVal = latestRun
	f.StringVar(&flagDot, "dot", "", "also write the logic chain as Graphviz DOT to this file")
	f.BoolVar(&flagNoInput, "no-input", false, "do not listen on stdin for 'q'")
	f.StringVar(&flagScript, "script", "", "Risor reference script path or name under references/ (bare flag: bundled "+scripts.DefaultReferences+")")
	f.Lookup("script").NoOptDefVal = scripts.DefaultReferences
	f.StringVar(&flagScriptsDir, "scripts-dir", "", "load scripts from disk path instead of embedded")
	addScanFlags(traceCmd)
}

// addScanFlags registers the file-phase flags shared by trace and index.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrent file tasks (default from config, one per CPU)")
	cmd.Flags().BoolVar(&flagNoGit, "no-git", false, "walk the directory instead of asking git for the file list")
}

func runTrace(cmd *cobra.Command, args []string) error {
	keyword := args[0]
	targetDir, err := resolveTargetDir(args[1:])
	if err != nil {
		return outputError("trace", err)
	}
	repoRoot := findRepoRoot(targetDir)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return outputError("trace", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr)
	cancel := codetext.NewCancelFlag()
	opts, err := engineOptions(cmd, cfg, logger)
	if err != nil {
		return outputError("trace", err)
	}
	opts = append(opts, codetext.WithCancelFlag(cancel))

	engine, err := codetext.New(opts...)
	if err != nil {
		return outputError("trace", fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	if !flagNoInput {
		listenCtx, stopListening := context.WithCancel(ctx)
		defer stopListening()
		if !flagQuiet {
			fmt.Fprintln(os.Stderr, styles.Muted.Render("Type '"+codetext.QuitCommand+"' and press Enter to stop."))
		}
		go codetext.ListenForQuit(listenCtx, os.Stdin, cancel)
	}

	var res *codetext.Result
	if cmd.Flags().Changed("from-snapshot") {
		res, err = traceSnapshot(ctx, engine, resolveDBPath(repoRoot, cfg), keyword)
	} else {
		res, err = engine.Extract(ctx, targetDir, keyword)
	}
	if err != nil {
		if res == nil || !(errors.Is(err, codetext.ErrCancelled) || errors.Is(err, codetext.ErrTimeout)) {
			return outputError("trace", err)
		}
		// Partial chain: print what was traced, then fail. Nothing is
		// printed when the trace stopped before reaching a root.
		if res.Element != nil {
			if outErr := writeTrace(res); outErr != nil {
				return outErr
			}
		}
		return outputError("trace", err)
	}

	if flagDot != "" && res.Found() {
		if err := writeDOTFile(flagDot, res.Element); err != nil {
			return outputError("trace", err)
		}
		logger.Info("wrote logic chain graph", "path", flagDot)
	}
	return writeTrace(res)
}

// traceSnapshot loads a saved run into engine and traces keyword against it.
func traceSnapshot(ctx context.Context, engine *codetext.Engine, dbPath, keyword string) (*codetext.Result, error) {
	s, err := openExistingStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	runID := flagFromSnapshot
	if runID == latestRun {
		runID = ""
	}
	if _, err := engine.LoadSnapshot(s, runID); err != nil {
		return nil, err
	}
	return engine.Trace(ctx, keyword)
}

// engineOptions maps the loaded config and any explicitly set flags onto
// engine options. Flags win over config.
func engineOptions(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) ([]codetext.Option, error) {
	opts := []codetext.Option{
		codetext.WithConfig(cfg),
		codetext.WithLogger(logger),
		codetext.WithProgress(newReporter(os.Stderr, logger)),
	}

	f := cmd.Flags()
	if f.Changed("timeout") {
		opts = append(opts, codetext.WithTimeout(flagTimeout))
	}
	if f.Changed("max-depth") {
		opts = append(opts, codetext.WithMaxDepth(flagMaxDepth))
	}
	if f.Changed("full-depth") {
		opts = append(opts, codetext.WithFullDepth(flagFullDepth))
	}
	if f.Changed("match") {
		m, err := codetext.ParseMatchPolicy(flagMatch)
		if err != nil {
			return nil, err
		}
		opts = append(opts, codetext.WithMatchPolicy(m))
	}
	if f.Changed("workers") {
		opts = append(opts, codetext.WithWorkers(flagWorkers))
	}
	if f.Changed("no-git") {
		opts = append(opts, codetext.WithGit(!flagNoGit))
	}
	if f.Changed("script") {
		opts = append(opts, codetext.WithReferenceScript(scriptPath(flagScript)))
	}

	// Script source: --scripts-dir overrides embedded FS.
	if flagScriptsDir != "" {
		opts = append(opts, codetext.WithScriptsDir(flagScriptsDir))
	} else {
		opts = append(opts, codetext.WithScriptsFS(scripts.FS))
	}
	return opts, nil
}

// scriptPath maps a bare script name such as "extras" to its path under
// references/. Anything that looks like a path is returned unchanged.
func scriptPath(s string) string {
	if strings.ContainsAny(s, `/\`) || strings.HasSuffix(s, ".risor") {
		return s
	}
	return runtime.ReferenceScriptPath(s)
}

func writeTrace(res *codetext.Result) error {
	if flagFormat == "text" {
		_, err := fmt.Fprint(stdout, res.String())
		return err
	}
	return outputResult(CLIResult{Command: "trace", Results: toCLITrace(res)})
}

func writeDOTFile(path string, root *codetext.CodeElement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := codetext.WriteDOT(f, root); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
