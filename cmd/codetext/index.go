package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jward/codetext"
	"github.com/spf13/cobra"
)

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Parse a directory and save its symbol table as a snapshot",
	Long:  "Scans and parses every supported file, then stores the resulting symbol table as a new run in the SQLite snapshot database. 'codetext trace --from-snapshot' traces a run without re-parsing.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete the snapshot database before saving")
	addScanFlags(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("index", err)
	}
	repoRoot := findRepoRoot(targetDir)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return outputError("index", err)
	}
	dbPath := resolveDBPath(repoRoot, cfg)

	// Handle --force: delete the DB file entirely.
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return outputError("index", fmt.Errorf("removing database for --force: %w", err))
		}
		if !flagQuiet {
			fmt.Fprintln(os.Stderr, styles.Warning.Render("Cleared database: "+dbPath))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr)
	opts, err := engineOptions(cmd, cfg, logger)
	if err != nil {
		return outputError("index", err)
	}
	engine, err := codetext.New(opts...)
	if err != nil {
		return outputError("index", fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	stats, err := engine.Scan(ctx, targetDir, "")
	if err != nil {
		return outputError("index", fmt.Errorf("scanning: %w", err))
	}

	s, err := codetext.OpenStore(dbPath)
	if err != nil {
		return outputError("index", err)
	}
	defer s.Close()
	run, err := engine.SaveSnapshot(s)
	if err != nil {
		return outputError("index", err)
	}

	if !flagQuiet {
		fmt.Fprintln(os.Stderr, styles.Success.Render(fmt.Sprintf("Indexed %s in %s (%d files, %d elements, %d failures)",
			targetDir, time.Since(start).Round(time.Millisecond), stats.FilesProcessed, stats.Elements, len(stats.Failures))))
		fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	}
	return outputResult(CLIResult{Command: "index", Results: toCLIRun(run)})
}
