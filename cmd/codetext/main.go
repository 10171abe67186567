package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jward/codetext"
	"github.com/jward/codetext/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagDB      string
	flagFormat  string
	flagQuiet   bool
	flagVerbose bool
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// stdout receives command results; progress and logs go to stderr.
var stdout io.Writer = os.Stdout

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "codetext",
	Short:         "Extract the logic chain behind a keyword",
	Long:          "Codetext scans Python, Rust and JavaScript sources, finds the element matching a keyword and traces the functions, classes and methods it references.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagQuiet && flagVerbose {
			return fmt.Errorf("--quiet and --verbose are mutually exclusive")
		}
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .codetext/config.yaml under the repo root)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "snapshot database path (default: snapshot.path from config)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress and log output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log every pipeline step")

	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(runsCmd)
}

// newLogger returns the CLI logger. Warnings are shown by default, errors
// only with --quiet, and everything with --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case flagQuiet:
		level = slog.LevelError
	case flagVerbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newReporter picks the progress sink for the current verbosity.
func newReporter(w io.Writer, logger *slog.Logger) codetext.ProgressReporter {
	switch {
	case flagQuiet:
		return codetext.NoOpProgress{}
	case flagVerbose:
		return codetext.NewLogProgress(logger)
	default:
		return newBarProgress(w)
	}
}

// loadConfig reads --config when given, else .codetext/config.yaml under
// repoRoot.
func loadConfig(repoRoot string) (*config.Config, error) {
	if flagConfig != "" {
		return config.NewFileLoader(flagConfig).Load()
	}
	return config.LoadConfigFromDir(repoRoot)
}

// resolveTargetDir returns the absolute path of the directory to scan.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the snapshot database path from --db, falling back
// to the configured snapshot.path. Relative paths are anchored at repoRoot.
func resolveDBPath(repoRoot string, cfg *config.Config) string {
	p := flagDB
	if p == "" {
		p = cfg.Snapshot.Path
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(repoRoot, p)
}

// openExistingStore opens the snapshot database, which must already exist.
func openExistingStore(dbPath string) (*codetext.Store, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot database not found: %s (run 'codetext index' first)", dbPath)
	}
	return codetext.OpenStore(dbPath)
}
