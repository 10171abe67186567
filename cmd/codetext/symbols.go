package main

import (
	"fmt"

	"github.com/jward/codetext"
	"github.com/spf13/cobra"
)

var (
	flagRun         string
	flagSymbolMatch string
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [KEYWORD]",
	Short: "List the symbol table of a snapshot",
	Long:  "Lists the top-level elements of a saved run (default: the latest), optionally filtered by KEYWORD.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVar(&flagRun, "run", "", "run ID (default: latest)")
	symbolsCmd.Flags().StringVar(&flagSymbolMatch, "match", "substring", "keyword match policy: substring|exact|prefix")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	s, run, err := openRun("symbols")
	if err != nil {
		return err
	}
	defer s.Close()

	policy, err := codetext.ParseMatchPolicy(flagSymbolMatch)
	if err != nil {
		return outputError("symbols", err)
	}

	var elements []*codetext.CodeElement
	if len(args) > 0 && policy == codetext.MatchExact {
		elements, err = s.ElementsByNames(run.ID, args[:1])
	} else {
		elements, err = s.LoadSnapshot(run.ID)
	}
	if err != nil {
		return outputError("symbols", err)
	}
	syms := make([]CLISymbol, 0, len(elements))
	for _, el := range elements {
		if len(args) > 0 && !policy.Matches(el.Name, args[0]) {
			continue
		}
		syms = append(syms, toCLISymbol(el))
	}
	total := len(syms)
	return outputResult(CLIResult{Command: "symbols", Results: syms, TotalCount: &total})
}

// openStoreFromCwd opens the snapshot database of the repository holding
// the working directory. Errors are already reported through outputError.
func openStoreFromCwd(command string) (*codetext.Store, error) {
	cwd, err := resolveTargetDir(nil)
	if err != nil {
		return nil, outputError(command, err)
	}
	repoRoot := findRepoRoot(cwd)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return nil, outputError(command, err)
	}
	s, err := openExistingStore(resolveDBPath(repoRoot, cfg))
	if err != nil {
		return nil, outputError(command, err)
	}
	return s, nil
}

// openRun opens the snapshot database and resolves --run, or the latest
// run when it is empty.
func openRun(command string) (*codetext.Store, *codetext.Run, error) {
	s, err := openStoreFromCwd(command)
	if err != nil {
		return nil, nil, err
	}

	var run *codetext.Run
	if flagRun == "" {
		run, err = s.LatestRun()
	} else {
		run, err = s.RunByID(flagRun)
	}
	if err != nil {
		s.Close()
		return nil, nil, outputError(command, fmt.Errorf("resolving run: %w", err))
	}
	return s, run, nil
}
