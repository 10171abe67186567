package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved snapshots",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete a saved snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.AddCommand(runsDeleteCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	s, err := openStoreFromCwd("runs")
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs()
	if err != nil {
		return outputError("runs", err)
	}
	out := make([]CLIRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, toCLIRun(r))
	}
	total := len(out)
	return outputResult(CLIResult{Command: "runs", Results: out, TotalCount: &total})
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	s, err := openStoreFromCwd("runs delete")
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.RunByID(args[0])
	if err != nil {
		return outputError("runs delete", err)
	}
	if err := s.DeleteRun(run.ID); err != nil {
		return outputError("runs delete", fmt.Errorf("deleting run %s: %w", run.ID, err))
	}
	return outputResult(CLIResult{Command: "runs delete", Results: toCLIRun(run)})
}
