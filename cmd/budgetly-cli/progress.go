package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetly/internal/cli"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show spending progress for the active planner",
	RunE:  runProgress,
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

func runProgress(_ *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	report, err := client.GetProgress(ctx)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET PROGRESS"))
	fmt.Println()
	fmt.Print(cli.RenderProgressReport(report))
	fmt.Println()
	return nil
}
