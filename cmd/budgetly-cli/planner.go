package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"budgetly/internal/cli"
)

var (
	flagInitialAmount string
	flagStartDate     string
	flagEndDate       string
	flagCategories    []string
)

var plannerCmd = &cobra.Command{
	Use:   "planner",
	Short: "Show or replace the active planner",
	RunE:  runPlannerGet,
}

var plannerSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace your planner",
	Example: `  budgetly planner set --initial 2000 --start 2026-08-01 --end 2026-08-31 \
      -c Groceries=500 -c Medical=200`,
	RunE: runPlannerSet,
}

func init() {
	plannerSetCmd.Flags().StringVar(&flagInitialAmount, "initial", "", "Initial amount for the period")
	plannerSetCmd.Flags().StringVar(&flagStartDate, "start", "", "Start date (YYYY-MM-DD)")
	plannerSetCmd.Flags().StringVar(&flagEndDate, "end", "", "End date (YYYY-MM-DD)")
	plannerSetCmd.Flags().StringArrayVarP(&flagCategories, "category", "c", nil, "Category limit as Name=Amount (repeatable)")

	plannerCmd.AddCommand(plannerSetCmd)
	rootCmd.AddCommand(plannerCmd)
}

func runPlannerGet(_ *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	p, err := client.GetPlanner(ctx)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Println()
	fmt.Printf("  Period:  %s to %s\n", p.StartDate, p.EndDate)
	fmt.Printf("  Initial: %s\n", cli.FormatAmount(p.InitialAmount))
	fmt.Println()
	for _, c := range p.Categories {
		fmt.Printf("  %-14s %10s\n", c.Name, cli.FormatAmount(c.Limit))
	}
	fmt.Println()
	return nil
}

func runPlannerSet(_ *cobra.Command, _ []string) error {
	planner, err := plannerFromFlags()
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	saved, err := client.SetPlanner(ctx, planner)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Printf("Planner saved: %s to %s, %d categories\n", saved.StartDate, saved.EndDate, len(saved.Categories))
	return nil
}

func plannerFromFlags() (cli.Planner, error) {
	initial, err := strconv.ParseFloat(flagInitialAmount, 64)
	if err != nil {
		return cli.Planner{}, fmt.Errorf("invalid --initial %q", flagInitialAmount)
	}

	p := cli.Planner{
		InitialAmount: initial,
		StartDate:     flagStartDate,
		EndDate:       flagEndDate,
	}

	for _, spec := range flagCategories {
		name, limitStr, ok := strings.Cut(spec, "=")
		if !ok {
			return cli.Planner{}, fmt.Errorf("invalid category %q, expected Name=Amount", spec)
		}
		limit, err := strconv.ParseFloat(limitStr, 64)
		if err != nil {
			return cli.Planner{}, fmt.Errorf("invalid limit in %q", spec)
		}
		p.Categories = append(p.Categories, cli.CategoryLimit{Name: name, Limit: limit})
	}

	return p, nil
}
