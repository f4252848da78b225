package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"budgetly/internal/cli"
)

var (
	flagServer string
	flagToken  string
)

var rootCmd = &cobra.Command{
	Use:   "budgetly",
	Short: "Personal budget planner CLI",
	Long:  "Track your spending against a planner: expenses, incomes, and category progress.",
	RunE:  runProgress,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Server URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagToken, "token", "t", "", "API token (overrides config)")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// newClient builds the API client from flags, environment, and config file,
// in that order of precedence.
func newClient() (*cli.Client, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}

	server := flagServer
	if server == "" {
		server = cli.ServerURL(cfg)
	}
	token := flagToken
	if token == "" {
		token = cli.Token(cfg)
	}

	if token == "" {
		return nil, errors.New("no API token configured, run 'budgetly setup' or set BUDGETLY_TOKEN")
	}

	return cli.NewClient(server, token), nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// friendlyError rewords API sentinel errors for terminal users.
func friendlyError(err error) error {
	switch {
	case errors.Is(err, cli.ErrUnauthorized):
		return errors.New("authentication failed, check your token ('budgetly setup')")
	case errors.Is(err, cli.ErrNoPlanner):
		return errors.New("no active planner, create one with 'budgetly planner set'")
	default:
		return err
	}
}
