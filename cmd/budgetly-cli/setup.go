package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetly/internal/cli"
)

var (
	flagSetupServer string
	flagSetupToken  string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Save server URL and token to the config file",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&flagSetupServer, "server", "", "Server URL to store")
	setupCmd.Flags().StringVar(&flagSetupToken, "token", "", "API token to store")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	if flagSetupServer != "" {
		cfg.Server.URL = flagSetupServer
	}
	if flagSetupToken != "" {
		cfg.Server.Token = flagSetupToken
	}

	if err := cli.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("Config written to %s\n", cli.ConfigPath())
	fmt.Printf("  server: %s\n", cfg.Server.URL)
	if cfg.Server.Token != "" {
		fmt.Println("  token:  configured")
	} else {
		fmt.Println("  token:  not set")
	}
	return nil
}
