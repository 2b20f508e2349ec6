package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sentinel-hq/sentinel/pkg/cli"
)

const defaultEnvFile = ".env"

var (
	// Global flags
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Sentinel - background intelligence for travel compliance",
	Long: `Sentinel watches a traveller's session and computes insights in the
background: Schengen compliance warnings, travel deals, price changes and
trip optimizations.

It routes each question to the cheapest AI provider that can answer it
(OpenAI, Perplexity or OpenRouter) and enforces daily, monthly and per-user
spending ceilings against a usage ledger.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and SENTINEL_* environment when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadEnvFile loads the dotenv file into the process environment. Variables
// already set win. The default file may be absent; an explicit one may not.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	if envFile == "" {
		return nil
	}
	err := godotenv.Load(envFile)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	return fmt.Errorf("failed to load env file %q: %w", envFile, err)
}
