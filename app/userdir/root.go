package main

import (
	"fmt"
	"os"

	"github.com/jrazmi/userdir/app/userdir/config"
	"github.com/jrazmi/userdir/sdk/environment"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "userdir",
	Short: "User directory service",
	Long: `Userdir stores user records in Postgres and serves them over a JSON HTTP API
with filtered, ordered, page-limited listing.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c",
		environment.GetEnvOrDefault(config.EnvPrefix+"_CONFIG", ""),
		"config file path (env USERDIR_CONFIG)")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
