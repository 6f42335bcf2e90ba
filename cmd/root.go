// Package cmd provides the command-line interface for templight with
// configuration loading from multiple sources.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (--config, --templates-dir, etc.)
//  2. TEMPLIGHT_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (TEMPLIGHT_TEMPLATES_DIR, etc.)
//  4. Configuration file (.templight.yml)
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "templight",
	Short: "Template freshness and report structure validation engine",
	Long: `Templight keeps a set of named prompt-template documents cached in
memory, reloading them whenever the source file changes or the staleness
window elapses, and validates that generated report text conforms to the
canonical four-part report structure.

Quick Start:
  templight check <name>          Inspect a template's structure
  templight validate <name>       Validate a generated report from stdin
  templight freshness             Show cache diagnostics
  templight watch                 Watch templates and sweep for updates`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .templight.yml, can also use TEMPLIGHT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TEMPLIGHT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".templight")
		viper.SetConfigType("yml")
	}

	viper.SetEnvPrefix("TEMPLIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and env cover everything
	_ = viper.ReadInConfig()
}
