package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	TemplatesDir string
	Extension    string
	TTL          string
	OutputFormat string
}

// AddStandardFlags registers the shared template and output flags on a
// command. The viper bindings happen in PreRun so that only the executed
// command's flags back the shared keys; binding at init time would let
// the last-registered command shadow everyone else's flags.
func AddStandardFlags(cmd *cobra.Command) *StandardFlags {
	flags := &StandardFlags{}

	cmd.Flags().StringVar(&flags.TemplatesDir, "templates-dir", "", "Template source directory")
	cmd.Flags().StringVar(&flags.Extension, "extension", "", "Template file extension (including dot)")
	cmd.Flags().StringVar(&flags.TTL, "ttl", "", "Cache staleness window (e.g. 10m)")
	cmd.Flags().StringVarP(&flags.OutputFormat, "format", "f", "table", "Output format (table|json)")

	previous := cmd.PreRunE
	cmd.PreRunE = func(c *cobra.Command, args []string) error {
		if c.Flags().Changed("templates-dir") {
			bindFlag(c.Flags(), "templates.dir", "templates-dir")
		}
		if c.Flags().Changed("extension") {
			bindFlag(c.Flags(), "templates.extension", "extension")
		}
		if c.Flags().Changed("ttl") {
			bindFlag(c.Flags(), "templates.ttl", "ttl")
		}
		if previous != nil {
			return previous(c, args)
		}
		return nil
	}

	return flags
}

// bindFlag binds one pflag to a viper key when the flag exists.
func bindFlag(fs *pflag.FlagSet, key, name string) {
	if flag := fs.Lookup(name); flag != nil {
		viper.BindPFlag(key, flag)
	}
}

// validateFormat rejects unknown output formats early with a hint.
func validateFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table or json)", format)
	}
}
