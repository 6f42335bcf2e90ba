package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:     "validate <template-name> [report-file]",
	Aliases: []string{"v"},
	Short:   "Validate a generated report against the canonical structure",
	Long: `Validate generated report text against the four canonical report
sections (Executive Summary, Benefits, Risks, Evidence), accepting the
configured synonym table for localized headings.

The report is read from the given file, or from stdin when no file is
given.

Examples:
  templight validate jp_investment_4part report.md
  cat report.md | templight validate jp_investment_4part
  templight validate jp_investment_4part report.md -f json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runValidate,
}

var validateFlags *StandardFlags

func init() {
	rootCmd.AddCommand(validateCmd)
	validateFlags = AddStandardFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := validateFormat(validateFlags.OutputFormat); err != nil {
		return err
	}

	env, err := buildRuntime()
	if err != nil {
		return err
	}

	name := args[0]
	var reportText string
	if len(args) == 2 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read report file: %w", err)
		}
		reportText = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read report from stdin: %w", err)
		}
		reportText = string(data)
	}

	validation := env.engine.ValidateGeneratedReport(cmd.Context(), reportText, name)

	if validateFlags.OutputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(validation); err != nil {
			return err
		}
	} else {
		fmt.Printf("Template: %s\n", validation.TemplateName)
		fmt.Printf("Quality score: %.2f\n", validation.QualityScore)
		fmt.Printf("Success: %v\n", validation.Success)
		for _, match := range validation.Matches {
			fmt.Printf("  ok  %s\n", match)
		}
		for _, issue := range validation.Issues {
			fmt.Printf("  !!  %s\n", issue)
		}
	}

	if !validation.Success {
		os.Exit(1)
	}
	return nil
}
