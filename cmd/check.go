package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:     "check <template-name>",
	Aliases: []string{"c"},
	Short:   "Load a template and inspect its structure",
	Long: `Load a template through the cache and print its structural outline:
metadata, heading sections, requirement references, and the completeness
score over the four canonical report sections.

Examples:
  templight check jp_investment_4part
  templight check jp_investment_4part -f json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var checkFlags *StandardFlags

func init() {
	rootCmd.AddCommand(checkCmd)
	checkFlags = AddStandardFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := validateFormat(checkFlags.OutputFormat); err != nil {
		return err
	}

	env, err := buildRuntime()
	if err != nil {
		return err
	}

	name := args[0]
	snap, err := env.store.Load(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to load template %q: %w", name, err)
	}

	if checkFlags.OutputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Structure)
	}

	s := snap.Structure
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Template:\t%s\n", name)
	fmt.Fprintf(w, "Loaded:\t%s\n", snap.LastLoadTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Source modified:\t%s\n", snap.LastKnownModTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Completeness:\t%.2f (complete: %v)\n", s.CompletenessScore, s.IsComplete)
	fmt.Fprintf(w, "Sections:\t%d\n", len(s.Sections))
	w.Flush()

	for _, section := range s.Sections {
		fmt.Printf("  L%d:%d  %s\n", section.Level, section.LineNumber, section.Title)
	}
	if len(s.RequirementTags) > 0 {
		fmt.Println("Requirements:")
		for _, tag := range s.RequirementTags {
			fmt.Printf("  - %s\n", tag)
		}
	}
	if len(s.Metadata) > 0 {
		fmt.Println("Metadata:")
		for k, v := range s.Metadata {
			fmt.Printf("  %s: %s\n", k, v)
		}
	}
	return nil
}
