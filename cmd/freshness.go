package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var freshnessCmd = &cobra.Command{
	Use:   "freshness [template-name]",
	Short: "Show cache freshness diagnostics",
	Long: `Show the TTL view of the template cache: which templates are cached,
how old each entry is, and which would be reloaded on next access.

This is a diagnostics read; it never triggers a reload itself.

Examples:
  templight freshness
  templight freshness jp_investment_4part -f json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFreshness,
}

var freshnessFlags *StandardFlags

func init() {
	rootCmd.AddCommand(freshnessCmd)
	freshnessFlags = AddStandardFlags(freshnessCmd)
}

func runFreshness(cmd *cobra.Command, args []string) error {
	if err := validateFormat(freshnessFlags.OutputFormat); err != nil {
		return err
	}

	env, err := buildRuntime()
	if err != nil {
		return err
	}

	infos := env.store.FreshnessAll()
	if len(args) == 1 {
		infos = infos[:0]
		infos = append(infos, env.store.Freshness(args[0]))
	}

	if freshnessFlags.OutputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCACHED\tAGE\tEXPIRED\tNEEDS RELOAD")
	for _, info := range infos {
		age := "-"
		if info.IsCached {
			age = info.CacheAge.Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%v\t%s\t%v\t%v\n",
			info.Name, info.IsCached, age, info.IsExpired, info.NeedsReload)
	}
	w.Flush()

	stats := env.store.Stats()
	fmt.Printf("\nentries=%d hits=%d misses=%d reloads=%d (ttl %s)\n",
		stats.Entries, stats.Hits, stats.Misses, stats.Reloads, env.store.TTL())
	return nil
}
