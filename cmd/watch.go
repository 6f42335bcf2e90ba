package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	templerrors "github.com/harusame/templight/internal/errors"
	"github.com/harusame/templight/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch template sources and keep the cache fresh",
	Long: `Run the freshness maintenance loop: an fsnotify watcher invalidates
cached templates the moment their source file changes, and a periodic
sweep compares source modification times against the cache and reloads
anything that is out of date.

Stops on SIGINT/SIGTERM.

Examples:
  templight watch
  templight watch --sweep-interval 1m`,
	RunE: runWatch,
}

var watchSweepInterval time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)
	AddStandardFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchSweepInterval, "sweep-interval", 0, "Override the update sweep interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := buildRuntime()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	interval := env.cfg.Watch.SweepInterval
	if watchSweepInterval > 0 {
		interval = watchSweepInterval
	}

	logger := env.logger.WithComponent("watch")

	if env.cfg.Watch.Enabled {
		tw, err := watcher.New(
			env.source.NameForPath,
			func(names []string) {
				env.store.ClearCache(names...)
				logger.Info(ctx, "invalidated templates after source change", "templates", names)
			},
			env.cfg.Watch.Debounce,
			env.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := tw.AddPath(env.cfg.Templates.Dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", env.cfg.Templates.Dir, err)
		}
		tw.Start(ctx)
		defer tw.Stop()
	}

	collector := templerrors.NewErrorCollector()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info(ctx, "watching templates",
		"dir", env.cfg.Templates.Dir,
		"sweep_interval", interval.String(),
		"fsnotify", env.cfg.Watch.Enabled,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			statuses := env.store.CheckForUpdates(ctx, collector)
			reloaded := 0
			for _, status := range statuses {
				if status.Reloaded {
					reloaded++
				}
			}
			if reloaded > 0 || collector.HasErrors() {
				logger.Info(ctx, "update sweep finished",
					"templates", len(statuses),
					"reloaded", reloaded,
					"errors", len(collector.Errors()),
				)
			}
			collector.Clear()
		}
	}
}
