package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/sheaf/internal/assemble"
	"github.com/jackzampolin/sheaf/internal/config"
)

var (
	watchOut      string
	watchLangs    string
	watchWorkers  int
	watchDebounce time.Duration
	watchVerbose  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Assemble a folder and re-assemble whenever it changes",
	Long: `Watch assembles the folder once, then keeps watching it and re-runs
the assembly after changes settle. Config file changes are picked up
between runs; flags given here stay pinned. Stop it with Ctrl+C.

Examples:
  sheaf watch ~/scans
  sheaf watch ~/scans --debounce 5s --out ~/docs/bundle.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		folder := args[0]
		logger := newLogger(watchVerbose)

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		// The output path is resolved once: the event filter below needs a
		// stable destination for the lifetime of the watch.
		outPath, langs, _, err := resolveRunInputs(mgr.Get(), folder, watchOut, watchLangs, watchWorkers)
		if err != nil {
			return err
		}
		warnMissingLanguages(logger, langs)

		mgr.OnChange(func(*config.Config) {
			logger.Info("config reloaded, next assembly uses the new settings")
		})
		mgr.WatchConfig()

		run := func() {
			cfg := mgr.Get()
			_, langs, workers, err := resolveRunInputs(cfg, folder, watchOut, watchLangs, watchWorkers)
			if err != nil {
				logger.Error("invalid configuration", "error", err)
				return
			}

			p := buildPipeline(cfg, langs, workers, logger)
			outcome, err := p.Run(ctx, assemble.Request{
				FolderPath: folder,
				OutputPath: outPath,
				Progress:   progressLogger(logger),
			})
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("assembly failed", "error", err)
				}
				return
			}
			logger.Info("assembled",
				"output", outcome.OutputPath,
				"pages", outcome.Pages,
				"merged", outcome.Merged,
				"skipped", len(outcome.Skipped),
			)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(folder); err != nil {
			return err
		}

		run()
		logger.Info("watching for changes", "folder", folder, "debounce", watchDebounce)

		debounce := time.NewTimer(watchDebounce)
		debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil

			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ignoreWatchEvent(ev, outPath) {
					continue
				}
				logger.Debug("change detected", "op", ev.Op.String(), "path", ev.Name)
				debounce.Reset(watchDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watch error", "error", err)

			case <-debounce.C:
				run()
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchOut, "out", "", "output PDF path (default: <folder>/output.pdf)")
	watchCmd.Flags().StringVar(&watchLangs, "langs", "", "'+'-joined tesseract language codes (default from config)")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 0, "concurrent page workers (default: one per CPU)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "settle time before re-assembling")
	watchCmd.Flags().BoolVar(&watchVerbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(watchCmd)
}

// ignoreWatchEvent filters out the events every run produces itself: the
// output document and its staging files. Without this, writing the output
// into the watched folder would retrigger forever.
func ignoreWatchEvent(ev fsnotify.Event, outPath string) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}
	name := filepath.Clean(ev.Name)
	if name == filepath.Clean(outPath) {
		return true
	}
	return strings.HasPrefix(filepath.Base(name), ".sheaf-")
}
