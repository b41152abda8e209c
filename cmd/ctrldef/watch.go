package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <table>",
	Short: "Recompile a control table whenever it changes",
	Long: `Compile a control table, then watch it and recompile on every
write until interrupted. Results are logged.

Examples:
  ctrldef watch controls.csv --log-level info`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchTable(ctx, args[0], recompile)
}

func recompile(path string) {
	reg, err := compileFile(path)
	if err != nil {
		logger.Error().Err(err).Msg("compile failed")
		return
	}
	logger.Info().
		Str("table", path).
		Int("controls", reg.Len()).
		Int("namespaces", len(reg.Namespaces())).
		Msg("table compiled")
}

// watchTable calls onChange once, then again for every write or create of
// path until ctx is done.
func watchTable(ctx context.Context, path string, onChange func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory (more reliable for editors that do atomic saves)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	onChange(path)
	logger.Info().Str("table", path).Msg("watching table for changes")

	filename := filepath.Base(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				logger.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("table changed")
				onChange(path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}
