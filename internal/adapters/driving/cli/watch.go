package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reveal-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// watchDebounce coalesces the burst of events one save produces.
const watchDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <locator>",
	Short: "Re-run a file-backed locator when the file changes",
	Long: `Run a locator once, then again every time the file it reads changes.

Only file-backed schemes (json, yaml, toml, markdown, sqlite, env with a
dotenv file) can be watched. Each run is independent. Press Ctrl+C to stop.

Example:
  reveal watch 'yaml://deploy.yaml/services?replicas>1'`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	raw := args[0]
	file, err := watchTarget(raw)
	if err != nil {
		return err
	}

	svc, err := engine()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("watch %s: %w", file, err)
	}
	logger.Info("Watching %s", file)

	out := outputFor(cmd)
	run := func() error {
		env, err := svc.Query.Query(cmd.Context(), raw)
		if err != nil {
			return out.Error(domain.ClassifyError(raw, err))
		}
		return out.Envelope(env)
	}

	loop := &watchLoop{
		file:     file,
		events:   watcher.Events,
		errors:   watcher.Errors,
		debounce: watchDebounce,
		run:      run,
	}
	return loop.Run(cmd.Context())
}

// watchTarget returns the absolute path of the file a locator reads.
func watchTarget(raw string) (string, error) {
	loc, err := domain.ParseLocator(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	file, _, err := filesystem.Split(filesystem.ExpandHome(loc.Path()))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a file-backed locator: %w", domain.ErrInvalidInput, raw, err)
	}
	return filepath.Abs(file)
}

// watchLoop runs once, then after every debounced change to file.
type watchLoop struct {
	file     string
	events   <-chan fsnotify.Event
	errors   <-chan error
	debounce time.Duration
	run      func() error
}

// Run blocks until ctx is cancelled, a channel closes or run fails.
func (w *watchLoop) Run(ctx context.Context) error {
	if err := w.run(); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case event, ok := <-w.events:
			if !ok {
				return nil
			}
			if !w.matches(event) {
				continue
			}
			logger.Debug("Watch event: %s", event)
			timer.Reset(w.debounce)

		case err, ok := <-w.errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			logger.Info("Changed: %s", w.file)
			if err := w.run(); err != nil {
				return err
			}
		}
	}
}

func (w *watchLoop) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	return err == nil && name == w.file
}
