package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/store"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index whenever records change",
	Long: `Watch the store tree and regenerate the index document on every
record change. The index is derived state, so rebuilding on each event
is always safe. Runs until interrupted.

Examples:
  recall watch`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.engine.Init(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the root and every existing subdirectory; directories
	// created later are added as their create events arrive.
	err = filepath.WalkDir(a.store.Root(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s\n", a.store.Root())
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						a.logger.Warn("watch new directory", zap.Error(err))
					}
					continue
				}
			}
			if !recordEvent(event.Name) {
				continue
			}
			a.logger.Debug("record changed", zap.String("path", event.Name))
			if err := a.index.Rebuild(); err != nil {
				a.logger.Warn("index rebuild failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// recordEvent reports whether a filesystem event concerns a record file,
// ignoring the index itself and in-flight temp files.
func recordEvent(path string) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".md") {
		return false
	}
	if name == store.IndexFile || strings.HasPrefix(name, ".recall-") {
		return false
	}
	return true
}
