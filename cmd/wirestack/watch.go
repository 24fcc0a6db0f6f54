package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// newWatchCmd creates the "watch" subcommand for re-synthesizing when the
// configuration changes.
func newWatchCmd() *cobra.Command {
	var (
		opts         configOpts
		debounce     time.Duration
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-synthesize when the configuration changes",
		Long: `Watch monitors the config file and re-runs synthesis on every change.

Rapid edits are debounced. Each pass runs the full pipeline: a change that
breaks verification or the baseline reports the failure and leaves the last
good output in place.

Examples:
    wirestack watch -e test -o template.json
    wirestack watch -c prod.yaml --debounce 1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchLoop(opts, debounce, outputFormat, outputFile)
		},
	}

	addConfigFlags(cmd, &opts)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runWatchLoop(opts configOpts, debounce time.Duration, format, outputFile string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Watch the directory, not the file: editors replace files on save and
	// a file watch dies with the old inode.
	dir, err := watchDir(opts.configFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Printf("Watching: %s\n", dir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Running initial synthesis...")
	runWatchSynth(opts, format, outputFile)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Printf("\n[%s] Change detected, re-synthesizing...\n", time.Now().Format("15:04:05"))
			runWatchSynth(opts, format, outputFile)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// watchDir returns the directory holding the config file.
func watchDir(configFile string) (string, error) {
	if configFile == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(configFile)
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}

// runWatchSynth runs one synthesis pass, reporting failures without
// stopping the watch.
func runWatchSynth(opts configOpts, format, outputFile string) {
	if err := runSynth(opts, format, outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "synthesis failed: %v\n", err)
		return
	}
	if outputFile != "" {
		fmt.Printf("Wrote %s\n", outputFile)
	}
}
