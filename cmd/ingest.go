package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/ingest"
	"github.com/docchat/docchat/internal/progress"
	"github.com/docchat/docchat/internal/walker"
	"github.com/docchat/docchat/internal/watcher"
)

var (
	ingestInclude []string
	ingestExclude []string
	ingestWatch   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest documents from the filesystem",
	Long: `Walks the given files and directories, extracts text from every
supported document (PDF, Word, PowerPoint, CSV, plain text) and indexes
it for chat. Already-ingested files are skipped by content hash.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := openComponents(cfg)
		if err != nil {
			return err
		}
		defer app.database.Close()

		filterCfg := walker.Config{
			Include: append(cfg.Include, ingestInclude...),
			Exclude: append(cfg.Exclude, ingestExclude...),
		}

		var files []string
		for _, root := range args {
			found, err := walker.Collect(root, filterCfg)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", root, err)
			}
			files = append(files, found...)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stats := ingestFiles(ctx, app.pipeline, files)
		fmt.Fprintf(os.Stderr, "Ingested %d new, %d unchanged, %d failed\n",
			stats.added, stats.skipped, stats.failed)

		if !ingestWatch {
			return nil
		}
		return watchAndIngest(ctx, app.pipeline, args)
	},
}

type ingestStats struct {
	added, skipped, failed int
}

func ingestFiles(ctx context.Context, pipeline *ingest.Pipeline, files []string) ingestStats {
	var stats ingestStats

	reporter := progress.NewReporter()
	reporter.Start(len(files))
	defer reporter.Finish()

	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		reporter.Update(i+1, filepath.Base(path))

		if err := ingestFile(ctx, pipeline, path); err != nil {
			if err == errUnchanged {
				stats.skipped++
				continue
			}
			fmt.Fprintf(os.Stderr, "  %s: %v\n", path, err)
			stats.failed++
			continue
		}
		stats.added++
	}
	return stats
}

// errUnchanged marks a dedup hit so callers can count it separately.
var errUnchanged = fmt.Errorf("unchanged")

func ingestFile(ctx context.Context, pipeline *ingest.Pipeline, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	result, err := pipeline.Ingest(ctx, filepath.Base(path), mimeType, data)
	if err != nil {
		return err
	}
	if result.AlreadyExists {
		return errUnchanged
	}
	return nil
}

// watchAndIngest keeps ingesting files as they appear in the given
// directories until ctx is cancelled.
func watchAndIngest(ctx context.Context, pipeline *ingest.Pipeline, roots []string) error {
	extensions := make([]string, 0, len(walker.SupportedExtensions))
	for ext := range walker.SupportedExtensions {
		extensions = append(extensions, ext)
	}

	w, err := watcher.New(extensions)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	var channels []<-chan watcher.Event
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		events, err := w.Watch(ctx, root)
		if err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		channels = append(channels, events)
		fmt.Fprintf(os.Stderr, "Watching %s\n", root)
	}
	if len(channels) == 0 {
		return fmt.Errorf("no directories to watch")
	}

	merged := make(chan watcher.Event)
	for _, ch := range channels {
		go func(ch <-chan watcher.Event) {
			for ev := range ch {
				select {
				case merged <- ev:
				case <-ctx.Done():
					return
				}
			}
		}(ch)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-merged:
			if ev.Op == watcher.Deleted {
				continue
			}
			switch err := ingestFile(ctx, pipeline, ev.Path); err {
			case nil:
				fmt.Fprintf(os.Stderr, "Ingested %s\n", ev.Path)
			case errUnchanged:
			default:
				fmt.Fprintf(os.Stderr, "  %s: %v\n", ev.Path, err)
			}
		}
	}
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestInclude, "include", nil, "glob patterns to include (e.g. 'docs/**')")
	ingestCmd.Flags().StringSliceVar(&ingestExclude, "exclude", nil, "glob patterns to exclude")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching the given directories for new files")
	rootCmd.AddCommand(ingestCmd)
}
