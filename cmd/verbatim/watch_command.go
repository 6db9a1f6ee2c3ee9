package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"verbatim/internal/config"
	"verbatim/internal/fileutil"
	"verbatim/internal/store"
	"verbatim/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var poll bool

	cmd := &cobra.Command{
		Use:   "watch <name>",
		Short: "Save a new revision every time the transcript file is edited",
		Long: "Watch keeps word timings in step with hand edits. If --file does not exist it is\n" +
			"created from the latest revision. Each save realigns the timings and stores a\n" +
			"new revision with source \"edit\". Stop with Ctrl-C.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(filePath)
			if err != nil {
				return err
			}
			return ctx.withWriteLock(func(st *store.Store) error {
				tr, latest, err := requireTranscript(cmd, st, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				checkOnStart := true
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					if err := fileutil.WriteFileAtomic(path, []byte(latest.Text+"\n"), 0o644); err != nil {
						return err
					}
					checkOnStart = false
					fmt.Fprintf(out, "Wrote version %d to %s\n", latest.Version, path)
				}

				syncer := watch.NewSyncer(st, tr.ID, ctx.loggerValue())
				syncer.OnSaved = func(rec *store.RevisionRecord) {
					fmt.Fprintf(out, "%s saved version %d (%d words edited)\n",
						time.Now().Format("15:04:05"), rec.Version, len(rec.EditedSegments))
				}
				watcher := watch.New(path, watch.Options{
					Debounce:     time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
					PollInterval: time.Duration(cfg.Watch.PollIntervalSeconds) * time.Second,
					PollOnly:     poll,
					CheckOnStart: checkOnStart,
				}, syncer.Handler(), ctx.loggerValue())

				fmt.Fprintf(out, "Watching %s for %q (Ctrl-C to stop)\n", path, tr.Name)
				return watcher.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Transcript text file to watch")
	cmd.Flags().BoolVar(&poll, "poll", false, "Poll instead of using file system notifications")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
