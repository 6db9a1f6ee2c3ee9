package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"verbatim/internal/logging"
	"verbatim/internal/review"
	"verbatim/internal/store"
	"verbatim/internal/textutil"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var textPath, ctmPath string

	cmd := &cobra.Command{
		Use:   "import <name>",
		Short: "Store a transcript and its word timings as version 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			text, err := readTranscriptText(cmd, textPath)
			if err != nil {
				return err
			}
			words, err := loadWords(ctmPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if n := textutil.WordCount(text); n != len(words) {
				logging.WarnWithContext(ctx.loggerValue(), "transcript and ctm word counts differ", "import_mismatch",
					logging.String("transcript", name),
					logging.Int("text_words", n),
					logging.Int("ctm_words", len(words)),
					logging.String(logging.FieldErrorHint, "check that the ctm was produced from this text"),
					logging.String(logging.FieldImpact, "timings after the first mismatch are approximate"),
				)
				fmt.Fprintf(out, "Warning: text has %d words but ctm has %d; timings may drift\n", n, len(words))
			}

			return ctx.withWriteLock(func(st *store.Store) error {
				tr, err := st.CreateTranscript(cmd.Context(), name)
				if err != nil {
					return err
				}
				rec, err := st.AppendRevision(cmd.Context(), review.Revision{
					TranscriptID: tr.ID,
					Text:         text,
					Words:        words,
					Source:       review.SourceImport,
				})
				if err != nil {
					_ = st.DeleteTranscript(cmd.Context(), tr.ID)
					return err
				}
				fmt.Fprintf(out, "Imported %q as version %d (%d words, %s)\n",
					tr.Name, rec.Version, len(rec.Words), formatSeconds(rec.Words.Duration()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&textPath, "text", "", "Transcript text file")
	cmd.Flags().StringVar(&ctmPath, "ctm", "", "Word timing JSON file")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("ctm")
	return cmd
}
