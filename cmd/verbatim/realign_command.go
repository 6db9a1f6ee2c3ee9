package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"verbatim/internal/ctm"
	"verbatim/internal/logging"
)

func newRealignCommand() *cobra.Command {
	var ctmPath, oldPath, newPath, outPath string

	cmd := &cobra.Command{
		Use:         "realign",
		Short:       "Carry word timings from an old transcript text onto an edited one",
		Args:        cobra.NoArgs,
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := loadWords(ctmPath)
			if err != nil {
				return err
			}
			oldText, err := readTranscriptText(cmd, oldPath)
			if err != nil {
				return err
			}
			newText, err := readTranscriptText(cmd, newPath)
			if err != nil {
				return err
			}

			seq, stats := ctm.NewRealigner(logging.NewNop()).Realign(words, oldText, newText)
			data, err := encodeWords(seq)
			if err != nil {
				return fmt.Errorf("encode ctm: %w", err)
			}
			if err := writeOutput(cmd, outPath, data); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d words to %s (kept %d, inserted %d, deleted %d)\n",
					len(seq), outPath, stats.Kept, stats.Inserted, stats.Deleted)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ctmPath, "ctm", "", "Word timing JSON for the old text")
	cmd.Flags().StringVar(&oldPath, "old", "", "Text the timings belong to")
	cmd.Flags().StringVar(&newPath, "new", "", "Edited text")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write timings here instead of stdout")
	_ = cmd.MarkFlagRequired("ctm")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
