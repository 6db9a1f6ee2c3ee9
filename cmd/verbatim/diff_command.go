package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"verbatim/internal/textdiff"
)

type diffOutput struct {
	Segments []textdiff.Segment `json:"segments"`
	Summary  textdiff.Summary   `json:"summary"`
}

func newDiffCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "diff <original> <revised>",
		Short:       "Show word-level differences between two texts",
		Args:        cobra.ExactArgs(2),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := readTranscriptText(cmd, args[0])
			if err != nil {
				return err
			}
			revised, err := readTranscriptText(cmd, args[1])
			if err != nil {
				return err
			}
			segments := textdiff.DiffWords(original, revised)
			summary := textdiff.Summarize(segments)

			if jsonOut {
				if segments == nil {
					segments = []textdiff.Segment{}
				}
				return writeJSON(cmd, diffOutput{Segments: segments, Summary: summary})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSegments(segments, shouldColorize(out)))
			fmt.Fprintf(out, "\n%d changes: +%d words, -%d words, %d unchanged\n",
				summary.Changes, summary.InsertedWords, summary.DeletedWords, summary.EqualWords)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit segments as JSON")
	return cmd
}
