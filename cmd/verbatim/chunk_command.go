package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"verbatim/internal/chunking"
	"verbatim/internal/services"
	"verbatim/internal/textutil"
)

type chunkOutput struct {
	Boundaries []float64       `json:"boundaries"`
	Chunks     []chunkListItem `json:"chunks"`
}

type chunkListItem struct {
	chunking.Span
	Text string `json:"text,omitempty"`
}

func newChunkCommand(ctx *commandContext) *cobra.Command {
	var ctmPath, textPath string
	var maxSeconds float64
	var maxWords int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Plan review chunks for a timed transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			words, err := loadWords(ctmPath)
			if err != nil {
				return err
			}
			planner := chunking.Planner{
				MaxSeconds:      cfg.Review.MaxChunkSeconds,
				MaxWords:        cfg.Review.MaxChunkWords,
				MinTailFraction: cfg.Review.MinTailFraction,
			}
			if cmd.Flags().Changed("max-seconds") {
				planner.MaxSeconds = maxSeconds
			}
			if cmd.Flags().Changed("max-words") {
				planner.MaxWords = maxWords
			}
			if planner.MaxSeconds <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "chunk", "--max-seconds must be positive", nil)
			}

			boundaries, err := planner.Plan(words)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "chunk", "", err)
			}
			spans := chunking.Spans(words, boundaries)

			var texts []string
			if textPath != "" {
				text, err := readTranscriptText(cmd, textPath)
				if err != nil {
					return err
				}
				texts = chunking.ChunkTranscript(text, words, boundaries)
			}

			items := make([]chunkListItem, len(spans))
			for i, span := range spans {
				items[i] = chunkListItem{Span: span}
				if i < len(texts) {
					items[i].Text = texts[i]
				}
			}

			if jsonOut {
				if boundaries == nil {
					boundaries = []float64{}
				}
				return writeJSON(cmd, chunkOutput{Boundaries: boundaries, Chunks: items})
			}

			spec := tableSpec{
				title:   fmt.Sprintf("%d chunks, max %.0fs", len(items), planner.MaxSeconds),
				headers: []string{"#", "Start", "End", "Length", "Words"},
				aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			}
			if texts != nil {
				spec.headers = append(spec.headers, "Opening")
				spec.aligns = append(spec.aligns, alignLeft)
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				row := []string{
					strconv.Itoa(item.Index + 1),
					formatSeconds(item.Start),
					formatSeconds(item.End),
					fmt.Sprintf("%.1fs", item.Duration()),
					strconv.Itoa(item.Words),
				}
				if texts != nil {
					row = append(row, openingWords(item.Text, 8))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), spec.render(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&ctmPath, "ctm", "", "Word timing JSON")
	cmd.Flags().StringVar(&textPath, "text", "", "Transcript text to cut at the planned boundaries")
	cmd.Flags().Float64Var(&maxSeconds, "max-seconds", 0, "Longest chunk in seconds (default from config)")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "Most words per chunk, 0 for no limit (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the plan as JSON")
	_ = cmd.MarkFlagRequired("ctm")
	return cmd
}

func openingWords(text string, n int) string {
	words := textutil.WordTexts(text)
	if len(words) <= n {
		return text
	}
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " "
		}
		out += words[i]
	}
	return out + "…"
}
