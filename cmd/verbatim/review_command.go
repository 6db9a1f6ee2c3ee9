package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"verbatim/internal/chunking"
	"verbatim/internal/config"
	"verbatim/internal/logging"
	"verbatim/internal/notifications"
	"verbatim/internal/review"
	"verbatim/internal/services"
	"verbatim/internal/services/llm"
	"verbatim/internal/store"
	"verbatim/internal/textdiff"
)

type reviewMode string

const (
	modeAcceptAll   reviewMode = "accept-all"
	modeRejectAll   reviewMode = "reject-all"
	modeInteractive reviewMode = "interactive"
)

type reviewFlags struct {
	acceptAll    bool
	rejectAll    bool
	interactive  bool
	dryRun       bool
	instructions string
	options      []string
	temperature  float64
	model        string
	copyResult   bool
	outPath      string
}

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   "review <name>",
		Short: "Send a transcript to the reviser chunk by chunk and merge the changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			mode, err := flags.mode(cmd.InOrStdin())
			if err != nil {
				return err
			}
			instructions, err := cfg.ReviewInstructions(flags.options, flags.instructions)
			if err != nil {
				return err
			}
			temperature := cfg.Review.Temperature
			if cmd.Flags().Changed("temperature") {
				temperature = flags.temperature
			}

			return ctx.withWriteLock(func(st *store.Store) error {
				return runReview(cmd, ctx, cfg, st, args[0], mode, flags, instructions, temperature)
			})
		},
	}

	cmd.Flags().BoolVar(&flags.acceptAll, "accept-all", false, "Accept every change")
	cmd.Flags().BoolVar(&flags.rejectAll, "reject-all", false, "Reject every change")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Decide each change at the terminal")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the proposed changes without saving")
	cmd.Flags().StringVar(&flags.instructions, "instructions", "", "Extra instructions for the reviser")
	cmd.Flags().StringSliceVar(&flags.options, "option", nil, "Named prompt option from config (repeatable)")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", 0, "Sampling temperature (default from config)")
	cmd.Flags().StringVar(&flags.model, "model", "", "Model override for this review")
	cmd.Flags().BoolVar(&flags.copyResult, "copy", false, "Copy the final text to the clipboard")
	cmd.Flags().StringVarP(&flags.outPath, "out", "o", "", "Also write the final text to this file")
	cmd.MarkFlagsMutuallyExclusive("accept-all", "reject-all", "interactive", "dry-run")
	return cmd
}

func (f reviewFlags) mode(in io.Reader) (reviewMode, error) {
	switch {
	case f.acceptAll:
		return modeAcceptAll, nil
	case f.rejectAll:
		return modeRejectAll, nil
	case f.interactive, f.dryRun:
		return modeInteractive, nil
	case isInteractive(in):
		return modeInteractive, nil
	default:
		return "", services.Wrap(services.ErrValidation, "cli", "review",
			"stdin is not a terminal; pass --accept-all, --reject-all, or --dry-run", nil)
	}
}

func runReview(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, st *store.Store, name string, mode reviewMode, flags reviewFlags, instructions string, temperature float64) error {
	tr, latest, err := requireTranscript(cmd, st, name)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	logger := ctx.loggerValue()

	llmCfg := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
	session := review.NewSession(llm.NewReviser(client), st, review.Options{
		Planner: chunking.Planner{
			MaxSeconds:      cfg.Review.MaxChunkSeconds,
			MaxWords:        cfg.Review.MaxChunkWords,
			MinTailFraction: cfg.Review.MinTailFraction,
		},
		PreviousTailWords:       cfg.Review.PreviousTailWords,
		SimilarityWarnThreshold: cfg.Review.SimilarityWarnThreshold,
		Progress: func(p review.Progress) {
			fmt.Fprintf(errOut, "Revising chunk %d/%d (%s - %s, %d words)\n",
				p.Chunk+1, p.Total, formatSeconds(p.Span.Start), formatSeconds(p.Span.End), p.Span.Words)
		},
	}, logger)

	req := review.Request{
		TranscriptID: tr.ID,
		Text:         latest.Text,
		Words:        latest.Words,
		Instructions: instructions,
		Temperature:  temperature,
		Model:        flags.model,
		ListenCounts: latest.ListenCounts,
	}
	notifier := notifications.NewService(cfg)
	notify := func(send func(context.Context) error) {
		if err := send(cmd.Context()); err != nil {
			logging.WarnWithContext(logger, "notification failed", "notify_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "review continues without the alert"),
			)
		}
	}

	result, err := session.Run(cmd.Context(), req)
	if err != nil {
		if !errors.Is(err, services.ErrCanceled) {
			notify(func(ctx context.Context) error { return notifier.NotifyError(ctx, err, tr.Name) })
		}
		return err
	}
	fmt.Fprintf(errOut, "Review session %s (see 'verbatim logs --session %s')\n", result.SessionID, result.SessionID)
	if usage := client.Usage(); usage.Total() > 0 {
		logger.Info("reviser token usage",
			logging.String(logging.FieldSessionID, result.SessionID),
			logging.Int("prompt_tokens", usage.PromptTokens),
			logging.Int("completion_tokens", usage.CompletionTokens),
		)
		fmt.Fprintf(errOut, "Used %d tokens (%d prompt, %d completion)\n", usage.Total(), usage.PromptTokens, usage.CompletionTokens)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(errOut, "Warning:", warning)
	}

	segments := result.Merge.Segments()
	if !textdiff.HasChanges(segments) {
		fmt.Fprintln(out, "The reviser proposed no changes; nothing saved.")
		return nil
	}
	summary := textdiff.Summarize(segments)
	fmt.Fprintf(out, "%d proposed changes (+%d / -%d words)\n", summary.Changes, summary.InsertedWords, summary.DeletedWords)

	if flags.dryRun {
		fmt.Fprintln(out, renderSegments(segments, shouldColorize(out)))
		return nil
	}

	switch mode {
	case modeAcceptAll:
		result.Merge.AcceptAll()
	case modeRejectAll:
		result.Merge.RejectAll()
	default:
		notify(func(ctx context.Context) error { return notifier.NotifyReviewReady(ctx, tr.Name, summary.Changes) })
		renderer := newTerminalRenderer(cmd.InOrStdin(), out, shouldColorize(out))
		if err := review.Resolve(result.Merge, renderer); err != nil {
			return err
		}
	}

	accepted, rejected := result.Merge.Decisions()
	rev, err := session.Save(cmd.Context(), req, result.Merge)
	if err != nil {
		return err
	}
	saved, err := st.LatestRevision(cmd.Context(), tr.ID)
	if err != nil {
		return err
	}
	version := 0
	if saved != nil {
		version = saved.Version
	}
	logger.Info("review saved",
		logging.String(logging.FieldSessionID, result.SessionID),
		logging.Int64(logging.FieldTranscriptID, tr.ID),
		logging.Int("version", version),
		logging.Int("accepted", accepted),
		logging.Int("rejected", rejected),
	)
	fmt.Fprintf(out, "Saved %q version %d (%d accepted, %d rejected)\n", tr.Name, version, accepted, rejected)
	notify(func(ctx context.Context) error {
		return notifier.NotifyReviewSaved(ctx, tr.Name, version, accepted, rejected)
	})

	if flags.outPath != "" {
		if err := writeOutput(cmd, flags.outPath, []byte(rev.Text+"\n")); err != nil {
			return err
		}
	}
	if flags.copyResult {
		if err := clipboard.WriteAll(rev.Text); err != nil {
			logging.WarnWithContext(logger, "copy to clipboard failed", "clipboard_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "install xclip, xsel, or wl-clipboard"),
				logging.String(logging.FieldImpact, "the revision was saved but not copied"),
			)
			fmt.Fprintln(errOut, "Warning: could not copy to clipboard:", err)
		} else {
			fmt.Fprintln(out, "Copied final text to the clipboard.")
		}
	}
	return nil
}
