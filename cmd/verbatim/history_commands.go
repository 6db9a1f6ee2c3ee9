package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"verbatim/internal/services"
	"verbatim/internal/store"
	"verbatim/internal/textdiff"
)

type transcriptListItem struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	LatestVersion int       `json:"latest_version"`
	Revisions     int       `json:"revisions"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type revisionListItem struct {
	Version     int       `json:"version"`
	Source      string    `json:"source"`
	Words       int       `json:"words"`
	EditedWords int       `json:"edited_words"`
	Duration    float64   `json:"duration_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				transcripts, err := st.ListTranscripts(cmd.Context())
				if err != nil {
					return err
				}
				items := make([]transcriptListItem, 0, len(transcripts))
				for _, tr := range transcripts {
					items = append(items, transcriptListItem{
						ID:            tr.ID,
						Name:          tr.Name,
						LatestVersion: tr.LatestVersion,
						Revisions:     tr.Revisions,
						UpdatedAt:     tr.UpdatedAt,
					})
				}
				if jsonOut {
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No transcripts stored. Add one with 'verbatim import'.")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.Name,
						strconv.Itoa(item.LatestVersion),
						strconv.Itoa(item.Revisions),
						formatTimestamp(item.UpdatedAt),
					})
				}
				spec := tableSpec{
					headers: []string{"Name", "Version", "Revisions", "Updated"},
					aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				}
				fmt.Fprintln(out, spec.render(rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history <name>",
		Short: "List the revisions of a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				tr, err := st.RequireTranscript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				revisions, err := st.ListRevisions(cmd.Context(), tr.ID)
				if err != nil {
					return err
				}
				items := make([]revisionListItem, 0, len(revisions))
				for _, rec := range revisions {
					items = append(items, revisionListItem{
						Version:     rec.Version,
						Source:      rec.Source,
						Words:       len(rec.Words),
						EditedWords: len(rec.EditedSegments),
						Duration:    rec.Words.Duration(),
						CreatedAt:   rec.CreatedAt,
					})
				}
				if jsonOut {
					return writeJSON(cmd, items)
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.Itoa(item.Version),
						item.Source,
						strconv.Itoa(item.Words),
						strconv.Itoa(item.EditedWords),
						formatSeconds(item.Duration),
						formatTimestamp(item.CreatedAt),
					})
				}
				spec := tableSpec{
					title:   tr.Name,
					headers: []string{"Version", "Source", "Words", "Edited", "Length", "Saved"},
					aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				}
				fmt.Fprintln(cmd.OutOrStdout(), spec.render(rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var version int
	var ctmOut string
	var diffFrom int

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the text of a transcript revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				rec, err := loadRevision(cmd, st, args[0], version)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if diffFrom > 0 {
					base, err := loadRevision(cmd, st, args[0], diffFrom)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, renderRevisionDiff(base.Text, rec.Text, shouldColorize(out)))
				} else {
					fmt.Fprintln(out, rec.Text)
				}
				if ctmOut != "" {
					data, err := encodeWords(rec.Words)
					if err != nil {
						return err
					}
					return writeOutput(cmd, ctmOut, data)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "Revision to show (default latest)")
	cmd.Flags().IntVar(&diffFrom, "diff-from", 0, "Show changes since this version instead of plain text")
	cmd.Flags().StringVar(&ctmOut, "ctm-out", "", "Also write the revision's word timings to this file")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a transcript and all of its revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return services.Wrap(services.ErrValidation, "cli", "delete", "pass --yes to confirm", nil)
			}
			return ctx.withWriteLock(func(st *store.Store) error {
				tr, err := st.RequireTranscript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := st.DeleteTranscript(cmd.Context(), tr.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%d revisions)\n", tr.Name, tr.Revisions)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

func loadRevision(cmd *cobra.Command, st *store.Store, name string, version int) (*store.RevisionRecord, error) {
	tr, err := st.RequireTranscript(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	var rec *store.RevisionRecord
	if version > 0 {
		rec, err = st.GetRevision(cmd.Context(), tr.ID, version)
	} else {
		rec, err = st.LatestRevision(cmd.Context(), tr.ID)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		detail := fmt.Sprintf("transcript %q has no revisions", name)
		if version > 0 {
			detail = fmt.Sprintf("transcript %q has no version %d (latest is %d)", name, version, tr.LatestVersion)
		}
		return nil, services.Wrap(services.ErrNotFound, "cli", "show", detail, nil)
	}
	return rec, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func renderRevisionDiff(from, to string, colorize bool) string {
	return strings.TrimRight(renderSegments(textdiff.DiffWords(from, to), colorize), "\n")
}
