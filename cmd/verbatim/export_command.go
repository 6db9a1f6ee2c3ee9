package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"verbatim/internal/config"
	"verbatim/internal/fileutil"
	"verbatim/internal/services"
	"verbatim/internal/store"
	"verbatim/internal/textutil"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var version int
	var dir string

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a revision's text and word timings to files",
		Long: `Write <name>.v<N>.txt and <name>.v<N>.ctm.json into a directory.
The pair can be imported again with 'verbatim import'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				rec, err := loadRevision(cmd, st, args[0], version)
				if err != nil {
					return err
				}
				base := textutil.SanitizeFileName(args[0])
				if base == "" {
					return services.Wrap(services.ErrValidation, "cli", "export",
						fmt.Sprintf("name %q has no usable file name characters", args[0]), nil)
				}
				target, err := config.ExpandPath(dir)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(target, 0o755); err != nil {
					return fmt.Errorf("create export directory: %w", err)
				}

				stem := filepath.Join(target, fmt.Sprintf("%s.v%d", base, rec.Version))
				words, err := encodeWords(rec.Words)
				if err != nil {
					return err
				}
				if err := fileutil.WriteFileAtomic(stem+".txt", []byte(rec.Text+"\n"), 0o644); err != nil {
					return err
				}
				if err := fileutil.WriteFileAtomic(stem+".ctm.json", words, 0o644); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, stem+".txt")
				fmt.Fprintln(out, stem+".ctm.json")
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "Revision to export (default latest)")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write into")
	return cmd
}
