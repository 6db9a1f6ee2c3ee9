package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"verbatim/internal/timestamps"
)

func newNormalizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "normalize [file]",
		Short:       "Rewrite timestamps to H:MM:SS.d on their own line",
		Args:        cobra.MaximumNArgs(1),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := readText(cmd, path)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), timestamps.Normalize(raw))
			return err
		},
	}
	return cmd
}
