package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tag [version]",
		Aliases: []string{"t"},
		Short:   "Tag the current main tip as a production version",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getContainer()
			if err != nil {
				return err
			}
			raw := ""
			if len(args) > 0 {
				raw = args[0]
			}
			return c.runLocked(cmd.Context(), func(ctx context.Context) error {
				return c.orch.TagProduction(ctx, raw)
			})
		},
	}
}
