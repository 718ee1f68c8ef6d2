package cmd

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"s"},
		Short:   "Show the current branch, sync state and workflow branches",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := getContainer()
			if err != nil {
				return err
			}
			// Read-only, so it runs outside the workspace lock.
			return c.orch.Status(cmd.Context())
		},
	}
}
