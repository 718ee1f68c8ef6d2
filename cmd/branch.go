package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/compozy/flowctl/internal/orchestrator"
)

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "branch",
		Aliases: []string{"b"},
		Short:   "Create and delete workflow branches",
	}
	cmd.AddCommand(newBranchCreateCmd(), newBranchDeleteCmd())
	return cmd
}

func newBranchCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create [kind] [name-or-version]",
		Aliases: []string{"c"},
		Short:   "Start a feature, fix, release or hotfix branch from its base",
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getContainer()
			if err != nil {
				return err
			}
			var input orchestrator.CreateBranchInput
			if len(args) > 0 {
				input.Kind = args[0]
			}
			if len(args) > 1 {
				input.Value = args[1]
			}
			return c.runLocked(cmd.Context(), func(ctx context.Context) error {
				return c.orch.CreateBranch(ctx, input)
			})
		},
	}
}

func newBranchDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [branch]",
		Aliases: []string{"d"},
		Short:   "Delete a workflow branch locally and on the remote",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getContainer()
			if err != nil {
				return err
			}
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			return c.runLocked(cmd.Context(), func(ctx context.Context) error {
				return c.orch.DeleteBranch(ctx, target)
			})
		},
	}
}
