package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newPRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pr",
		Aliases: []string{"p"},
		Short:   "Open and merge pull requests for workflow branches",
	}
	cmd.AddCommand(newPRCreateCmd(), newPRMergeCmd())
	return cmd
}

func newPRCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create [branch]",
		Aliases: []string{"c"},
		Short:   "Push the branch and open a pull request against develop",
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
				return c.orch.CreatePR(ctx, target)
			})
		},
	}
}

func newPRMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "merge [branch]",
		Aliases: []string{"m"},
		Short:   "Merge the branch's open pull request and clean up",
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
				return c.orch.MergePR(ctx, target)
			})
		},
	}
}
