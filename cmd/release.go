package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/orchestrator"
)

func newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "release",
		Aliases: []string{"r"},
		Short:   "Tag release candidates and ship releases",
	}
	cmd.AddCommand(newReleaseRcCmd(), newReleaseShipCmd())
	return cmd
}

func newReleaseRcCmd() *cobra.Command {
	var rcNumber int
	cmd := &cobra.Command{
		Use:   "rc [version]",
		Short: "Tag a release candidate at the release branch tip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := getContainer()
			if err != nil {
				return err
			}
			input := orchestrator.TagRcInput{Number: rcNumber}
			if len(args) > 0 {
				input.Version = args[0]
			}
			return c.runLocked(cmd.Context(), func(ctx context.Context) error {
				return c.orch.TagRc(ctx, input)
			})
		},
	}
	cmd.Flags().IntVar(&rcNumber, "rc", 0, "candidate number (defaults to the next free one)")
	return cmd
}

func newReleaseShipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ship [version]",
		Short: "Merge the release into main and develop and tag the version",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShip(domain.WorkflowRelease),
	}
}

// runShip builds the shared ship runner; release and hotfix only differ in
// the workflow kind.
func runShip(kind domain.WorkflowKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}
		input := orchestrator.ShipInput{Kind: kind}
		if len(args) > 0 {
			input.Version = args[0]
		}
		return c.runLocked(cmd.Context(), func(ctx context.Context) error {
			return c.orch.Ship(ctx, input)
		})
	}
}
