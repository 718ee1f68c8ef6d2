package cmd

import (
	"github.com/spf13/cobra"

	"github.com/compozy/flowctl/internal/domain"
)

func newHotfixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hotfix",
		Aliases: []string{"h"},
		Short:   "Ship hotfixes cut from main",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ship [version]",
		Short: "Merge the hotfix into main and develop and tag the version",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShip(domain.WorkflowHotfix),
	})
	return cmd
}
