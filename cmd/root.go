package cmd

import (
	"github.com/spf13/cobra"

	"github.com/compozy/flowctl/pkg/version"
)

var (
	flagVerbose        bool
	flagAssumeYes      bool
	flagNonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "flowctl",
	Short: "Branch and release workflows over git and GitHub",
	Long: `flowctl drives the branching workflow of a develop/main repository:
feature and fix branches with pull requests, release and hotfix branches
with candidate tags, double merges into main and develop, and production
tags pinned to the tested branch tip.

Run it without arguments for the interactive menu.`,
	Version:       version.Summary(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := getContainer()
		if err != nil {
			return err
		}
		return c.runMenu(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagAssumeYes, "yes", "y", false, "accept confirmations without asking")
	rootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "fail instead of prompting for required input")
	rootCmd.AddCommand(
		newBranchCmd(),
		newPRCmd(),
		newReleaseCmd(),
		newHotfixCmd(),
		newTagCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	rootCmd.SetHelpCommand(newHelpCmd())
}

// newHelpCmd replaces the builtin help command so ? works as an alias.
func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "help [command]",
		Aliases: []string{"?"},
		Short:   "Help about any command",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				return cmd.Root().Help()
			}
			return target.Help()
		},
	}
}

// Execute runs the CLI. Callers map the returned error to an exit code.
func Execute() error {
	return rootCmd.Execute()
}
