package cmd

import (
	"context"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/orchestrator"
	"github.com/compozy/flowctl/internal/ui"
)

const menuQuit = "quit"

// menuEntry is one selectable operation of the interactive menu. Mutating
// entries run under the workspace lock, same as their command form.
type menuEntry struct {
	label    string
	value    string
	readOnly bool
	run      func(context.Context, *container) error
}

func menuEntries() []menuEntry {
	return []menuEntry{
		{label: "[c] create a branch", value: "branch-create", run: func(ctx context.Context, c *container) error {
			return c.orch.CreateBranch(ctx, orchestrator.CreateBranchInput{})
		}},
		{label: "[d] delete a branch", value: "branch-delete", run: func(ctx context.Context, c *container) error {
			return c.orch.DeleteBranch(ctx, "")
		}},
		{label: "[p] open a pull request", value: "pr-create", run: func(ctx context.Context, c *container) error {
			return c.orch.CreatePR(ctx, "")
		}},
		{label: "[m] merge a pull request", value: "pr-merge", run: func(ctx context.Context, c *container) error {
			return c.orch.MergePR(ctx, "")
		}},
		{label: "[r] tag a release candidate", value: "release-rc", run: func(ctx context.Context, c *container) error {
			return c.orch.TagRc(ctx, orchestrator.TagRcInput{})
		}},
		{label: "[s] ship a release", value: "release-ship", run: func(ctx context.Context, c *container) error {
			return c.orch.Ship(ctx, orchestrator.ShipInput{Kind: domain.WorkflowRelease})
		}},
		{label: "[h] ship a hotfix", value: "hotfix-ship", run: func(ctx context.Context, c *container) error {
			return c.orch.Ship(ctx, orchestrator.ShipInput{Kind: domain.WorkflowHotfix})
		}},
		{label: "[t] tag a production version", value: "tag", run: func(ctx context.Context, c *container) error {
			return c.orch.TagProduction(ctx, "")
		}},
		{label: "[i] show repository status", value: "status", readOnly: true, run: func(ctx context.Context, c *container) error {
			return c.orch.Status(ctx)
		}},
		{label: "[?] help", value: "help", readOnly: true, run: func(_ context.Context, _ *container) error {
			return rootCmd.Help()
		}},
	}
}

// runMenu shows the operation selector and runs the chosen workflow once.
// Backing out of the selector or picking quit ends the session cleanly.
func (c *container) runMenu(ctx context.Context) error {
	entries := menuEntries()
	options := make([]ui.Option, 0, len(entries)+1)
	for _, entry := range entries {
		options = append(options, ui.Option{Label: entry.label, Value: entry.value})
	}
	options = append(options, ui.Option{Label: "[q] quit", Value: menuQuit})
	choice, err := c.prompter.Select("What do you want to do?", options)
	if err != nil {
		return err
	}
	if choice == menuQuit {
		return nil
	}
	for _, entry := range entries {
		if entry.value != choice {
			continue
		}
		if entry.readOnly {
			return entry.run(ctx, c)
		}
		return c.runLocked(ctx, func(ctx context.Context) error {
			return entry.run(ctx, c)
		})
	}
	return nil
}
