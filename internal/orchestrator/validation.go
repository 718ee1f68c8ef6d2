package orchestrator

import (
	"regexp"
	"strings"

	"github.com/compozy/flowctl/internal/domain"
)

// branchNamePattern matches the branch name alphabet git accepts
var branchNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)

// ValidateBranchName rejects names git itself would refuse, before any
// branch is created or deleted.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return domain.NewInvalidInput("branch name cannot be empty")
	}
	if len(branch) > 255 {
		return domain.NewInvalidInput("branch name too long: %d characters (max 255)", len(branch))
	}
	if strings.HasPrefix(branch, "/") || strings.HasSuffix(branch, "/") {
		return domain.NewInvalidInput("branch name cannot start or end with a slash: %s", branch)
	}
	if strings.Contains(branch, "..") {
		return domain.NewInvalidInput("branch name cannot contain consecutive dots: %s", branch)
	}
	if strings.HasSuffix(branch, ".lock") {
		return domain.NewInvalidInput("branch name cannot end with .lock: %s", branch)
	}
	if !branchNamePattern.MatchString(branch) {
		return domain.NewInvalidInput(
			"branch name %s may only contain letters, digits, dots, dashes, underscores and slashes", branch)
	}
	return nil
}

// NormalizeVersion parses a version argument, tolerating the tag-style
// leading v users habitually type.
func NormalizeVersion(raw string) (*domain.Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	return domain.NewVersion(trimmed)
}
