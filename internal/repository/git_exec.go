package repository

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultMergeTimeout bounds the one git operation that shells out. The
// merge itself is local, but hooks can run arbitrary commands.
const DefaultMergeTimeout = 2 * time.Minute

var safeBranchName = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)

func mergeTimeout() time.Duration {
	if v := os.Getenv("FLOWCTL_MERGE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultMergeTimeout
}

// MergeNoFF merges source into the current branch with a merge commit, via
// the git binary. go-git has no no-fast-forward merge, and the production
// topology requires one so every ship stays visible as a merge commit.
func (r *gitRepository) MergeNoFF(ctx context.Context, source, message string) error {
	if !safeBranchName.MatchString(source) {
		return fmt.Errorf("invalid branch name %q", source)
	}
	ctx, cancel := context.WithTimeout(ctx, mergeTimeout())
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "merge", "--no-ff", "--no-edit", "-m", message, source)
	cmd.Dir = r.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("git merge --no-ff %s timed out after %s", source, mergeTimeout())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return fmt.Errorf("git merge --no-ff %s failed: %s: %w", source, detail, err)
		}
		return fmt.Errorf("git merge --no-ff %s failed: %w", source, err)
	}
	return nil
}
