package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/compozy/flowctl/internal/domain"
)

// gitRepository is the implementation of the GitExtendedRepository interface.

type gitRepository struct {
	repo   *git.Repository
	root   string
	remote string
	token  string
}

// NewGitRepository opens the repository enclosing the working directory.
func NewGitRepository(remote, token string) (GitExtendedRepository, error) {
	return OpenGitRepository(".", remote, token)
}

// OpenGitRepository opens the repository at or above path.
func OpenGitRepository(path, remote, token string) (GitExtendedRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	if remote == "" {
		remote = "origin"
	}
	return &gitRepository{repo: repo, root: wt.Filesystem.Root(), remote: remote, token: token}, nil
}

// Root returns the working-tree root directory.
func (r *gitRepository) Root() string {
	return r.root
}

// getAuth returns authentication for token-based remotes, or nil for
// anonymous and local ones.
func (r *gitRepository) getAuth() *http.BasicAuth {
	if r.token == "" {
		return nil
	}
	// Use x-access-token as username for GitHub token authentication
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: r.token,
	}
}

// signature builds the tagger/committer identity from the merged git
// configuration, falling back to a tool identity when none is set.
func (r *gitRepository) signature() *object.Signature {
	name, email := "flowctl", "flowctl@localhost"
	if cfg, err := r.repo.ConfigScoped(config.SystemScope); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}
}

// CurrentBranch returns the name of the checked-out branch.
func (r *gitRepository) CurrentBranch(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash().String()[:7])
	}
	return head.Name().Short(), nil
}

// HeadCommit returns the SHA of the current HEAD commit.
func (r *gitRepository) HeadCommit(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// IsClean reports whether the working tree has no uncommitted changes.
func (r *gitRepository) IsClean(_ context.Context) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}

// CreateBranch creates a new branch at the current HEAD.
func (r *gitRepository) CreateBranch(_ context.Context, name string) error {
	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, false); err == nil {
		return fmt.Errorf("branch %s already exists", name)
	}
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}
	ref := plumbing.NewHashReference(branchRef, head.Hash())
	return r.repo.Storer.SetReference(ref)
}

// CheckoutBranch switches to the specified branch.
func (r *gitRepository) CheckoutBranch(_ context.Context, name string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Force:  false,
	})
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", name, err)
	}
	return nil
}

// DeleteBranch deletes a local branch.
func (r *gitRepository) DeleteBranch(_ context.Context, name string) error {
	err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name))
	if err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// DeleteRemoteBranch deletes the remote counterpart of a branch. An already
// deleted remote branch counts as success.
func (r *gitRepository) DeleteRemoteBranch(ctx context.Context, name string) error {
	refSpec := config.RefSpec(":refs/heads/" + name)
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to delete remote branch %s: %w", name, err)
	}
	return nil
}

// ListBranches returns every local branch with its tip commit time.
func (r *gitRepository) ListBranches(_ context.Context) ([]domain.BranchInfo, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var branches []domain.BranchInfo
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		info := domain.BranchInfo{Name: ref.Name().Short(), Hash: ref.Hash().String()}
		if commit, err := r.repo.CommitObject(ref.Hash()); err == nil {
			info.CommitTime = commit.Committer.When.Unix()
		}
		branches = append(branches, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}
	return branches, nil
}

// Fetch refreshes remote-tracking branches and tags from the configured
// remote. Already up to date is success.
func (r *gitRepository) Fetch(ctx context.Context) error {
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return fmt.Errorf("failed to get remote %s: %w", r.remote, err)
	}
	err = remote.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", r.remote)),
			config.RefSpec("+refs/tags/*:refs/tags/*"),
		},
		Auth: r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to fetch from %s: %w", r.remote, err)
	}
	return nil
}

// RemoteTip returns the remote-tracking tip of branch, if one exists. Call
// Fetch first; remote-tracking state is only as fresh as the last fetch.
func (r *gitRepository) RemoteTip(_ context.Context, branch string) (string, bool, error) {
	ref, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.remote, branch), true)
	if err == plumbing.ErrReferenceNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %s/%s: %w", r.remote, branch, err)
	}
	return ref.Hash().String(), true, nil
}

// FastForwardPull updates a local branch to its remote counterpart without
// creating a merge commit. The current branch is pulled through the
// worktree; any other branch is updated by a non-forced fetch, which the
// transport rejects unless it is a fast-forward.
func (r *gitRepository) FastForwardPull(ctx context.Context, branch string) error {
	current, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current == branch {
		wt, err := r.repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree: %w", err)
		}
		err = wt.PullContext(ctx, &git.PullOptions{
			RemoteName:    r.remote,
			ReferenceName: plumbing.NewBranchReferenceName(branch),
			SingleBranch:  true,
			Auth:          r.getAuth(),
		})
		if err != nil && err != git.NoErrAlreadyUpToDate {
			return fmt.Errorf("failed to fast-forward %s: %w", branch, err)
		}
		return nil
	}
	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return fmt.Errorf("failed to get remote %s: %w", r.remote, err)
	}
	err = remote.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)),
		},
		Auth: r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to fast-forward %s: %w", branch, err)
	}
	return nil
}

// ResolveRef resolves a revision (branch, tag, remote ref or SHA) to a
// commit hash.
func (r *gitRepository) ResolveRef(_ context.Context, ref string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("failed to resolve revision %s: %w", ref, err)
	}
	return hash.String(), nil
}

func (r *gitRepository) commitFor(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %s: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", rev, err)
	}
	return commit, nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (r *gitRepository) IsAncestor(_ context.Context, ancestor, descendant string) (bool, error) {
	ancestorCommit, err := r.commitFor(ancestor)
	if err != nil {
		return false, err
	}
	descendantCommit, err := r.commitFor(descendant)
	if err != nil {
		return false, err
	}
	ok, err := ancestorCommit.IsAncestor(descendantCommit)
	if err != nil {
		return false, fmt.Errorf("failed to compute ancestry: %w", err)
	}
	return ok, nil
}

// MergeBase returns the best common ancestor of two revisions.
func (r *gitRepository) MergeBase(_ context.Context, a, b string) (string, error) {
	commitA, err := r.commitFor(a)
	if err != nil {
		return "", err
	}
	commitB, err := r.commitFor(b)
	if err != nil {
		return "", err
	}
	bases, err := commitA.MergeBase(commitB)
	if err != nil {
		return "", fmt.Errorf("failed to compute merge base: %w", err)
	}
	if len(bases) == 0 {
		return "", fmt.Errorf("no common ancestor between %s and %s", a, b)
	}
	return bases[0].Hash.String(), nil
}

// CountCommitsBetween counts the commits reachable from tip down to, and
// excluding, ancestor. When ancestor is not in tip's history the full
// history length is returned.
func (r *gitRepository) CountCommitsBetween(_ context.Context, ancestor, tip string) (int, error) {
	ancestorCommit, err := r.commitFor(ancestor)
	if err != nil {
		return 0, err
	}
	tipCommit, err := r.commitFor(tip)
	if err != nil {
		return 0, err
	}
	commits, err := r.repo.Log(&git.LogOptions{From: tipCommit.Hash})
	if err != nil {
		return 0, fmt.Errorf("failed to get commits: %w", err)
	}
	var count int
	err = commits.ForEach(func(c *object.Commit) error {
		if c.Hash == ancestorCommit.Hash {
			return storer.ErrStop
		}
		count++
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return 0, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return count, nil
}

// CommitPaths stages the given paths and commits them with the message.
func (r *gitRepository) CommitPaths(_ context.Context, paths []string, message string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	for _, path := range paths {
		if _, err := wt.Add(path); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}
	if _, err := wt.Commit(message, &git.CommitOptions{Author: r.signature()}); err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}
	return nil
}

// ListTags returns all tag names.
func (r *gitRepository) ListTags(_ context.Context) ([]string, error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	var tags []string
	err = tagRefs.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// LatestTag returns the tag whose commit is most recent, or "" when the
// repository has no tags.
func (r *gitRepository) LatestTag(_ context.Context) (string, error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return "", fmt.Errorf("failed to get tags: %w", err)
	}
	var latestTag string
	var latestCommitTime time.Time
	if err := tagRefs.ForEach(func(ref *plumbing.Reference) error {
		commit, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			// Annotated tags point at a tag object, not a commit
			tag, err := r.repo.TagObject(ref.Hash())
			if err != nil {
				return nil
			}
			commit, err = r.repo.CommitObject(tag.Target)
			if err != nil {
				return nil
			}
		}
		if commit.Committer.When.After(latestCommitTime) {
			latestCommitTime = commit.Committer.When
			latestTag = ref.Name().Short()
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to iterate tags: %w", err)
	}
	return latestTag, nil
}

// TagExists checks if a tag exists.
func (r *gitRepository) TagExists(_ context.Context, tag string) (bool, error) {
	_, err := r.repo.Tag(tag)
	if err == git.ErrTagNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return true, nil
}

// CreateTag creates an annotated tag pointing at the given revision.
func (r *gitRepository) CreateTag(_ context.Context, tag, commit, msg string) error {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(commit))
	if err != nil {
		return fmt.Errorf("failed to resolve revision %s: %w", commit, err)
	}
	_, err = r.repo.CreateTag(tag, *hash, &git.CreateTagOptions{
		Message: msg,
		Tagger:  r.signature(),
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

// DeleteTag deletes a local tag.
func (r *gitRepository) DeleteTag(_ context.Context, tag string) error {
	if err := r.repo.DeleteTag(tag); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tag, err)
	}
	return nil
}

// PushTag pushes a tag to the remote.
func (r *gitRepository) PushTag(ctx context.Context, tag string) error {
	ref := domain.TagRef(tag)
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Auth:       r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push tag %s: %w", tag, err)
	}
	return nil
}

// PushBranch pushes a branch to the remote.
func (r *gitRepository) PushBranch(ctx context.Context, name string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", name, name))},
		Auth:       r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push branch %s: %w", name, err)
	}
	return nil
}
