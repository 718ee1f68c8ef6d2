package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/compozy/flowctl/internal/config"
	"github.com/compozy/flowctl/internal/logger"
	"github.com/compozy/flowctl/internal/orchestrator"
	"github.com/compozy/flowctl/internal/repository"
	"github.com/compozy/flowctl/internal/service"
	"github.com/compozy/flowctl/internal/ui"
)

// container wires the collaborators every workflow command shares. It is
// built lazily on first use so version and help keep working outside a git
// repository.
type container struct {
	cfg      *config.Config
	log      *zap.Logger
	orch     *orchestrator.WorkflowOrchestrator
	prompter ui.Prompter
	lock     *repository.WorkspaceLock
}

var sharedContainer *container

func getContainer() (*container, error) {
	if sharedContainer != nil {
		return sharedContainer, nil
	}
	built, err := newContainer()
	if err != nil {
		return nil, err
	}
	sharedContainer = built
	return built, nil
}

func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, flagVerbose)
	if err != nil {
		return nil, err
	}
	gitRepo, err := repository.NewGitRepository(cfg.Remote, cfg.Github.Token)
	if err != nil {
		return nil, err
	}
	reviewRepo, err := buildReviewRepo(cfg)
	if err != nil {
		return nil, err
	}
	fs := afero.NewOsFs()
	pkgSvc := service.NewPackageManagerService(fs, gitRepo.Root(), preferredManager(cfg))
	stateDir := filepath.Join(gitRepo.Root(), ".git", "flowctl")
	journal := repository.NewJSONRunJournal(fs, filepath.Join(stateDir, "runs"))
	prompter := buildPrompter()
	orch := orchestrator.New(orchestrator.Deps{
		GitRepo:    gitRepo,
		ReviewRepo: reviewRepo,
		PkgSvc:     pkgSvc,
		Journal:    journal,
		Workflows:  cfg.Workflows(),
		Config:     cfg,
		Prompter:   prompter,
		Printer:    ui.NewPrinter(),
		Log:        log,
	})
	return &container{
		cfg:      cfg,
		log:      log,
		orch:     orch,
		prompter: prompter,
		lock:     repository.NewWorkspaceLock(filepath.Join(stateDir, "lock")),
	}, nil
}

// buildReviewRepo picks the GitHub client when the configuration carries
// token, owner and repo, and the noop fallback otherwise. The noop variant
// fails with a remedy only when a review operation actually runs.
func buildReviewRepo(cfg *config.Config) (repository.ReviewRepository, error) {
	if !cfg.ReviewConfigured() {
		return repository.NewNoopReviewRepository(), nil
	}
	return repository.NewGithubReviewRepository(cfg.Github.Token, cfg.Github.Owner, cfg.Github.Repo)
}

// preferredManager translates the config selector into the service value.
// Auto maps to the zero Manager so lockfile detection decides.
func preferredManager(cfg *config.Config) service.Manager {
	switch cfg.PackageManager {
	case config.PackageManagerNpm:
		return service.ManagerNpm
	case config.PackageManagerPnpm:
		return service.ManagerPnpm
	case config.PackageManagerYarn:
		return service.ManagerYarn
	case config.PackageManagerNone:
		return service.ManagerNone
	}
	return ""
}

func buildPrompter() ui.Prompter {
	if flagNonInteractive {
		return ui.NewNonInteractivePrompter(flagAssumeYes)
	}
	if flagAssumeYes {
		return ui.WithAutoConfirm(ui.NewPrompter())
	}
	return ui.NewPrompter()
}

// runLocked runs a mutating workflow under the repository-wide lock so
// concurrent flowctl invocations cannot interleave their git operations.
// Read-only commands call the orchestrator directly instead.
func (c *container) runLocked(ctx context.Context, fn func(context.Context) error) error {
	if err := c.lock.Acquire(ctx); err != nil {
		return err
	}
	defer c.lock.Release()
	return fn(ctx)
}
