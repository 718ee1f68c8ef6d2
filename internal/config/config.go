package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/viper"

	"github.com/compozy/flowctl/internal/domain"
)

// PackageManager selector values. Auto picks by lockfile, none disables
// manifest access entirely.
const (
	PackageManagerAuto = "auto"
	PackageManagerNpm  = "npm"
	PackageManagerPnpm = "pnpm"
	PackageManagerYarn = "yarn"
	PackageManagerNone = "none"
)

type Config struct {
	Base           BaseConfig   `mapstructure:"base"`
	Prefix         PrefixConfig `mapstructure:"prefix"`
	Remote         string       `mapstructure:"remote"`
	Versioning     bool         `mapstructure:"versioning"`
	PackageManager string       `mapstructure:"package_manager"`
	Github         GithubConfig `mapstructure:"github"`
	Log            LogConfig    `mapstructure:"log"`
}

// BaseConfig names the two long-lived branches of the topology.
type BaseConfig struct {
	Develop string `mapstructure:"develop"`
	Main    string `mapstructure:"main"`
}

// PrefixConfig overrides the workflow branch prefixes.
type PrefixConfig struct {
	Feature string `mapstructure:"feature"`
	Fix     string `mapstructure:"fix"`
	Release string `mapstructure:"release"`
	Hotfix  string `mapstructure:"hotfix"`
}

type GithubConfig struct {
	Token string `mapstructure:"token"`
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Base:           BaseConfig{Develop: "develop", Main: "main"},
		Prefix:         PrefixConfig{Feature: "feature/", Fix: "fix/", Release: "release/", Hotfix: "hotfix/"},
		Remote:         "origin",
		Versioning:     true,
		PackageManager: PackageManagerAuto,
		Log:            LogConfig{Level: "warn"},
	}
}

// Workflows builds the branch rule set from the configured bases and
// prefixes.
func (c *Config) Workflows() *domain.Workflows {
	return domain.NewWorkflows(c.Base.Develop, c.Base.Main, map[domain.WorkflowKind]string{
		domain.WorkflowFeature: c.Prefix.Feature,
		domain.WorkflowFix:     c.Prefix.Fix,
		domain.WorkflowRelease: c.Prefix.Release,
		domain.WorkflowHotfix:  c.Prefix.Hotfix,
	})
}

// ReviewConfigured reports whether enough GitHub settings are present to
// talk to the review platform.
func (c *Config) ReviewConfigured() bool {
	return c.Github.Token != "" && c.Github.Owner != "" && c.Github.Repo != ""
}

var prefixPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+/$`)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.validateBases(); err != nil {
		return err
	}
	if err := c.validatePrefixes(); err != nil {
		return err
	}
	if c.Remote == "" {
		return fmt.Errorf("remote cannot be empty")
	}
	switch c.PackageManager {
	case PackageManagerAuto, PackageManagerNpm, PackageManagerPnpm, PackageManagerYarn, PackageManagerNone:
	default:
		return fmt.Errorf("invalid package_manager %q: expected auto, npm, pnpm, yarn or none", c.PackageManager)
	}
	// GitHub settings are optional; shape-check only what is provided.
	if c.Github.Token != "" {
		if err := ValidateGitHubToken(c.Github.Token); err != nil {
			return fmt.Errorf("invalid github token: %w", err)
		}
	}
	if c.Github.Owner != "" || c.Github.Repo != "" {
		if err := ValidateGitHubOwnerRepo(c.Github.Owner, c.Github.Repo); err != nil {
			return fmt.Errorf("invalid github configuration: %w", err)
		}
	}
	return nil
}

func (c *Config) validateBases() error {
	if c.Base.Develop == "" {
		return fmt.Errorf("base.develop cannot be empty")
	}
	if c.Base.Main == "" {
		return fmt.Errorf("base.main cannot be empty")
	}
	if c.Base.Develop == c.Base.Main {
		return fmt.Errorf("base.develop and base.main must name different branches")
	}
	return nil
}

func (c *Config) validatePrefixes() error {
	prefixes := map[string]string{
		"prefix.feature": c.Prefix.Feature,
		"prefix.fix":     c.Prefix.Fix,
		"prefix.release": c.Prefix.Release,
		"prefix.hotfix":  c.Prefix.Hotfix,
	}
	seen := make(map[string]string, len(prefixes))
	for key, prefix := range prefixes {
		if prefix == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
		if !prefixPattern.MatchString(prefix) {
			return fmt.Errorf("%s %q must be a word followed by a slash", key, prefix)
		}
		if other, dup := seen[prefix]; dup {
			return fmt.Errorf("%s and %s share the prefix %q", other, key, prefix)
		}
		seen[prefix] = key
	}
	return nil
}

// ValidateGitHubToken validates GitHub token format (exported for reuse).
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	legacyPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	classicPAT := regexp.MustCompile(`^ghp_[a-zA-Z0-9]{36}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !legacyPAT.MatchString(token) &&
		!classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names
// (exported for reuse).
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".flowctl")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	// Configure environment variables
	viper.SetEnvPrefix("FLOWCTL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Explicitly bind environment variables
	// BindEnv allows multiple env vars - it will check them in order
	if err := viper.BindEnv("github.token", "GITHUB_TOKEN", "FLOWCTL_GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind github.token env: %w", err)
	}
	if err := viper.BindEnv("github.owner", "GITHUB_OWNER", "FLOWCTL_GITHUB_OWNER"); err != nil {
		return nil, fmt.Errorf("failed to bind github.owner env: %w", err)
	}
	if err := viper.BindEnv("github.repo", "GITHUB_REPO", "FLOWCTL_GITHUB_REPO"); err != nil {
		return nil, fmt.Errorf("failed to bind github.repo env: %w", err)
	}
	if err := viper.BindEnv("log.level", "FLOWCTL_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind log.level env: %w", err)
	}
	// Set defaults
	defaults := DefaultConfig()
	viper.SetDefault("base.develop", defaults.Base.Develop)
	viper.SetDefault("base.main", defaults.Base.Main)
	viper.SetDefault("prefix.feature", defaults.Prefix.Feature)
	viper.SetDefault("prefix.fix", defaults.Prefix.Fix)
	viper.SetDefault("prefix.release", defaults.Prefix.Release)
	viper.SetDefault("prefix.hotfix", defaults.Prefix.Hotfix)
	viper.SetDefault("remote", defaults.Remote)
	viper.SetDefault("versioning", defaults.Versioning)
	viper.SetDefault("package_manager", defaults.PackageManager)
	viper.SetDefault("log.level", defaults.Log.Level)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := populateRepositoryDefaults(&config); err != nil {
		return nil, err
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// populateRepositoryDefaults fills github.owner and github.repo when the
// configuration leaves them blank: first from the GITHUB_REPOSITORY slug CI
// provides, then from the configured remote of the repository in the working
// directory. Leaving them unresolved is not an error; review operations
// check for themselves.
func populateRepositoryDefaults(cfg *Config) error {
	if cfg.Github.Owner != "" && cfg.Github.Repo != "" {
		return nil
	}
	if slug := os.Getenv("GITHUB_REPOSITORY"); slug != "" {
		parts := strings.SplitN(slug, "/", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			cfg.Github.Owner = parts[0]
			cfg.Github.Repo = parts[1]
			return nil
		}
	}
	if owner, repo := os.Getenv("GITHUB_REPOSITORY_OWNER"), os.Getenv("GITHUB_REPOSITORY_NAME"); owner != "" && repo != "" {
		cfg.Github.Owner = owner
		cfg.Github.Repo = repo
		return nil
	}
	remoteName := cfg.Remote
	if remoteName == "" {
		remoteName = "origin"
	}
	repo, err := git.PlainOpen(".")
	if err != nil {
		return nil
	}
	remote, err := repo.Remote(remoteName)
	if err != nil || len(remote.Config().URLs) == 0 {
		return nil
	}
	owner, name, err := parseGitRemoteURL(remote.Config().URLs[0])
	if err != nil {
		return nil
	}
	cfg.Github.Owner = owner
	cfg.Github.Repo = name
	return nil
}

// parseGitRemoteURL extracts the owner and repository name from a remote
// URL in https, scp-like ssh, or plain filesystem-path form.
func parseGitRemoteURL(raw string) (string, string, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if trimmed == "" {
		return "", "", fmt.Errorf("empty remote url")
	}
	if strings.Contains(trimmed, "@") && !strings.Contains(trimmed, "://") {
		// scp-like ssh form: git@host:owner/repo
		colon := strings.Index(trimmed, ":")
		if colon < 0 {
			return "", "", fmt.Errorf("unrecognized remote url %q", raw)
		}
		trimmed = trimmed[colon+1:]
	} else if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
		trimmed = strings.TrimPrefix(parsed.Path, "/")
	}
	trimmed = filepath.ToSlash(trimmed)
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("cannot derive owner and repository from remote url %q", raw)
	}
	owner := parts[len(parts)-2]
	name := parts[len(parts)-1]
	if owner == "" || name == "" {
		return "", "", fmt.Errorf("cannot derive owner and repository from remote url %q", raw)
	}
	return owner, name, nil
}
