package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/boilerroom/sidestep/internal/minutes"
)

var (
	// ErrRepoURLMissing indicates the settings carry no github.repo_url.
	ErrRepoURLMissing = errors.New("github repo_url is not configured")

	// ErrNotARepo indicates the local clone target exists but is not a git
	// repository.
	ErrNotARepo = errors.New("directory exists but is not a git repository")

	// ErrInvalidBranch indicates a branch name with characters git rejects.
	ErrInvalidBranch = errors.New("invalid branch name")
)

var invalidBranchRe = regexp.MustCompile(`[\s~^:?*\[\]\\]`)

// ValidateBranch rejects branch names containing whitespace or git ref
// metacharacters.
func ValidateBranch(branch string) error {
	if branch == "" || invalidBranchRe.MatchString(branch) {
		return fmt.Errorf("%w: %q", ErrInvalidBranch, branch)
	}
	return nil
}

// RepoNameFromURL derives the local directory name from a clone URL.
func RepoNameFromURL(url string) string {
	name := strings.TrimRight(strings.TrimSpace(url), "/")
	if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// CommitMessage formats the commit message for an uploaded document.
func CommitMessage(prefix, stem string, ts time.Time) string {
	return fmt.Sprintf("%s: %s (%s)", prefix, stem, ts.Format("2006-01-02 15:04"))
}

// Publisher pushes minutes documents into the configured git repository.
type Publisher struct {
	git      *GitRunner
	settings minutes.GitHubSettings
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher creates a publisher for the given settings.
func NewPublisher(settings minutes.GitHubSettings, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		git:      NewGitRunner(logger),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish runs the full flow: ensure a local clone, check out the branch,
// copy the document into the configured subdirectory, commit, and push.
// It returns the path of the document inside the repository.
func (p *Publisher) Publish(ctx context.Context, docxPath, branch string) (string, error) {
	if branch == "" {
		branch = p.settings.DefaultBranch
	}
	if err := ValidateBranch(branch); err != nil {
		return "", err
	}

	repoDir, err := p.EnsureCloned(ctx)
	if err != nil {
		return "", err
	}

	if err := p.CheckoutBranch(ctx, repoDir, branch); err != nil {
		return "", err
	}

	target, err := p.stageDocument(docxPath, repoDir)
	if err != nil {
		return "", err
	}

	if err := p.CommitAndPush(ctx, repoDir, target); err != nil {
		return "", err
	}

	p.logger.Info("Document published", "path", target, "branch", branch)
	return target, nil
}

// EnsureCloned returns the local repository directory, cloning it first
// when it does not exist yet. An existing checkout is reused; a non-empty
// directory that is not a repository is an error.
func (p *Publisher) EnsureCloned(ctx context.Context) (string, error) {
	if strings.TrimSpace(p.settings.RepoURL) == "" {
		return "", ErrRepoURLMissing
	}

	base, err := filepath.Abs(minutes.ExpandUser(p.settings.LocalReposBase))
	if err != nil {
		return "", fmt.Errorf("resolve repos base: %w", err)
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("create repos base: %w", err)
	}

	repoDir := filepath.Join(base, RepoNameFromURL(p.settings.RepoURL))

	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err == nil {
		return repoDir, nil
	}

	if entries, err := os.ReadDir(repoDir); err == nil && len(entries) > 0 {
		return "", fmt.Errorf("%w: %s", ErrNotARepo, repoDir)
	}

	p.logger.Info("Cloning repository", "url", p.settings.RepoURL, "dir", repoDir)
	if _, err := p.git.Run(ctx, base, "clone", p.settings.RepoURL, repoDir); err != nil {
		return "", err
	}

	return repoDir, nil
}

// CheckoutBranch switches the checkout to branch, preferring an existing
// local branch, then a tracking checkout of origin/<branch>, and finally
// creating the branch off the remote's default HEAD.
func (p *Publisher) CheckoutBranch(ctx context.Context, repoDir, branch string) error {
	if _, err := p.git.Run(ctx, repoDir, "fetch", "--all", "--prune"); err != nil {
		return err
	}

	local, err := p.git.Run(ctx, repoDir, "branch", "--list", branch)
	if err != nil {
		return err
	}
	if local != "" {
		_, err := p.git.Run(ctx, repoDir, "checkout", branch)
		return err
	}

	remote, err := p.git.Run(ctx, repoDir, "branch", "-r", "--list", "origin/"+branch)
	if err != nil {
		return err
	}
	if remote != "" {
		_, err := p.git.Run(ctx, repoDir, "checkout", "-t", "origin/"+branch)
		return err
	}

	defaultBranch := "main"
	if originHead, err := p.git.Run(ctx, repoDir, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil && originHead != "" {
		parts := strings.Split(originHead, "/")
		defaultBranch = parts[len(parts)-1]
	}

	_, err = p.git.Run(ctx, repoDir, "checkout", "-b", branch, "origin/"+defaultBranch)
	return err
}

// CommitAndPush stages the file, commits it unless the tree is clean, and
// pushes, setting the upstream on first push of a new branch.
func (p *Publisher) CommitAndPush(ctx context.Context, repoDir, fileInRepo string) error {
	rel, err := filepath.Rel(repoDir, fileInRepo)
	if err != nil {
		return fmt.Errorf("relativize %s: %w", fileInRepo, err)
	}

	if _, err := p.git.Run(ctx, repoDir, "add", rel); err != nil {
		return err
	}

	status, err := p.git.Run(ctx, repoDir, "status", "--porcelain")
	if err != nil {
		return err
	}
	if status == "" {
		p.logger.Info("Nothing to commit", "file", rel)
		return nil
	}

	stem := strings.TrimSuffix(filepath.Base(fileInRepo), filepath.Ext(fileInRepo))
	msg := CommitMessage(p.settings.CommitPrefix, stem, p.now())
	if _, err := p.git.Run(ctx, repoDir, "commit", "-m", msg); err != nil {
		return err
	}

	if _, err := p.git.Run(ctx, repoDir, "push"); err != nil {
		current, brErr := p.git.Run(ctx, repoDir, "rev-parse", "--abbrev-ref", "HEAD")
		if brErr != nil {
			return err
		}
		_, err = p.git.Run(ctx, repoDir, "push", "-u", "origin", current)
		return err
	}

	return nil
}

func (p *Publisher) stageDocument(docxPath, repoDir string) (string, error) {
	data, err := os.ReadFile(docxPath)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	targetDir := filepath.Join(repoDir, p.settings.RepoSubdir)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("create target directory: %w", err)
	}

	target := filepath.Join(targetDir, filepath.Base(docxPath))
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("copy document into repo: %w", err)
	}

	return target, nil
}
