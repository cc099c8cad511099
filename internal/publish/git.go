// Package publish copies a generated minutes document into a git checkout
// and commits and pushes it. It drives the git CLI so the user's existing
// authentication, remotes, and tracking configuration apply unchanged.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// GitError reports a failed git invocation together with its stderr.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *GitError) Unwrap() error { return e.Err }

// GitRunner executes git commands.
type GitRunner struct {
	logger *slog.Logger
}

// NewGitRunner creates a runner. A nil logger falls back to slog.Default.
func NewGitRunner(logger *slog.Logger) *GitRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitRunner{logger: logger}
}

// Run executes git with the given arguments in dir (or the inherited
// working directory when dir is empty) and returns trimmed stdout.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Debug("Running git", "args", args, "dir", dir)

	if err := cmd.Run(); err != nil {
		return "", &GitError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}
