// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repo clones a paper's source repository into the output
// directory. An existing checkout is reused as-is; nothing is fetched or
// updated.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-deck/internal/proc"
	"github.com/pdiddy/paper-deck/pkg/types"
)

// Repository is a local checkout of a paper repository.
type Repository struct {
	// Name is the directory name derived from the URL.
	Name string
	// Path is OutputDir/Name.
	Path string
}

// ErrEmptyName is returned when no repository name can be derived from a URL.
var ErrEmptyName = errors.New("cannot derive repository name from URL")

// Name returns the directory git would create for url: the last path
// segment with trailing slashes and a ".git" suffix removed.
func Name(url string) string {
	trimmed := strings.TrimRight(url, "/")
	name := trimmed
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		name = trimmed[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// Cloner runs git clone through a proc.Runner.
type Cloner struct {
	runner proc.Runner
	w      io.Writer
}

// NewCloner returns a Cloner that reports progress to w. A nil runner
// uses the real git binary.
func NewCloner(runner proc.Runner, w io.Writer) *Cloner {
	if runner == nil {
		runner = proc.Default
	}
	return &Cloner{runner: runner, w: w}
}

// Clone makes sure cfg.URL is checked out under cfg.OutputDir. If the target
// directory already exists it is returned without invoking git.
func (c *Cloner) Clone(ctx context.Context, cfg types.RepoConfig) (Repository, error) {
	if cfg.URL == "" {
		return Repository{}, errors.New("repository URL is required")
	}
	name := Name(cfg.URL)
	if name == "" || name == "." || name == ".." {
		return Repository{}, fmt.Errorf("%w: %q", ErrEmptyName, cfg.URL)
	}

	r := Repository{Name: name, Path: filepath.Join(cfg.OutputDir, name)}

	if _, err := os.Stat(r.Path); err == nil {
		fmt.Fprintf(c.w, "Repository already exists: %s\n", r.Path)
		return r, nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Repository{}, fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}

	fmt.Fprintf(c.w, "Cloning repository: %s\n", cfg.URL)
	cmd := proc.Cmd{
		Name:   "git",
		Args:   cloneArgs(cfg, name),
		Dir:    cfg.OutputDir,
		Env:    gitEnv(cfg),
		Stdout: c.w,
	}
	if err := c.runner.Run(ctx, cmd); err != nil {
		return Repository{}, fmt.Errorf("cloning %s: %w", cfg.URL, err)
	}

	return r, nil
}

// gitEnv keeps git from prompting for credentials or reading host-wide
// configuration. A token is passed only for github.com, through GIT_CONFIG_*
// variables rather than arguments.
func gitEnv(cfg types.RepoConfig) []string {
	env := []string{
		"GIT_TERMINAL_PROMPT=0",
		"GIT_CONFIG_NOSYSTEM=1",
	}
	if cfg.Token != "" && isGitHubHTTPS(cfg.URL) {
		env = append(env,
			"GIT_CONFIG_COUNT=1",
			"GIT_CONFIG_KEY_0=http."+githubPrefix+".extraheader",
			"GIT_CONFIG_VALUE_0=Authorization: Bearer "+cfg.Token,
		)
	}
	return env
}

const githubPrefix = "https://github.com/"

func isGitHubHTTPS(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && strings.EqualFold(u.Host, "github.com")
}

func cloneArgs(cfg types.RepoConfig, name string) []string {
	args := []string{"clone"}
	if cfg.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(cfg.Depth))
	}
	if cfg.Branch != "" {
		args = append(args, "--branch", cfg.Branch)
	}
	return append(args, "--", cfg.URL, name)
}
