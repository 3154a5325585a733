// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a local container runtime and runs one-shot
// filter containers (PDF on stdin, image on stdout). It backs the
// container rasterizer when neither poppler nor MuPDF is installed.
package container

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-deck/internal/proc"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available(ctx context.Context) bool

	// ImageExists returns nil when the named image exists locally.
	ImageExists(ctx context.Context, image string) error

	// Run executes image with stdin piped in and stdout captured. Extra
	// args are passed to the image entrypoint.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer, args ...string) error
}

// runtime implements Runtime for a specific container binary. Docker and
// Podman differ only in binary name and the image-check subcommand.
type runtime struct {
	bin           string
	imageCheckCmd []string
	runner        proc.Runner
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	if _, err := r.runner.LookPath(r.bin); err != nil {
		return false
	}
	return r.runner.Run(ctx, proc.Cmd{Name: r.bin, Args: []string{"info"}, Stdout: io.Discard}) == nil
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.runner.Run(ctx, proc.Cmd{Name: r.bin, Args: args, Stdout: io.Discard}); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer, args ...string) error {
	full := append([]string{"run", "--rm", "-i", "--network", "none", image}, args...)
	c := proc.Cmd{Name: r.bin, Args: full, Stdin: stdin, Stdout: stdout}
	if err := r.runner.Run(ctx, c); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newDockerRuntime(runner proc.Runner) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		runner:        runner,
	}
}

func newPodmanRuntime(runner proc.Runner) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		runner:        runner,
	}
}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime(ctx context.Context, runner proc.Runner) (Runtime, error) {
	if runner == nil {
		runner = proc.Default
	}

	docker := newDockerRuntime(runner)
	if docker.Available(ctx) {
		return docker, nil
	}

	podman := newPodmanRuntime(runner)
	if podman.Available(ctx) {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
