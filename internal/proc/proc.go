// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package proc runs external programs (git, pdftoppm, mutool, marp, docker)
// behind a small interface so that callers can be tested without the
// binaries installed.
package proc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes one invocation of an external program.
type Cmd struct {
	Name string
	Args []string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the parent environment.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String returns the command line as it would be typed in a shell,
// without quoting.
func (c Cmd) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner locates and executes programs.
type Runner interface {
	// LookPath reports the resolved path of an executable on PATH.
	LookPath(file string) (string, error)

	// Run executes c and waits for it to exit. A non-zero exit is returned
	// as an *ExitError carrying the captured stderr.
	Run(ctx context.Context, c Cmd) error
}

// ExitError reports a program that ran but did not succeed.
type ExitError struct {
	Cmd    string
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Cmd, e.Err, msg)
}

func (e *ExitError) Unwrap() error { return e.Err }

// OS is the production Runner backed by os/exec.
type OS struct{}

func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OS) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout

	// Keep a copy of stderr for the error message even when the caller
	// streams it elsewhere.
	var stderr bytes.Buffer
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		return &ExitError{Cmd: c.Name, Err: err, Stderr: stderr.String()}
	}
	return nil
}

// Default is the Runner used when callers do not inject one.
var Default Runner = OS{}
