// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package proctest provides a recording proc.Runner for tests.
package proctest

import (
	"context"
	"errors"
	"sync"

	"github.com/pdiddy/paper-deck/internal/proc"
)

// Fake records every command and answers LookPath from a fixed set of
// binaries. Handler, when set, decides the outcome of each Run and may
// write to the command's Stdout.
type Fake struct {
	Bins    map[string]bool
	Handler func(c proc.Cmd) error

	mu    sync.Mutex
	calls []proc.Cmd
}

// LookPath succeeds for binaries listed in Bins.
func (f *Fake) LookPath(file string) (string, error) {
	if f.Bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("executable file not found in $PATH: " + file)
}

// Run records c and delegates to Handler.
func (f *Fake) Run(ctx context.Context, c proc.Cmd) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.Handler != nil {
		return f.Handler(c)
	}
	return nil
}

// Calls returns the recorded commands in order.
func (f *Fake) Calls() []proc.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]proc.Cmd, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the recorded commands rendered with Cmd.String.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}
