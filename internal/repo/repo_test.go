// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-deck/internal/proc"
	"github.com/pdiddy/paper-deck/internal/proc/proctest"
	"github.com/pdiddy/paper-deck/pkg/types"
)

func TestName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/alice/attention-paper", "attention-paper"},
		{"https://github.com/alice/attention-paper/", "attention-paper"},
		{"https://github.com/alice/attention-paper.git", "attention-paper"},
		{"git@github.com:alice/attention-paper.git", "attention-paper"},
		{"git@host:paper", "paper"},
		{"/srv/git/paper", "paper"},
		{"paper", "paper"},
		{"https://github.com/", "github.com"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.url))
		})
	}
}

func TestCloneRunsGit(t *testing.T) {
	out := t.TempDir()
	fake := &proctest.Fake{}
	var log bytes.Buffer

	r, err := NewCloner(fake, &log).Clone(context.Background(), types.RepoConfig{
		URL:       "https://github.com/alice/paper.git",
		OutputDir: out,
	})
	require.NoError(t, err)

	assert.Equal(t, "paper", r.Name)
	assert.Equal(t, filepath.Join(out, "paper"), r.Path)
	assert.Contains(t, log.String(), "Cloning repository: https://github.com/alice/paper.git")

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "git clone -- https://github.com/alice/paper.git paper", calls[0].String())
	assert.Equal(t, out, calls[0].Dir)
	assert.Contains(t, calls[0].Env, "GIT_TERMINAL_PROMPT=0")
}

func TestCloneSkipsExisting(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(out, "paper"), 0o755))
	fake := &proctest.Fake{}
	var log bytes.Buffer

	_, err := NewCloner(fake, &log).Clone(context.Background(), types.RepoConfig{
		URL:       "https://github.com/alice/paper",
		OutputDir: out,
	})
	require.NoError(t, err)

	assert.Empty(t, fake.Calls(), "git must not run for an existing checkout")
	assert.Contains(t, log.String(), "Repository already exists: "+filepath.Join(out, "paper"))
}

func TestCloneCreatesOutputDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out")
	_, err := NewCloner(&proctest.Fake{}, &bytes.Buffer{}).Clone(context.Background(), types.RepoConfig{
		URL:       "https://example.org/paper",
		OutputDir: out,
	})
	require.NoError(t, err)
	assert.DirExists(t, out)
}

func TestCloneOptions(t *testing.T) {
	fake := &proctest.Fake{}
	_, err := NewCloner(fake, &bytes.Buffer{}).Clone(context.Background(), types.RepoConfig{
		URL:       "https://github.com/alice/private-paper",
		OutputDir: t.TempDir(),
		Depth:     1,
		Branch:    "camera-ready",
		Token:     "ghp_secret",
	})
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"clone", "--depth", "1", "--branch", "camera-ready",
		"--", "https://github.com/alice/private-paper", "private-paper",
	}, calls[0].Args)
	assert.Contains(t, calls[0].Env, "GIT_CONFIG_COUNT=1")
	assert.Contains(t, calls[0].Env, "GIT_CONFIG_KEY_0=http.https://github.com/.extraheader")
	assert.Contains(t, calls[0].Env, "GIT_CONFIG_VALUE_0=Authorization: Bearer ghp_secret")
}

func TestCloneTokenOnlyForGitHubHTTPS(t *testing.T) {
	tests := []string{
		"git@github.com:alice/paper.git",
		"https://gitlab.example.org/bob/paper.git",
		"https://github.com.evil.example/alice/paper",
		"http://github.com/alice/paper",
	}
	for _, u := range tests {
		t.Run(u, func(t *testing.T) {
			fake := &proctest.Fake{}
			_, err := NewCloner(fake, &bytes.Buffer{}).Clone(context.Background(), types.RepoConfig{
				URL:       u,
				OutputDir: t.TempDir(),
				Token:     "ghp_secret",
			})
			require.NoError(t, err)
			require.Len(t, fake.Calls(), 1)
			call := fake.Calls()[0]
			assert.NotContains(t, call.String(), "ghp_secret")
			for _, kv := range call.Env {
				assert.NotContains(t, kv, "ghp_secret")
			}
		})
	}
}

func TestCloneErrors(t *testing.T) {
	t.Run("empty URL", func(t *testing.T) {
		_, err := NewCloner(&proctest.Fake{}, &bytes.Buffer{}).Clone(context.Background(), types.RepoConfig{OutputDir: t.TempDir()})
		require.Error(t, err)
	})

	t.Run("URL without name", func(t *testing.T) {
		_, err := NewCloner(&proctest.Fake{}, &bytes.Buffer{}).Clone(context.Background(), types.RepoConfig{URL: "/", OutputDir: t.TempDir()})
		require.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("git failure", func(t *testing.T) {
		fake := &proctest.Fake{Handler: func(c proc.Cmd) error {
			return &proc.ExitError{Cmd: "git", Err: errors.New("exit status 128"), Stderr: "fatal: repository not found"}
		}}
		_, err := NewCloner(fake, &bytes.Buffer{}).Clone(context.Background(), types.RepoConfig{
			URL:       "https://github.com/alice/missing",
			OutputDir: t.TempDir(),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "repository not found")
		assert.Contains(t, err.Error(), "cloning https://github.com/alice/missing")
	})
}
