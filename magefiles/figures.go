//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Figures lists the figures of the repository named by REPO_DIR (default
// the current directory) using a freshly built binary.
func Figures() error {
	mg.Deps(Build)

	repoDir := os.Getenv("REPO_DIR")
	if repoDir == "" {
		repoDir = "."
	}
	if err := sh.RunV(filepath.Join(binDir, binName), "figures", "list", "--repo-dir", repoDir); err != nil {
		return fmt.Errorf("listing figures: %w", err)
	}
	return nil
}
