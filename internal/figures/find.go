// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package figures locates the vector figures of a paper repository and
// converts them to PNG for use in slides.
package figures

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// CandidateDirs are the directory names that conventionally hold paper
// figures, in priority order.
var CandidateDirs = []string{"graphics", "figures", "imgs", "images", "fig", "plots"}

// excluded are PDFs commonly found next to figures that are not figures.
var excluded = map[string]bool{
	"mouse.pdf":    true,
	"template.pdf": true,
	"draft.pdf":    true,
}

// FindGraphicsDir returns the figure directory of the repository at
// repoPath. Candidates directly under repoPath win in CandidateDirs order;
// otherwise the tree is searched top-down and the first directory with a
// candidate name is returned. The boolean is false when nothing matches.
func FindGraphicsDir(repoPath string, w io.Writer) (string, bool) {
	for _, name := range CandidateDirs {
		p := filepath.Join(repoPath, name)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			fmt.Fprintf(w, "Found graphics directory: %s\n", p)
			return p, true
		}
	}

	if p, ok := search(repoPath); ok {
		fmt.Fprintf(w, "Found graphics directory: %s\n", p)
		return p, true
	}
	return "", false
}

// search checks every subdirectory of dir before descending into any of
// them, so shallower matches win within a branch.
func search(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var subdirs []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ".git" {
			continue
		}
		if slices.Contains(CandidateDirs, e.Name()) {
			return filepath.Join(dir, e.Name()), true
		}
		subdirs = append(subdirs, e.Name())
	}

	for _, name := range subdirs {
		if p, ok := search(filepath.Join(dir, name)); ok {
			return p, true
		}
	}
	return "", false
}

// List returns the PDF figure names in dir, sorted, without the common
// non-figure PDFs. A missing or empty dir yields no figures.
func List(dir string) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".pdf") || excluded[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PNGName maps a figure name to its raster file name.
func PNGName(name string) string {
	return strings.TrimSuffix(name, ".pdf") + ".png"
}

// normalize accepts figure names given without the .pdf extension.
func normalize(name string) string {
	if filepath.Ext(name) == "" {
		return name + ".pdf"
	}
	return name
}
