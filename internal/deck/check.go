// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.yaml.in/yaml/v3"
)

// FrontMatter holds the Marp global directives read from the deck header.
type FrontMatter struct {
	Marp     bool   `yaml:"marp"`
	Theme    string `yaml:"theme"`
	Paginate bool   `yaml:"paginate"`
	Size     string `yaml:"size"`
	Title    string `yaml:"title"`
}

// Report is the result of checking a deck.
type Report struct {
	Path        string
	FrontMatter FrontMatter
	Slides      int
	Images      []string
	Missing     []string
	Warnings    []string
}

// OK reports whether every local image reference resolves.
func (r Report) OK() bool {
	return len(r.Missing) == 0
}

// Print writes a human-readable summary of r to w.
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Deck: %s\n", r.Path)
	fmt.Fprintf(w, "Slides: %d\n", r.Slides)
	fmt.Fprintf(w, "Images: %d referenced, %d missing\n", len(r.Images), len(r.Missing))
	for _, m := range r.Missing {
		fmt.Fprintf(w, "  ✗ %s\n", m)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

// Check reads the deck at mdPath and verifies that local images it
// references exist relative to the deck's directory.
func Check(mdPath string) (Report, error) {
	src, err := os.ReadFile(mdPath)
	if err != nil {
		return Report{}, fmt.Errorf("reading deck: %w", err)
	}

	r := Report{Path: mdPath}

	header, body := splitFrontMatter(src)
	if header == nil {
		r.Warnings = append(r.Warnings, "no front matter: add `marp: true` so Marp renders slides")
	} else {
		if err := yaml.Unmarshal(header, &r.FrontMatter); err != nil {
			return r, fmt.Errorf("parsing front matter of %s: %w", mdPath, err)
		}
		if !r.FrontMatter.Marp {
			r.Warnings = append(r.Warnings, "front matter does not set `marp: true`")
		}
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(body))
	breaks := 0
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.ThematicBreak:
			if node.Parent() == doc {
				breaks++
			}
		case *ast.Image:
			r.Images = append(r.Images, string(node.Destination))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return r, fmt.Errorf("walking %s: %w", mdPath, err)
	}

	if len(bytes.TrimSpace(body)) > 0 {
		r.Slides = breaks + 1
	}

	base := filepath.Dir(mdPath)
	for _, dest := range r.Images {
		p, local := localPath(base, dest)
		if !local {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			r.Missing = append(r.Missing, dest)
		}
	}
	return r, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// Markdown body. header is nil when the deck has no front matter.
func splitFrontMatter(src []byte) (header, body []byte) {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	normalized := bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, normalized
	}
	rest := normalized[len("---\n"):]
	if bytes.HasPrefix(rest, []byte("---\n")) {
		return []byte{}, rest[len("---\n"):]
	}
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("\n---")], nil
		}
		return nil, normalized
	}
	return rest[:end+1], rest[end+len("\n---\n"):]
}

// localPath resolves an image destination against the deck directory.
// Destinations with a URL scheme are not local.
func localPath(base, dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return filepath.Join(base, dest), true
	}
	if u.Scheme == "file" {
		return u.Path, true
	}
	if u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := u.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, filepath.FromSlash(p))
	}
	return p, true
}
