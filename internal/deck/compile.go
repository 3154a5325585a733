// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck compiles Marp Markdown slide decks to PDF and checks them
// for broken image references beforehand.
package deck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-deck/internal/proc"
)

// marpPackage is the npm package run through npx when marp is not installed.
const marpPackage = "@marp-team/marp-cli"

// PDFPath returns the PDF path for a deck: the .md extension replaced by
// .pdf, or .pdf appended when there is no .md extension.
func PDFPath(mdPath string) string {
	return strings.TrimSuffix(mdPath, ".md") + ".pdf"
}

// Compiler runs the Marp CLI.
type Compiler struct {
	runner proc.Runner
	w      io.Writer
}

// NewCompiler returns a Compiler reporting to w. A nil runner uses the
// real binaries.
func NewCompiler(runner proc.Runner, w io.Writer) *Compiler {
	if runner == nil {
		runner = proc.Default
	}
	return &Compiler{runner: runner, w: w}
}

// command resolves the marp invocation: the marp binary if installed,
// otherwise the npm package through npx.
func (c *Compiler) command() (string, []string, error) {
	if _, err := c.runner.LookPath("marp"); err == nil {
		return "marp", nil, nil
	}
	if _, err := c.runner.LookPath("npx"); err == nil {
		return "npx", []string{"--yes", marpPackage}, nil
	}
	return "", nil, errors.New("marp not found: install it with `npm install -g " + marpPackage + "`")
}

// Compile renders mdPath to pdfPath. Local files are allowed so that
// decks can embed the converted figures.
func (c *Compiler) Compile(ctx context.Context, mdPath, pdfPath string) error {
	fmt.Fprintln(c.w, "Compiling presentation to PDF...")

	name, args, err := c.command()
	if err != nil {
		fmt.Fprintf(c.w, "Error compiling PDF: %v\n", err)
		return err
	}
	args = append(args, mdPath, "--pdf", "--output", pdfPath, "--allow-local-files")

	var stdout, stderr bytes.Buffer
	err = c.runner.Run(ctx, proc.Cmd{Name: name, Args: args, Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		fmt.Fprintf(c.w, "Error compiling PDF: %s\n", failureText(err, stderr.String()))
		return fmt.Errorf("compiling %s: %w", mdPath, err)
	}

	fmt.Fprintf(c.w, "Generated PDF: %s\n", pdfPath)
	return nil
}

func failureText(err error, stderr string) string {
	if s := strings.TrimSpace(stderr); s != "" {
		return s
	}
	var exitErr *proc.ExitError
	if errors.As(err, &exitErr) && strings.TrimSpace(exitErr.Stderr) != "" {
		return strings.TrimSpace(exitErr.Stderr)
	}
	return err.Error()
}
