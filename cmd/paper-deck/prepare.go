// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-deck/internal/deck"
	"github.com/pdiddy/paper-deck/internal/figures"
	"github.com/pdiddy/paper-deck/internal/repo"
	"github.com/pdiddy/paper-deck/pkg/types"
)

// figuresSubdir is where converted PNGs go inside the output directory.
const figuresSubdir = "figures"

// errNoGraphics is printed by cobra as "Error: No graphics directory found".
var errNoGraphics = errors.New("No graphics directory found")

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Clone a paper repository and prepare its figures",
	Long: `Prepare clones the paper repository into the output directory (an existing
checkout is reused), locates its figure directory, and then, depending on
flags, lists figures, converts them to PNG under <output>/figures/, or
compiles a finished Marp deck to PDF.

Without action flags it prints a setup summary.`,
	Example: `  paper-deck prepare --repo https://github.com/alice/paper --output talk --list-figures
  paper-deck prepare --repo https://github.com/alice/paper --output talk --convert-figures arch.pdf results.pdf
  paper-deck prepare --repo https://github.com/alice/paper --output talk --compile talk/slides.md`,
	Args: cobra.ArbitraryArgs,
	RunE: runPrepareCmd,
}

func init() {
	prepareCmd.Flags().String("repo", "", "repository URL")
	prepareCmd.Flags().String("output", "", "output directory")
	prepareCmd.Flags().Bool("list-figures", false, "list available figures and exit")
	prepareCmd.Flags().StringSlice("convert-figures", nil, "convert specific figures")
	prepareCmd.Flags().Bool("convert-all", false, "convert all figures")
	prepareCmd.Flags().String("compile", "", "compile a Marp markdown file to PDF")
	prepareCmd.Flags().Bool("check", false, "check the deck for missing images before compiling")
	prepareCmd.Flags().Int("depth", 0, "shallow clone depth (0 clones full history)")
	prepareCmd.Flags().String("branch", "", "branch to clone")
	addFigureFlags(prepareCmd)
	_ = prepareCmd.MarkFlagRequired("repo")
	_ = prepareCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(prepareCmd)
}

// prepareOptions captures one prepare invocation.
type prepareOptions struct {
	Repo           types.RepoConfig
	Figures        types.FigureConfig
	ListFigures    bool
	ConvertFigures []string
	ConvertAll     bool
	Compile        string
	Check          bool
}

func runPrepareCmd(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	url, _ := cmd.Flags().GetString("repo")
	output, _ := cmd.Flags().GetString("output")
	list, _ := cmd.Flags().GetBool("list-figures")
	names, _ := cmd.Flags().GetStringSlice("convert-figures")
	all, _ := cmd.Flags().GetBool("convert-all")
	compile, _ := cmd.Flags().GetString("compile")

	// --convert-figures a.pdf b.pdf: names after the first arrive as args.
	if len(args) > 0 {
		if len(names) == 0 {
			return fmt.Errorf("unexpected arguments %v (figure names follow --convert-figures)", args)
		}
		names = append(names, args...)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rc, err := repoConfig(url, output)
	if err != nil {
		return err
	}

	opts := prepareOptions{
		Repo:           rc,
		Figures:        cfg.Figures,
		ListFigures:    list,
		ConvertFigures: names,
		ConvertAll:     all,
		Compile:        compile,
		Check:          cfg.Deck.Check,
	}
	return runPrepare(cmd.Context(), opts, os.Stdout)
}

// runPrepare clones, locates figures, and performs the requested action.
func runPrepare(ctx context.Context, opts prepareOptions, w io.Writer) error {
	output := opts.Repo.OutputDir
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	r, err := repo.NewCloner(runner, w).Clone(ctx, opts.Repo)
	if err != nil {
		return err
	}

	graphicsDir, found := figures.FindGraphicsDir(r.Path, w)

	if opts.ListFigures {
		if !found {
			fmt.Fprintln(w, "No graphics directory found")
			return nil
		}
		printFigureList(w, figures.List(graphicsDir))
		return nil
	}

	var convertErr error
	if opts.ConvertAll || len(opts.ConvertFigures) > 0 {
		if !found {
			return errNoGraphics
		}
		figuresDir := filepath.Join(output, figuresSubdir)
		var names []string
		if len(opts.ConvertFigures) > 0 {
			names = opts.ConvertFigures
		}
		result, err := convertFigures(ctx, opts.Figures, graphicsDir, output, figuresDir, names, w)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nConverted %d figures to %s/\n", len(result.Figures), figuresDir)
		if result.HasFailures() {
			convertErr = fmt.Errorf("%d figure(s) failed conversion", result.Failed)
		}
	}

	if opts.Compile != "" {
		if err := compileDeck(ctx, opts.Compile, deck.PDFPath(opts.Compile), opts.Check, w); err != nil {
			return err
		}
		return convertErr
	}

	fmt.Fprintln(w, "\n=== Repository Setup Complete ===")
	fmt.Fprintf(w, "Repository: %s\n", r.Path)
	if found {
		fmt.Fprintf(w, "Graphics: %s\n", graphicsDir)
	} else {
		fmt.Fprintln(w, "Graphics: Not found")
	}
	fmt.Fprintln(w, "\nNext: analyze the paper and write the presentation content")
	return convertErr
}

func printFigureList(w io.Writer, names []string) {
	fmt.Fprintf(w, "\nAvailable figures (%d):\n", len(names))
	for _, n := range names {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}
