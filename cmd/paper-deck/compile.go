// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-deck/internal/deck"
)

var compileCmd = &cobra.Command{
	Use:   "compile <deck.md>",
	Short: "Compile a Marp Markdown deck to PDF",
	Long: `Compile runs the Marp CLI (or npx @marp-team/marp-cli when marp is not
installed) to render the deck to PDF. Local files are allowed so the deck
can embed converted figures. With --check the deck is checked for missing
images first and not compiled if any are missing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pdfPath, _ := cmd.Flags().GetString("output")
		if pdfPath == "" {
			pdfPath = deck.PDFPath(args[0])
		}
		return compileDeck(cmd.Context(), args[0], pdfPath, cfg.Deck.Check, os.Stdout)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <deck.md>",
	Short: "Check a Marp deck for missing images and front matter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := deck.Check(args[0])
		if err != nil {
			return err
		}
		report.Print(os.Stdout)
		if !report.OK() {
			return fmt.Errorf("%d missing image(s)", len(report.Missing))
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().String("output", "", "PDF path (default: deck path with .pdf extension)")
	compileCmd.Flags().Bool("check", false, "check the deck for missing images before compiling")

	rootCmd.AddCommand(compileCmd, checkCmd)
}

// compileDeck optionally checks mdPath and then compiles it to pdfPath.
func compileDeck(ctx context.Context, mdPath, pdfPath string, check bool, w io.Writer) error {
	if _, err := os.Stat(mdPath); err != nil {
		return fmt.Errorf("deck %s: %w", mdPath, err)
	}

	if check {
		report, err := deck.Check(mdPath)
		if err != nil {
			return err
		}
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warn)
		}
		if !report.OK() {
			report.Print(w)
			return fmt.Errorf("%s references %d missing image(s)", mdPath, len(report.Missing))
		}
	}

	return deck.NewCompiler(runner, w).Compile(ctx, mdPath, pdfPath)
}
