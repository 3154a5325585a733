// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-deck/internal/catalog"
	"github.com/pdiddy/paper-deck/internal/figures"
	"github.com/pdiddy/paper-deck/internal/raster"
	"github.com/pdiddy/paper-deck/pkg/types"
)

var figuresCmd = &cobra.Command{
	Use:   "figures",
	Short: "List, convert, and inspect figures of a cloned repository",
	Long: `Figures works on a repository that is already checked out. Use subcommands
to list the PDF figures, convert them to PNG, or show what has been
converted so far.`,
}

// --- list subcommand ---

var figuresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List PDF figures in the repository's graphics directory",
	RunE:  runFiguresList,
}

func runFiguresList(cmd *cobra.Command, args []string) error {
	repoDir, _ := cmd.Flags().GetString("repo-dir")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	graphicsDir, found := figures.FindGraphicsDir(repoDir, os.Stderr)
	if !found {
		return errNoGraphics
	}
	names := figures.List(graphicsDir)

	if jsonOutput {
		type entry struct {
			Name string `json:"name"`
			Path string `json:"path"`
		}
		entries := make([]entry, len(names))
		for i, n := range names {
			entries[i] = entry{Name: n, Path: filepath.Join(graphicsDir, n)}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	printFigureList(os.Stdout, names)
	return nil
}

// --- convert subcommand ---

var figuresConvertCmd = &cobra.Command{
	Use:   "convert [figures...]",
	Short: "Convert PDF figures to PNG",
	Long: `Convert rasterizes page 1 of each named PDF figure (or every figure with
--all) into <output>/figures/. Figures whose source has not changed since
the last conversion are skipped unless --force is given. A figures.yaml
manifest with image sizes is written next to the PNGs.`,
	RunE: runFiguresConvert,
}

func runFiguresConvert(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	repoDir, _ := cmd.Flags().GetString("repo-dir")
	output, _ := cmd.Flags().GetString("output")
	all, _ := cmd.Flags().GetBool("all")

	if len(args) == 0 && !all {
		return fmt.Errorf("name one or more figures, or pass --all")
	}

	graphicsDir, found := figures.FindGraphicsDir(repoDir, os.Stderr)
	if !found {
		return errNoGraphics
	}

	var names []string
	if len(args) > 0 {
		names = args
	}
	fc, err := figureConfig()
	if err != nil {
		return err
	}
	figuresDir := filepath.Join(output, figuresSubdir)
	result, err := convertFigures(cmd.Context(), fc, graphicsDir, output, figuresDir, names, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\nConverted %d figures to %s/\n", len(result.Figures), figuresDir)
	if result.HasFailures() {
		return fmt.Errorf("%d figure(s) failed conversion", result.Failed)
	}
	return nil
}

// --- status subcommand ---

var figuresStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show figures recorded as converted in the output directory",
	RunE:  runFiguresStatus,
}

func runFiguresStatus(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cat, err := catalog.Open(output)
	if err != nil {
		return err
	}
	defer cat.Close()

	figs, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}
	return formatStatus(os.Stdout, figs, jsonOutput)
}

func formatStatus(w io.Writer, figs []types.Figure, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(figs)
	}

	if len(figs) == 0 {
		fmt.Fprintln(w, "No figures converted yet.")
		return nil
	}

	fmt.Fprintf(w, "%-30s  %-30s  %-11s  %-10s  %s\n", "Figure", "PNG", "Size", "Backend", "Converted")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, f := range figs {
		size := fmt.Sprintf("%dx%d", f.Width, f.Height)
		fmt.Fprintf(w, "%-30s  %-30s  %-11s  %-10s  %s\n",
			f.Name, f.PNGName, size, f.Backend, f.ConvertedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func init() {
	figuresCmd.PersistentFlags().String("output", "output", "output directory (PNGs go to <output>/figures)")

	figuresListCmd.Flags().String("repo-dir", ".", "path to the cloned paper repository")
	figuresListCmd.Flags().Bool("json", false, "output figures as JSON")

	figuresConvertCmd.Flags().String("repo-dir", ".", "path to the cloned paper repository")
	figuresConvertCmd.Flags().Bool("all", false, "convert every figure")
	addFigureFlags(figuresConvertCmd)

	figuresStatusCmd.Flags().Bool("json", false, "output as JSON")

	figuresCmd.AddCommand(figuresListCmd, figuresConvertCmd, figuresStatusCmd)
	rootCmd.AddCommand(figuresCmd)
}

// convertFigures picks a rasterizer, opens the catalog under outputDir,
// and converts names (all figures when nil) into figuresDir.
func convertFigures(ctx context.Context, cfg types.FigureConfig, graphicsDir, outputDir, figuresDir string, names []string, w io.Writer) (figures.BatchResult, error) {
	r, err := raster.Detect(ctx, runner, cfg.Backend)
	if err != nil {
		return figures.BatchResult{}, err
	}
	fmt.Fprintf(os.Stderr, "Using rasterizer: %s\n", r.Name())

	cat, err := catalog.Open(outputDir)
	if err != nil {
		return figures.BatchResult{}, err
	}
	defer cat.Close()

	return figures.NewConverter(r, cat, cfg).Convert(ctx, graphicsDir, figuresDir, names, w)
}
