// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package figures

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/paper-deck/internal/catalog"
	"github.com/pdiddy/paper-deck/internal/raster"
	"github.com/pdiddy/paper-deck/pkg/types"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	UpToDate  int
	Missing   int
	Failed    int

	// Figures lists the figures available as PNG after the run (converted
	// or already up to date), in request order.
	Figures []types.Figure
}

// Total returns the number of figures processed.
func (r BatchResult) Total() int {
	return r.Converted + r.UpToDate + r.Missing + r.Failed
}

// HasFailures reports whether any figure failed to rasterize.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// PNGNames returns the raster file names of the available figures.
func (r BatchResult) PNGNames() []string {
	out := make([]string, len(r.Figures))
	for i, f := range r.Figures {
		out[i] = f.PNGName
	}
	return out
}

// Converter rasterizes figures from a graphics directory into an output
// directory.
type Converter struct {
	rasterizer raster.Rasterizer
	catalog    *catalog.Catalog
	opts       raster.Options
	force      bool
}

// NewConverter builds a Converter. cat may be nil, in which case every
// figure is rendered on every run.
func NewConverter(r raster.Rasterizer, cat *catalog.Catalog, cfg types.FigureConfig) *Converter {
	return &Converter{
		rasterizer: r,
		catalog:    cat,
		opts:       raster.Options{Scale: cfg.Scale, MaxWidth: cfg.MaxWidth},
		force:      cfg.Force,
	}
}

// Convert renders the named figures from graphicsDir into outDir. A nil
// names slice converts every figure List finds. Per-figure outcomes are
// reported on w; only setup failures (creating outDir, writing the
// manifest) are returned as errors.
func (c *Converter) Convert(ctx context.Context, graphicsDir, outDir string, names []string, w io.Writer) (BatchResult, error) {
	var result BatchResult

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("creating %s: %w", outDir, err)
	}

	if names == nil {
		names = List(graphicsDir)
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "Warning: No PDF figures found to convert")
		return result, nil
	}

	fmt.Fprintf(w, "Converting %d figures...\n", len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fig, status := c.ConvertFigure(ctx, graphicsDir, outDir, name, w)
		switch status {
		case types.ConversionDone:
			result.Converted++
			result.Figures = append(result.Figures, fig)
		case types.ConversionUpToDate:
			result.UpToDate++
			result.Figures = append(result.Figures, fig)
		case types.ConversionMissing:
			result.Missing++
		case types.ConversionFailed:
			result.Failed++
		}
	}

	if len(result.Figures) > 0 {
		if err := UpdateManifest(outDir, graphicsDir, result.Figures); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ConvertFigure renders a single figure and returns it with its status.
func (c *Converter) ConvertFigure(ctx context.Context, graphicsDir, outDir, name string, w io.Writer) (types.Figure, types.ConversionStatus) {
	name = normalize(name)
	src := filepath.Join(graphicsDir, name)
	fig := types.Figure{
		Name:       name,
		SourcePath: src,
		PNGName:    PNGName(name),
		PNGPath:    filepath.Join(outDir, PNGName(name)),
		Backend:    c.rasterizer.Name(),
		Render:     c.opts.Key(c.rasterizer.Name()),
	}

	if info, err := os.Stat(src); err != nil || info.IsDir() {
		fmt.Fprintf(w, "  ✗ %s not found\n", name)
		return fig, types.ConversionMissing
	}

	sha, err := catalog.Digest(src)
	if err != nil {
		fmt.Fprintf(w, "  ✗ Error converting %s: %v\n", name, err)
		return fig, types.ConversionFailed
	}
	fig.SourceSHA256 = sha

	if c.catalog != nil && !c.force && c.catalog.Fresh(ctx, fig) {
		if prev, err := c.catalog.Lookup(ctx, name); err == nil {
			fig = prev
			fig.PNGName = PNGName(name)
		}
		if img, err := raster.Inspect(fig.PNGPath); err == nil {
			fig.Width, fig.Height = img.Width, img.Height
		}
		fmt.Fprintf(w, "  = %s (up to date)\n", name)
		return fig, types.ConversionUpToDate
	}

	if err := os.MkdirAll(filepath.Dir(fig.PNGPath), 0o755); err != nil {
		fmt.Fprintf(w, "  ✗ Error converting %s: %v\n", name, err)
		return fig, types.ConversionFailed
	}

	img, err := raster.Render(ctx, c.rasterizer, src, fig.PNGPath, c.opts)
	if err != nil {
		fmt.Fprintf(w, "  ✗ Error converting %s: %v\n", name, err)
		return fig, types.ConversionFailed
	}
	fig.Width = img.Width
	fig.Height = img.Height
	fig.ConvertedAt = time.Now().UTC()

	if c.catalog != nil {
		if err := c.catalog.Record(ctx, fig); err != nil {
			fmt.Fprintf(w, "  warning: %v\n", err)
		}
	}

	fmt.Fprintf(w, "  ✓ %s -> %s\n", name, fig.PNGName)
	return fig, types.ConversionDone
}
