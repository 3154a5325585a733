// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/paper-deck/internal/container"
	"github.com/pdiddy/paper-deck/internal/proc"
)

// Pdftoppm renders with poppler's pdftoppm.
type Pdftoppm struct {
	runner proc.Runner
}

func (p *Pdftoppm) Name() string { return "pdftoppm" }

func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath, pngPath string, scale float64) error {
	// pdftoppm appends ".png" to the output root itself.
	root := strings.TrimSuffix(pngPath, ".png")
	c := proc.Cmd{
		Name:   "pdftoppm",
		Args:   []string{"-png", "-singlefile", "-f", "1", "-l", "1", "-r", dpi(scale), pdfPath, root},
		Stdout: io.Discard,
	}
	if err := p.runner.Run(ctx, c); err != nil {
		return fmt.Errorf("rendering %s: %w", pdfPath, err)
	}
	return nil
}

// Mutool renders with MuPDF's mutool.
type Mutool struct {
	runner proc.Runner
}

func (m *Mutool) Name() string { return "mutool" }

func (m *Mutool) Rasterize(ctx context.Context, pdfPath, pngPath string, scale float64) error {
	c := proc.Cmd{
		Name:   "mutool",
		Args:   []string{"draw", "-q", "-F", "png", "-o", pngPath, "-r", dpi(scale), pdfPath, "1"},
		Stdout: io.Discard,
	}
	if err := m.runner.Run(ctx, c); err != nil {
		return fmt.Errorf("rendering %s: %w", pdfPath, err)
	}
	return nil
}

// ContainerImage is the filter image used by the container backend. Its
// entrypoint reads a PDF on stdin and writes a PNG of page 1 to stdout,
// accepting "-r DPI".
const ContainerImage = "paper-deck-raster:latest"

// Container renders by piping the PDF through ContainerImage.
type Container struct {
	runtime container.Runtime
}

// NewContainer verifies the raster image exists in rt.
func NewContainer(ctx context.Context, rt container.Runtime) (*Container, error) {
	if err := rt.ImageExists(ctx, ContainerImage); err != nil {
		return nil, fmt.Errorf("raster image not available in %s: %w", rt.Name(), err)
	}
	return &Container{runtime: rt}, nil
}

func (c *Container) Name() string { return "container:" + c.runtime.Name() }

func (c *Container) Rasterize(ctx context.Context, pdfPath, pngPath string, scale float64) error {
	in, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer in.Close()

	out, err := os.Create(pngPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", pngPath, err)
	}
	if err := c.runtime.Run(ctx, ContainerImage, in, out, "-r", dpi(scale)); err != nil {
		out.Close()
		return fmt.Errorf("rendering %s: %w", pdfPath, err)
	}
	return out.Close()
}
