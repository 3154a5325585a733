// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster renders the first page of a PDF figure to a PNG image.
// Rendering is delegated to an external tool (poppler's pdftoppm, MuPDF's
// mutool, or either inside a container); this package picks the tool,
// stages output in a temporary file, and post-processes the PNG.
package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/image/draw"

	"github.com/pdiddy/paper-deck/pkg/types"
)

// baseDPI is the PDF user-space resolution; scale 1 renders at 72 DPI.
const baseDPI = 72.0

// Rasterizer renders page 1 of a PDF to a PNG file.
type Rasterizer interface {
	// Name identifies the backend (e.g. "pdftoppm").
	Name() string

	// Rasterize writes page 1 of pdfPath to pngPath at scale times 72 DPI.
	Rasterize(ctx context.Context, pdfPath, pngPath string, scale float64) error
}

// Options controls Render.
type Options struct {
	// Scale is the zoom factor relative to 72 DPI; zero means types.DefaultScale.
	Scale float64
	// MaxWidth caps the output width in pixels; zero disables downscaling.
	MaxWidth int
}

// Key identifies the output Render produces with these options on the
// named backend.
func (o Options) Key(backend string) string {
	scale := o.Scale
	if scale <= 0 {
		scale = types.DefaultScale
	}
	return fmt.Sprintf("%s dpi=%s max_width=%d", backend, dpi(scale), max(o.MaxWidth, 0))
}

// Image describes a rendered PNG.
type Image struct {
	Width  int
	Height int
}

// Render rasterizes pdfPath with r and atomically places the result at
// pngPath. The output is decoded to verify it is a PNG and, when
// opts.MaxWidth is set, downscaled preserving aspect ratio.
func Render(ctx context.Context, r Rasterizer, pdfPath, pngPath string, opts Options) (Image, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = types.DefaultScale
	}

	dir, base := filepath.Split(pngPath)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, "."+base+".partial.png")
	defer os.Remove(tmp)

	if err := r.Rasterize(ctx, pdfPath, tmp, scale); err != nil {
		return Image{}, err
	}

	img, err := decodePNG(tmp)
	if err != nil {
		return Image{}, fmt.Errorf("%s produced an unreadable image: %w", r.Name(), err)
	}

	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = downscale(img, opts.MaxWidth)
		if err := encodePNG(tmp, img); err != nil {
			return Image{}, err
		}
	}

	if err := os.Rename(tmp, pngPath); err != nil {
		return Image{}, fmt.Errorf("placing %s: %w", pngPath, err)
	}

	b := img.Bounds()
	return Image{Width: b.Dx(), Height: b.Dy()}, nil
}

// Inspect decodes the PNG at path and reports its dimensions.
func Inspect(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, err
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return Image{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return Image{Width: cfg.Width, Height: cfg.Height}, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// downscale resizes src to width w with Catmull-Rom resampling.
func downscale(src image.Image, w int) image.Image {
	sb := src.Bounds()
	h := sb.Dy() * w / sb.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}

func dpi(scale float64) string {
	return strconv.FormatFloat(baseDPI*scale, 'f', -1, 64)
}
