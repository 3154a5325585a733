// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-deck/internal/container"
	"github.com/pdiddy/paper-deck/internal/proc"
	"github.com/pdiddy/paper-deck/pkg/types"
)

// Detect returns the rasterizer for backend. RasterAuto (or "") tries
// pdftoppm, then mutool, then a container runtime holding ContainerImage.
func Detect(ctx context.Context, runner proc.Runner, backend types.RasterBackend) (Rasterizer, error) {
	if runner == nil {
		runner = proc.Default
	}

	switch backend {
	case types.RasterPdftoppm:
		if _, err := runner.LookPath("pdftoppm"); err != nil {
			return nil, fmt.Errorf("pdftoppm backend unavailable: %w", err)
		}
		return &Pdftoppm{runner: runner}, nil

	case types.RasterMutool:
		if _, err := runner.LookPath("mutool"); err != nil {
			return nil, fmt.Errorf("mutool backend unavailable: %w", err)
		}
		return &Mutool{runner: runner}, nil

	case types.RasterContainer:
		rt, err := container.DetectRuntime(ctx, runner)
		if err != nil {
			return nil, err
		}
		return NewContainer(ctx, rt)

	case types.RasterAuto, "":
		if _, err := runner.LookPath("pdftoppm"); err == nil {
			return &Pdftoppm{runner: runner}, nil
		}
		if _, err := runner.LookPath("mutool"); err == nil {
			return &Mutool{runner: runner}, nil
		}
		rt, err := container.DetectRuntime(ctx, runner)
		if err != nil {
			return nil, fmt.Errorf("no rasterizer found: install poppler (pdftoppm) or MuPDF (mutool), or provide %s: %w", ContainerImage, err)
		}
		return NewContainer(ctx, rt)

	default:
		return nil, fmt.Errorf("unknown raster backend %q (want auto, pdftoppm, mutool, or container)", backend)
	}
}
