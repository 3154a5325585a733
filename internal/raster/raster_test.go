// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-deck/internal/proc"
	"github.com/pdiddy/paper-deck/internal/proc/proctest"
	"github.com/pdiddy/paper-deck/pkg/types"
)

// pngBytes returns an encoded w×h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeRasterizer writes canned bytes to the output path.
type fakeRasterizer struct {
	data      []byte
	err       error
	gotScale  float64
	gotOutput string
}

func (f *fakeRasterizer) Name() string { return "fake" }

func (f *fakeRasterizer) Rasterize(ctx context.Context, pdfPath, pngPath string, scale float64) error {
	f.gotScale = scale
	f.gotOutput = pngPath
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(pngPath, f.data, 0o644)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "arch.png")
	r := &fakeRasterizer{data: pngBytes(t, 300, 120)}

	img, err := Render(context.Background(), r, "arch.pdf", out, Options{})
	require.NoError(t, err)

	assert.Equal(t, Image{Width: 300, Height: 120}, img)
	assert.Equal(t, types.DefaultScale, r.gotScale)
	assert.NotEqual(t, out, r.gotOutput, "backend should write to a staging file")
	assert.FileExists(t, out)
	assert.NoFileExists(t, r.gotOutput)
}

func TestRenderDownscale(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "wide.png")
	r := &fakeRasterizer{data: pngBytes(t, 2000, 500)}

	img, err := Render(context.Background(), r, "wide.pdf", out, Options{Scale: 2, MaxWidth: 800})
	require.NoError(t, err)
	assert.Equal(t, Image{Width: 800, Height: 200}, img)
	assert.Equal(t, 2.0, r.gotScale)

	got, err := Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestRenderNarrowImageUntouched(t *testing.T) {
	out := filepath.Join(t.TempDir(), "small.png")
	data := pngBytes(t, 100, 50)
	r := &fakeRasterizer{data: data}

	_, err := Render(context.Background(), r, "small.pdf", out, Options{MaxWidth: 800})
	require.NoError(t, err)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestRenderErrors(t *testing.T) {
	t.Run("backend failure", func(t *testing.T) {
		dir := t.TempDir()
		r := &fakeRasterizer{err: errors.New("syntax error in PDF")}
		_, err := Render(context.Background(), r, "bad.pdf", filepath.Join(dir, "bad.png"), Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "syntax error")
		assertEmptyDir(t, dir)
	})

	t.Run("not a PNG", func(t *testing.T) {
		dir := t.TempDir()
		r := &fakeRasterizer{data: []byte("%PDF-1.5 not an image")}
		_, err := Render(context.Background(), r, "x.pdf", filepath.Join(dir, "x.png"), Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreadable image")
		assertEmptyDir(t, dir)
	})
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging files should be cleaned up")
}

func TestDPI(t *testing.T) {
	assert.Equal(t, "216", dpi(3))
	assert.Equal(t, "72", dpi(1))
	assert.Equal(t, "108", dpi(1.5))
}

func TestOptionsKey(t *testing.T) {
	assert.Equal(t, "pdftoppm dpi=216 max_width=0", Options{}.Key("pdftoppm"))
	assert.Equal(t, Options{}.Key("mutool"), Options{Scale: types.DefaultScale}.Key("mutool"))
	assert.NotEqual(t, Options{}.Key("mutool"), Options{}.Key("pdftoppm"))
	assert.Equal(t, "mutool dpi=144 max_width=800", Options{Scale: 2, MaxWidth: 800}.Key("mutool"))
}

func TestPdftoppmArgs(t *testing.T) {
	fake := &proctest.Fake{}
	p := &Pdftoppm{runner: fake}
	require.NoError(t, p.Rasterize(context.Background(), "/g/arch.pdf", "/o/.arch.png.partial.png", 3))

	require.Len(t, fake.Calls(), 1)
	assert.Equal(t,
		"pdftoppm -png -singlefile -f 1 -l 1 -r 216 /g/arch.pdf /o/.arch.png.partial",
		fake.Calls()[0].String())
}

func TestMutoolArgs(t *testing.T) {
	fake := &proctest.Fake{}
	m := &Mutool{runner: fake}
	require.NoError(t, m.Rasterize(context.Background(), "/g/arch.pdf", "/o/arch.png", 3))

	require.Len(t, fake.Calls(), 1)
	assert.Equal(t, "mutool draw -q -F png -o /o/arch.png -r 216 /g/arch.pdf 1", fake.Calls()[0].String())
}

func TestToolFailureWrapped(t *testing.T) {
	fake := &proctest.Fake{Handler: func(proc.Cmd) error {
		return &proc.ExitError{Cmd: "pdftoppm", Err: errors.New("exit status 1"), Stderr: "Syntax Error: Couldn't find trailer dictionary"}
	}}
	err := (&Pdftoppm{runner: fake}).Rasterize(context.Background(), "broken.pdf", "out.png", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
	assert.Contains(t, err.Error(), "trailer dictionary")
}

func TestContainerBackend(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "fig.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.5"), 0o644))
	want := pngBytes(t, 40, 30)

	fake := &proctest.Fake{
		Bins: map[string]bool{"docker": true},
		Handler: func(c proc.Cmd) error {
			if len(c.Args) > 0 && c.Args[0] == "run" {
				_, err := c.Stdout.Write(want)
				return err
			}
			return nil
		},
	}

	r, err := Detect(context.Background(), fake, types.RasterContainer)
	require.NoError(t, err)
	assert.Equal(t, "container:docker", r.Name())

	img, err := Render(context.Background(), r, pdf, filepath.Join(dir, "fig.png"), Options{})
	require.NoError(t, err)
	assert.Equal(t, Image{Width: 40, Height: 30}, img)

	lines := fake.Lines()
	assert.Contains(t, lines, "docker image inspect "+ContainerImage)
	assert.Contains(t, lines, "docker run --rm -i --network none "+ContainerImage+" -r 216")
}

func TestDetect(t *testing.T) {
	dockerReady := func(c proc.Cmd) error {
		if c.String() == "docker info" || strings.HasPrefix(c.String(), "docker image inspect") {
			return nil
		}
		return errors.New("unexpected " + c.String())
	}

	tests := []struct {
		name     string
		backend  types.RasterBackend
		bins     map[string]bool
		handler  func(proc.Cmd) error
		wantName string
		wantErr  string
	}{
		{name: "auto prefers pdftoppm", backend: types.RasterAuto, bins: map[string]bool{"pdftoppm": true, "mutool": true}, wantName: "pdftoppm"},
		{name: "auto falls back to mutool", backend: types.RasterAuto, bins: map[string]bool{"mutool": true}, wantName: "mutool"},
		{name: "empty means auto", backend: "", bins: map[string]bool{"pdftoppm": true}, wantName: "pdftoppm"},
		{name: "auto falls back to container", backend: types.RasterAuto, bins: map[string]bool{"docker": true}, handler: dockerReady, wantName: "container:docker"},
		{name: "auto finds nothing", backend: types.RasterAuto, wantErr: "no rasterizer found"},
		{name: "explicit mutool", backend: types.RasterMutool, bins: map[string]bool{"pdftoppm": true, "mutool": true}, wantName: "mutool"},
		{name: "explicit pdftoppm missing", backend: types.RasterPdftoppm, bins: map[string]bool{"mutool": true}, wantErr: "pdftoppm backend unavailable"},
		{name: "explicit mutool missing", backend: types.RasterMutool, wantErr: "mutool backend unavailable"},
		{name: "container image missing", backend: types.RasterContainer, bins: map[string]bool{"docker": true}, handler: func(c proc.Cmd) error {
			if c.String() == "docker info" {
				return nil
			}
			return errors.New("no such image")
		}, wantErr: "raster image not available"},
		{name: "unknown backend", backend: "inkscape", wantErr: "unknown raster backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &proctest.Fake{Bins: tt.bins, Handler: tt.handler}
			r, err := Detect(context.Background(), fake, tt.backend)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name())
		})
	}
}
