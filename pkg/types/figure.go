// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the paper-deck
// packages and CLI.
package types

import "time"

// ConversionStatus indicates the outcome of rasterizing one figure.
type ConversionStatus string

const (
	ConversionDone     ConversionStatus = "converted"
	ConversionUpToDate ConversionStatus = "up-to-date"
	ConversionMissing  ConversionStatus = "missing"
	ConversionFailed   ConversionStatus = "failed"
)

// Figure describes a vector figure found in a paper repository and,
// once converted, the raster image produced from it.
type Figure struct {
	// Name is the PDF file name inside the graphics directory (e.g. "arch.pdf").
	Name string `json:"name" yaml:"name"`

	// SourcePath is the full path to the PDF figure.
	SourcePath string `json:"source" yaml:"source"`

	// SourceSHA256 is the hex digest of the PDF contents at conversion time.
	SourceSHA256 string `json:"source_sha256,omitempty" yaml:"source_sha256,omitempty"`

	// PNGName is the raster file name (e.g. "arch.png").
	PNGName string `json:"png" yaml:"png"`

	// PNGPath is the full path to the raster file.
	PNGPath string `json:"png_path,omitempty" yaml:"png_path,omitempty"`

	// Width and Height are the pixel dimensions of the PNG.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// Backend names the rasterizer that produced the PNG.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Render identifies the backend and render options used (scale, max
	// width). A PNG made with different options is stale.
	Render string `json:"render,omitempty" yaml:"render,omitempty"`

	// ConvertedAt is when the PNG was written.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}
