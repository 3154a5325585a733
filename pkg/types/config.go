// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RepoConfig holds settings for cloning the paper repository.
type RepoConfig struct {
	// URL is the repository to clone.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// OutputDir is the directory the repository is cloned into.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Depth requests a shallow clone when greater than zero.
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty" mapstructure:"depth"`

	// Branch selects the branch to check out; empty means the remote default.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty" mapstructure:"branch"`

	// Token is an optional bearer token for private HTTPS remotes.
	Token string `json:"-" yaml:"-" mapstructure:"-"`
}

// RasterBackend identifies the tool used to rasterize PDF figures.
type RasterBackend string

const (
	RasterAuto      RasterBackend = "auto"
	RasterPdftoppm  RasterBackend = "pdftoppm"
	RasterMutool    RasterBackend = "mutool"
	RasterContainer RasterBackend = "container"
)

// DefaultScale renders figures at three times their natural size.
const DefaultScale = 3.0

// FigureConfig holds settings for figure conversion.
type FigureConfig struct {
	// Backend selects the rasterizer: auto, pdftoppm, mutool, or container.
	Backend RasterBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Scale is the zoom factor relative to 72 DPI (default 3).
	Scale float64 `json:"scale" yaml:"scale" mapstructure:"scale"`

	// MaxWidth downscales wider images to this many pixels; zero disables.
	MaxWidth int `json:"max_width,omitempty" yaml:"max_width,omitempty" mapstructure:"max_width"`

	// Force reconverts figures even when the catalog says they are current.
	Force bool `json:"force,omitempty" yaml:"force,omitempty" mapstructure:"force"`
}

// DeckConfig holds settings for compiling a Marp deck.
type DeckConfig struct {
	// Check validates image references before compiling.
	Check bool `json:"check" yaml:"check" mapstructure:"check"`
}

// Config groups all settings for a paper-deck run, as decoded from the
// config file, environment, and flags.
type Config struct {
	Repo    RepoConfig   `json:"repo" yaml:"repo" mapstructure:"repo"`
	Figures FigureConfig `json:"figures" yaml:"figures" mapstructure:"figures"`
	Deck    DeckConfig   `json:"deck" yaml:"deck" mapstructure:"deck"`
}
