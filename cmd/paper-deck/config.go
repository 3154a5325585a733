// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-deck/internal/secrets"
	"github.com/pdiddy/paper-deck/pkg/types"
)

// Config keys. Each may come from a flag, the config file, or a
// PAPER_DECK_* environment variable (dots become underscores).
const (
	keyBackend  = "figures.backend"
	keyScale    = "figures.scale"
	keyMaxWidth = "figures.max_width"
	keyForce    = "figures.force"
	keyDepth    = "repo.depth"
	keyBranch   = "repo.branch"
	keyCheck    = "deck.check"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"backend":   keyBackend,
	"scale":     keyScale,
	"max-width": keyMaxWidth,
	"force":     keyForce,
	"depth":     keyDepth,
	"branch":    keyBranch,
	"check":     keyCheck,
}

func setConfigDefaults() {
	viper.SetDefault(keyBackend, string(types.RasterAuto))
	viper.SetDefault(keyScale, types.DefaultScale)
	viper.SetDefault(keyMaxWidth, 0)
	viper.SetDefault(keyForce, false)
	viper.SetDefault(keyDepth, 0)
	viper.SetDefault(keyBranch, "")
	viper.SetDefault(keyCheck, false)
}

// bindFlags binds the config flags cmd defines. Binding happens when the
// command runs because several commands share a key and viper keeps only
// the last binding.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func addFigureFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", string(types.RasterAuto), "rasterizer: auto, pdftoppm, mutool, or container")
	cmd.Flags().Float64("scale", types.DefaultScale, "render scale relative to 72 DPI")
	cmd.Flags().Int("max-width", 0, "downscale figures wider than this many pixels (0 disables)")
	cmd.Flags().Bool("force", false, "reconvert figures even if they are up to date")
}

// loadConfig decodes the merged flag, environment, and file settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.Figures.Backend == "" {
		cfg.Figures.Backend = types.RasterAuto
	}
	if cfg.Figures.Scale <= 0 {
		cfg.Figures.Scale = types.DefaultScale
	}
	return cfg, nil
}

func figureConfig() (types.FigureConfig, error) {
	cfg, err := loadConfig()
	return cfg.Figures, err
}

func repoConfig(url, outputDir string) (types.RepoConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return types.RepoConfig{}, err
	}
	rc := cfg.Repo
	rc.URL = url
	rc.OutputDir = outputDir
	rc.Token = loadedSecrets.Get(secrets.GitHubToken)
	return rc, nil
}
