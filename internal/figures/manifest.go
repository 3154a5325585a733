// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package figures

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-deck/pkg/types"
)

// ManifestFile is written next to the converted PNGs.
const ManifestFile = "figures.yaml"

// Manifest lists the converted figures of a deck so that slide authors can
// reference them by PNG name and size.
type Manifest struct {
	GeneratedAt time.Time      `yaml:"generated_at"`
	GraphicsDir string         `yaml:"graphics_dir"`
	Figures     []types.Figure `yaml:"figures"`
}

// ReadManifest loads outDir/figures.yaml. A missing file yields an empty
// manifest.
func ReadManifest(outDir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(outDir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}
	return m, nil
}

// UpdateManifest merges figs into outDir/figures.yaml, replacing entries
// with the same name and keeping the rest. Entries are sorted by name.
func UpdateManifest(outDir, graphicsDir string, figs []types.Figure) error {
	m, err := ReadManifest(outDir)
	if err != nil {
		return err
	}

	byName := make(map[string]types.Figure, len(m.Figures)+len(figs))
	for _, f := range m.Figures {
		byName[f.Name] = f
	}
	for _, f := range figs {
		f.PNGPath = ""
		byName[f.Name] = f
	}

	m.Figures = m.Figures[:0]
	for _, f := range byName {
		m.Figures = append(m.Figures, f)
	}
	sort.Slice(m.Figures, func(i, j int) bool { return m.Figures[i].Name < m.Figures[j].Name })
	m.GeneratedAt = time.Now().UTC()
	m.GraphicsDir = graphicsDir

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
