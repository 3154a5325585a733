// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog records converted figures in a SQLite database so that
// repeated conversions skip figures whose source PDF has not changed.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-deck/pkg/types"
)

const (
	// StateDir is the subdirectory of the output directory holding the catalog.
	StateDir = ".paper-deck"
	dbFile   = "catalog.db"
)

// ErrNotFound is returned by Lookup for figures that were never recorded.
var ErrNotFound = errors.New("figure not in catalog")

// Catalog is a handle on the conversion database.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates outputDir/.paper-deck/catalog.db.
func Open(outputDir string) (*Catalog, error) {
	dir := filepath.Join(outputDir, StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS figures (
		name TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		source_sha256 TEXT NOT NULL,
		png_path TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		backend TEXT,
		converted_at TEXT NOT NULL,
		render TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return err
	}

	// Catalogs written before render options were tracked lack the column.
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('figures') WHERE name = 'render'`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		_, err = c.db.Exec(`ALTER TABLE figures ADD COLUMN render TEXT NOT NULL DEFAULT ''`)
	}
	return err
}

// Record inserts or replaces the entry for f.Name.
func (c *Catalog) Record(ctx context.Context, f types.Figure) error {
	at := f.ConvertedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO figures (name, source_path, source_sha256, png_path, width, height, backend, converted_at, render)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			source_path = excluded.source_path,
			source_sha256 = excluded.source_sha256,
			png_path = excluded.png_path,
			width = excluded.width,
			height = excluded.height,
			backend = excluded.backend,
			converted_at = excluded.converted_at,
			render = excluded.render`,
		f.Name, f.SourcePath, f.SourceSHA256, f.PNGPath, f.Width, f.Height, f.Backend,
		at.UTC().Format(time.RFC3339Nano), f.Render,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", f.Name, err)
	}
	return nil
}

// Lookup returns the entry for name, or ErrNotFound.
func (c *Catalog) Lookup(ctx context.Context, name string) (types.Figure, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT name, source_path, source_sha256, png_path, width, height, backend, converted_at, render
		 FROM figures WHERE name = ?`, name)
	f, err := scanFigure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Figure{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return types.Figure{}, fmt.Errorf("looking up %s: %w", name, err)
	}
	return f, nil
}

// List returns every recorded figure ordered by name.
func (c *Catalog) List(ctx context.Context) ([]types.Figure, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, source_path, source_sha256, png_path, width, height, backend, converted_at, render
		 FROM figures ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()

	var out []types.Figure
	for rows.Next() {
		f, err := scanFigure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Fresh reports whether want.Name was recorded with the same source digest,
// output path, and render options as want, and the PNG still exists.
func (c *Catalog) Fresh(ctx context.Context, want types.Figure) bool {
	f, err := c.Lookup(ctx, want.Name)
	if err != nil {
		return false
	}
	if f.SourceSHA256 != want.SourceSHA256 || f.PNGPath != want.PNGPath || f.Render != want.Render {
		return false
	}
	_, err = os.Stat(want.PNGPath)
	return err == nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFigure(s scanner) (types.Figure, error) {
	var (
		f       types.Figure
		backend sql.NullString
		w, h    sql.NullInt64
		at      string
	)
	if err := s.Scan(&f.Name, &f.SourcePath, &f.SourceSHA256, &f.PNGPath, &w, &h, &backend, &at, &f.Render); err != nil {
		return types.Figure{}, err
	}
	f.Width = int(w.Int64)
	f.Height = int(h.Int64)
	f.Backend = backend.String
	f.PNGName = filepath.Base(f.PNGPath)
	if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
		f.ConvertedAt = t
	}
	return f, nil
}

// Digest returns the hex SHA-256 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
