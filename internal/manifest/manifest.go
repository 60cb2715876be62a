// Package manifest catalogs build artifacts by content hash.
package manifest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"mirror/internal/fsutil"
)

// Schema identifies the manifest format.
const Schema = "mirror.manifest.v1"

// DefaultPath is where the manifest is written when no output is given.
const DefaultPath = "reports/manifest.json"

// Entry describes one artifact file.
type Entry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest is the catalog written to disk.
type Manifest struct {
	Schema    string  `json:"schema"`
	Artifacts []Entry `json:"artifacts"`
}

// HashFile returns the hex sha256 of the file at path and its size.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Collect hashes every regular file below root. Entry paths are relative to
// base, slash-separated, and sorted. Files listed in skip (absolute or
// relative to the working directory) are left out. Hashing runs on up to
// GOMAXPROCS goroutines.
func Collect(ctx context.Context, root, base string, skip ...string) ([]Entry, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if abs, err := filepath.Abs(s); err == nil {
			skipped[abs] = true
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && skipped[abs] {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	entries := make([]Entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return fmt.Errorf("relative path for %s: %w", path, err)
			}
			sum, size, err := HashFile(path)
			if err != nil {
				return err
			}
			entries[i] = Entry{
				Name:   filepath.Base(path),
				Path:   filepath.ToSlash(rel),
				SHA256: sum,
				Size:   size,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Build catalogs every file under dir, with paths relative to dir.
func Build(ctx context.Context, dir string, skip ...string) (*Manifest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("artifacts dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("artifacts dir: %s is not a directory", dir)
	}
	entries, err := Collect(ctx, dir, dir, skip...)
	if err != nil {
		return nil, err
	}
	return &Manifest{Schema: Schema, Artifacts: entries}, nil
}

// Write stores m as indented JSON at path.
func Write(path string, m *Manifest) error {
	return fsutil.WriteJSON(path, m)
}
