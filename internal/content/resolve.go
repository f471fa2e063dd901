// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package content resolves descriptor content patterns against a project
// tree. It only lists paths; file bodies are never opened.
package content

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/ManuGH/twconfig/internal/config"
	xglog "github.com/ManuGH/twconfig/internal/log"
	"github.com/ManuGH/twconfig/internal/metrics"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// Match is the outcome of one content pattern.
type Match struct {
	Pattern string
	Exclude bool
	// Files are slash-separated and relative to the resolution root. For
	// an exclusion they are the included files it removed.
	Files []string
}

// Result is the outcome of resolving every content pattern of a descriptor.
type Result struct {
	Root      string
	Patterns  []Match
	Files     []string
	Unmatched []string
}

// BaseDir returns the directory patterns of d are resolved against: the
// descriptor's own directory when it asked for relative content, root
// otherwise.
func BaseDir(root string, d config.Descriptor) string {
	if d.ContentRelative && d.Source.Path != "" {
		return filepath.Dir(d.Source.Path)
	}
	return root
}

// Resolve expands the content patterns of d below root. Include patterns
// are globbed concurrently; exclusions then remove files from every
// include. An include left with no files is reported in Unmatched.
func Resolve(ctx context.Context, root string, d config.Descriptor) (Result, error) {
	logger := xglog.WithContext(ctx, xglog.WithComponent("content"))
	base := BaseDir(root, d)
	res := Result{Root: base, Patterns: make([]Match, len(d.Content))}

	type exclusion struct {
		idx     int
		pattern string
	}
	var excludes []exclusion

	for i, raw := range d.Content {
		pattern, exclude := strings.CutPrefix(raw, "!")
		if filepath.IsAbs(pattern) {
			return Result{}, fmt.Errorf("content pattern %q: absolute paths are not allowed", raw)
		}
		if !doublestar.ValidatePattern(trimDot(pattern)) {
			return Result{}, fmt.Errorf("content pattern %q: %w", raw, doublestar.ErrBadPattern)
		}
		res.Patterns[i] = Match{Pattern: raw, Exclude: exclude}
		if exclude {
			excludes = append(excludes, exclusion{idx: i, pattern: trimDot(pattern)})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range res.Patterns {
		if res.Patterns[i].Exclude {
			continue
		}
		raw := res.Patterns[i].Pattern
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files, err := glob(base, raw)
			if err != nil {
				return fmt.Errorf("content pattern %q: %w", raw, err)
			}
			res.Patterns[i].Files = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	seen := make(map[string]struct{})
	for i := range res.Patterns {
		m := &res.Patterns[i]
		if m.Exclude {
			continue
		}
		kept := m.Files[:0]
		for _, f := range m.Files {
			removedBy := -1
			for _, ex := range excludes {
				if ok, _ := doublestar.Match(ex.pattern, f); ok {
					removedBy = ex.idx
					break
				}
			}
			if removedBy >= 0 {
				ex := &res.Patterns[removedBy]
				if !slices.Contains(ex.Files, f) {
					ex.Files = append(ex.Files, f)
				}
				continue
			}
			kept = append(kept, f)
			seen[f] = struct{}{}
		}
		m.Files = kept
		if len(kept) == 0 {
			res.Unmatched = append(res.Unmatched, m.Pattern)
		}
	}
	for _, ex := range excludes {
		slices.Sort(res.Patterns[ex.idx].Files)
	}

	res.Files = make([]string, 0, len(seen))
	for f := range seen {
		res.Files = append(res.Files, f)
	}
	slices.Sort(res.Files)

	metrics.ContentPatternsUnmatched.Set(float64(len(res.Unmatched)))
	for _, p := range res.Unmatched {
		logger.Warn().
			Str(xglog.FieldEvent, "content.pattern_unmatched").
			Str(xglog.FieldPattern, p).
			Msg("content pattern matches no files")
	}
	logger.Debug().
		Str(xglog.FieldEvent, "content.resolved").
		Str(xglog.FieldPath, base).
		Int("patterns", len(res.Patterns)).
		Int("files", len(res.Files)).
		Msg("content patterns resolved")
	return res, nil
}

// glob matches pattern below base. Leading "../" segments move the
// search root up; returned paths keep them so they stay relative to base.
func glob(base, pattern string) ([]string, error) {
	pattern = trimDot(pattern)
	prefix := ""
	for strings.HasPrefix(pattern, "../") {
		pattern = strings.TrimPrefix(pattern, "../")
		prefix += "../"
	}

	dir := filepath.Join(base, filepath.FromSlash(prefix))
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, path.Clean(prefix+m))
	}
	slices.Sort(files)
	return files, nil
}

func trimDot(p string) string {
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}
