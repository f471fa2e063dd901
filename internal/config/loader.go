// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	xglog "github.com/ManuGH/twconfig/internal/log"
	"github.com/ManuGH/twconfig/internal/metrics"
	"github.com/ManuGH/twconfig/internal/validate"
)

// DefaultFileNames are probed, in order, when no descriptor path is given.
var DefaultFileNames = []string{
	"tailwind.config.js",
	"tailwind.config.cjs",
	"tailwind.config.mjs",
	"tailwind.config.yaml",
	"tailwind.config.yml",
	"tailwind.config.json",
}

// Loader reads a descriptor file.
type Loader struct {
	path string
	opts options

	mu       sync.Mutex
	warnings []validate.Warning
}

// NewLoader creates a new descriptor loader
func NewLoader(path string, opts ...Option) *Loader {
	return &Loader{
		path: path,
		opts: newOptions(opts),
	}
}

// Path returns the descriptor path.
func (l *Loader) Path() string {
	return l.path
}

// Warnings returns the lint findings of the last successful Load.
func (l *Loader) Warnings() []validate.Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.warnings)
}

func (l *Loader) setWarnings(w []validate.Warning) {
	l.mu.Lock()
	l.warnings = w
	l.mu.Unlock()
}

// Load reads, decodes and validates the descriptor.
// Pipeline: Read -> Decode (format by extension) -> Validate -> Lint.
// On error the zero Descriptor is returned.
func (l *Loader) Load(ctx context.Context) (Descriptor, error) {
	logger := xglog.WithContext(ctx, xglog.WithComponent("config"))
	l.setWarnings(nil)

	format, err := FormatFromPath(l.path)
	if err != nil {
		metrics.RecordLoad("", err)
		return Descriptor{}, err
	}

	d, err := l.load(ctx, format)
	metrics.RecordLoad(string(format), err)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "descriptor.load_failed").
			Str(xglog.FieldPath, l.path).
			Msg("failed to load descriptor")
		return Descriptor{}, err
	}

	warnings := Lint(d)
	l.setWarnings(warnings)
	for _, w := range warnings {
		metrics.RecordWarning(w.Rule)
		logger.Warn().
			Str(xglog.FieldEvent, "descriptor.warning").
			Str(xglog.FieldRule, w.Rule).
			Str("field", w.Field).
			Msg(w.Message)
	}

	logger.Debug().
		Str(xglog.FieldEvent, "descriptor.loaded").
		Str(xglog.FieldPath, l.path).
		Str(xglog.FieldFormat, string(format)).
		Int("content", len(d.Content)).
		Int("safelist", len(d.Safelist)).
		Int("plugins", len(d.Plugins)).
		Msg("descriptor loaded")
	return d, nil
}

func (l *Loader) load(ctx context.Context, format Format) (Descriptor, error) {
	// #nosec G304 -- descriptor paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(filepath.Clean(l.path))
	if err != nil {
		return Descriptor{}, fmt.Errorf("read descriptor: %w", err)
	}

	d, err := decode(ctx, data, format, l.opts)
	if err != nil {
		return Descriptor{}, fmt.Errorf("decode %s: %w", l.path, err)
	}
	if err := Validate(d); err != nil {
		return Descriptor{}, fmt.Errorf("validate %s: %w", l.path, err)
	}

	d.Source.Path = l.path
	return d, nil
}

// FindDefault returns the first DefaultFileNames entry present in dir.
func FindDefault(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return "", fmt.Errorf("no descriptor found in %s (looked for %v)", dir, DefaultFileNames)
}

// ResolvePath picks the descriptor path: explicit value, then $TWCONFIG_FILE,
// then a default file name in dir.
func ResolvePath(explicit, dir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p := ParseString(EnvFile, ""); p != "" {
		return p, nil
	}
	return FindDefault(dir)
}
