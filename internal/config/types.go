// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the on-disk encoding of a descriptor.
type Format string

const (
	FormatJS   Format = "js"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in preference order.
var Formats = []Format{FormatJS, FormatYAML, FormatJSON}

// FunctionMarker replaces JavaScript functions found in descriptor data.
const FunctionMarker = "[Function]"

// Descriptor is the configuration record consumed by the CSS generator.
// Descriptors are values: callers never mutate a loaded descriptor in
// place, they Clone it first.
type Descriptor struct {
	// Content lists glob patterns, relative to the project root, of the
	// files scanned for class names. A leading "!" excludes matches.
	Content []string
	// ContentRelative is set when patterns are relative to the
	// descriptor file instead of the working directory.
	ContentRelative bool
	// Safelist holds exact class names that are never removed.
	Safelist []string
	Theme    Theme
	Plugins  []Plugin

	// Source describes where the descriptor came from. It never takes
	// part in equality.
	Source Source
}

// Theme holds design-token changes. Extend adds to the default tokens,
// Overrides (every theme key other than "extend") replaces them.
type Theme struct {
	Extend    map[string]any
	Overrides map[string]any
}

// Plugin is an opaque plugin registration.
type Plugin struct {
	// Name is the module name for plugins registered via require().
	Name string
	// Value holds the options passed to a named plugin, or the inline
	// value of an anonymous one.
	Value any
}

// Source records load metadata.
type Source struct {
	Path        string
	Format      Format
	IgnoredKeys []string
}

// Default returns the descriptor the project ships with.
func Default() Descriptor {
	return Descriptor{
		Content:  []string{"./pkg/html/**/*.go"},
		Safelist: []string{"bg-blue-500"},
		Theme: Theme{
			Extend: map[string]any{},
		},
		Plugins: []Plugin{},
	}
}

// ParseFormat parses a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "js", "javascript", "cjs", "mjs":
		return FormatJS, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (use js, yaml or json)", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".js", ".cjs", ".mjs":
		return FormatJS, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Includes returns the content patterns without exclusions.
func (d Descriptor) Includes() []string {
	out := make([]string, 0, len(d.Content))
	for _, p := range d.Content {
		if !strings.HasPrefix(p, "!") {
			out = append(out, p)
		}
	}
	return out
}

// Excludes returns the exclusion patterns with the leading "!" removed.
func (d Descriptor) Excludes() []string {
	var out []string
	for _, p := range d.Content {
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			out = append(out, rest)
		}
	}
	return out
}
