// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads, validates and serializes the descriptor read by a
// utility-class CSS generator (content globs, safelist, theme extension
// and plugin registrations).
//
// Descriptors are decoded from JavaScript (module.exports / export
// default), YAML or JSON. A load either returns a complete, validated
// Descriptor or an error; partial descriptors are never returned.
package config
