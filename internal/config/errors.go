// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "errors"

var (
	// ErrMalformed classifies descriptors that fail to parse, evaluate or
	// match the expected structure. Use errors.Is(err, ErrMalformed).
	ErrMalformed = errors.New("malformed descriptor")

	// ErrUnknownField classifies strict decode failures caused by unknown keys.
	ErrUnknownField = errors.New("unknown descriptor field")

	// ErrIncomplete is returned when content holds no usable include pattern.
	ErrIncomplete = errors.New("descriptor incomplete")

	// ErrUnsupportedFormat is returned for unknown file extensions or format names.
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")

	// ErrEvalTimeout is wrapped (together with ErrMalformed) when a
	// JavaScript descriptor does not finish within the evaluation timeout.
	ErrEvalTimeout = errors.New("descriptor evaluation timed out")
)
