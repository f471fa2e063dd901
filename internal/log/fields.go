// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	FieldRequestID = "request_id"
	FieldEvent     = "event"
	FieldComponent = "component"

	FieldPath    = "path"
	FieldFormat  = "format"
	FieldPattern = "pattern"
	FieldRule    = "rule"
)
