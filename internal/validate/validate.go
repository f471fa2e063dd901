// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package validate provides descriptor validation utilities for twconfig.
package validate

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// Error represents a validation error
type Error struct {
	Field   string      // Field name that failed validation
	Value   interface{} // The invalid value
	Message string      // Human-readable error message
}

// Error implements the error interface
func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Warning is a finding that does not make a descriptor invalid.
type Warning struct {
	Field   string
	Rule    string // stable identifier, used as metric label
	Value   interface{}
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Validator accumulates validation errors and warnings.
type Validator struct {
	errors   []Error
	warnings []Warning
}

// ValidationError bundles multiple validation errors into a single error value.
type ValidationError struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]Error, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string, value interface{}) {
	v.errors = append(v.errors, Error{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// AddWarning records a soft finding under the given rule.
func (v *Validator) AddWarning(field, rule, message string, value interface{}) {
	v.warnings = append(v.warnings, Warning{
		Field:   field,
		Rule:    rule,
		Value:   value,
		Message: message,
	})
}

// IsValid returns true if no errors have been accumulated
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all accumulated validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Warnings returns a copy of the accumulated warnings.
func (v *Validator) Warnings() []Warning {
	if len(v.warnings) == 0 {
		return nil
	}
	out := make([]Warning, len(v.warnings))
	copy(out, v.warnings)
	return out
}

// Err converts the accumulated validation errors into an error value.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}

	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)

	return ValidationError{errors: copied}
}

// Errors returns the individual validation errors making up the validation failure.
func (e ValidationError) Errors() []Error {
	return e.errors
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return ""
	}

	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}

	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// NotEmpty validates that a string is not empty or whitespace-only
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// MinLen validates that a collection holds at least min entries.
func (v *Validator) MinLen(field string, n, minLen int) {
	if n < minLen {
		v.AddError(field, fmt.Sprintf("must contain at least %d entries, got %d", minLen, n), n)
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field,
		fmt.Sprintf("value must be one of %v, got %q", allowed, value),
		value)
}

// Glob validates a project-relative glob pattern. A single leading "!"
// (exclusion) is accepted. It reports whether the pattern is usable.
func (v *Validator) Glob(field, pattern string) bool {
	if strings.TrimSpace(pattern) == "" {
		v.AddError(field, "glob pattern cannot be empty", pattern)
		return false
	}

	p := strings.TrimPrefix(pattern, "!")
	if p == "" {
		v.AddError(field, "exclusion pattern has no body", pattern)
		return false
	}

	if path.IsAbs(p) || isWindowsAbs(p) {
		v.AddError(field, fmt.Sprintf("must be relative to the project root, got absolute: %s", pattern), pattern)
		return false
	}

	if !doublestar.ValidatePattern(strings.TrimPrefix(p, "./")) {
		v.AddError(field, fmt.Sprintf("invalid glob syntax: %s", pattern), pattern)
		return false
	}
	return true
}

// GlobMeta lists the characters with glob meaning.
const GlobMeta = "*?[]{}"

// Literal validates an exact class name. Empty values and whitespace are
// errors; glob metacharacters only produce a warning.
func (v *Validator) Literal(field, value string) {
	if value == "" {
		v.AddError(field, "class name cannot be empty", value)
		return
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		v.AddError(field, fmt.Sprintf("class name must not contain whitespace: %q", value), value)
		return
	}
	if strings.ContainsAny(value, GlobMeta) {
		v.AddWarning(field, "safelist_glob_meta",
			fmt.Sprintf("%q contains glob metacharacters; safelist entries are matched literally", value),
			value)
	}
}

func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && (p[2] == '/' || p[2] == '\\') &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
