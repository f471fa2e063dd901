// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/twconfig/internal/validate"
)

// Validate reports hard errors. A descriptor without a usable include
// pattern additionally matches ErrIncomplete.
func Validate(d Descriptor) error {
	v, incomplete := check(d)
	err := v.Err()
	if err == nil {
		return nil
	}
	if incomplete {
		return fmt.Errorf("%w: %w", ErrIncomplete, err)
	}
	return err
}

// Lint reports findings that do not invalidate the descriptor.
func Lint(d Descriptor) []validate.Warning {
	v, _ := check(d)
	return v.Warnings()
}

func check(d Descriptor) (*validate.Validator, bool) {
	v := validate.New()

	v.MinLen("content", len(d.Content), 1)
	includes := 0
	seenPatterns := make(map[string]struct{}, len(d.Content))
	for i, p := range d.Content {
		field := fmt.Sprintf("content[%d]", i)
		if !v.Glob(field, p) {
			continue
		}
		if !strings.HasPrefix(p, "!") {
			includes++
		}
		if _, dup := seenPatterns[p]; dup {
			v.AddWarning(field, "content_duplicate", fmt.Sprintf("pattern %q is listed more than once", p), p)
		}
		seenPatterns[p] = struct{}{}
	}
	if len(d.Content) > 0 && len(d.Includes()) == 0 {
		v.AddError("content", "only exclusion patterns given; nothing would be scanned", d.Content)
	}

	seenClasses := make(map[string]struct{}, len(d.Safelist))
	for i, class := range d.Safelist {
		field := fmt.Sprintf("safelist[%d]", i)
		v.Literal(field, class)
		if _, dup := seenClasses[class]; dup && class != "" {
			v.AddWarning(field, "safelist_duplicate", fmt.Sprintf("class %q is listed more than once", class), class)
		}
		seenClasses[class] = struct{}{}
	}

	for _, key := range d.Source.IgnoredKeys {
		v.AddWarning(key, "unknown_key", "key is not part of the descriptor contract and is ignored", key)
	}

	return v, includes == 0
}
