// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var structuralOpts = cmp.Options{
	cmpopts.IgnoreFields(Descriptor{}, "Source"),
	cmpopts.EquateEmpty(),
}

// Equal reports whether a and b describe the same configuration.
// Content and Plugins are order-sensitive, Safelist is compared as a
// set, and nil and empty collections are equal.
func Equal(a, b Descriptor) bool {
	return cmp.Equal(equalityView(a), equalityView(b), structuralOpts)
}

func equalityView(d Descriptor) Descriptor {
	d.Safelist = classSet(d.Safelist)
	return d
}

// classSet returns the sorted, de-duplicated class names.
func classSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
