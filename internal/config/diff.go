// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ChangeSummary describes the result of comparing two descriptors.
type ChangeSummary struct {
	ChangedFields   []string // top-level keys that changed
	ContentAdded    []string
	ContentRemoved  []string
	SafelistAdded   []string
	SafelistRemoved []string
}

// Empty reports whether nothing changed.
func (s ChangeSummary) Empty() bool {
	return len(s.ChangedFields) == 0
}

// Diff compares two descriptors using the same rules as Equal.
func Diff(old, next Descriptor) ChangeSummary {
	var s ChangeSummary

	if !slices.Equal(old.Content, next.Content) || old.ContentRelative != next.ContentRelative {
		s.ChangedFields = append(s.ChangedFields, keyContent)
		s.ContentAdded = missingFrom(next.Content, old.Content)
		s.ContentRemoved = missingFrom(old.Content, next.Content)
	}

	oldSet, nextSet := classSet(old.Safelist), classSet(next.Safelist)
	if !slices.Equal(oldSet, nextSet) {
		s.ChangedFields = append(s.ChangedFields, keySafelist)
		s.SafelistAdded = missingFrom(nextSet, oldSet)
		s.SafelistRemoved = missingFrom(oldSet, nextSet)
	}

	if !cmp.Equal(old.Theme, next.Theme, cmpopts.EquateEmpty()) {
		s.ChangedFields = append(s.ChangedFields, keyTheme)
	}
	if !cmp.Equal(old.Plugins, next.Plugins, cmpopts.EquateEmpty()) {
		s.ChangedFields = append(s.ChangedFields, keyPlugins)
	}
	return s
}

// missingFrom returns the entries of a that are not in b, in a's order.
func missingFrom(a, b []string) []string {
	present := make(map[string]struct{}, len(b))
	for _, v := range b {
		present[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := present[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
