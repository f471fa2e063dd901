// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package version carries build metadata injected via ldflags.
package version

import "fmt"

var (
	// Version is the release version, set with -ldflags "-X ...".
	Version = "dev"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String formats the build metadata for `twconfig version`.
func String() string {
	return fmt.Sprintf("twconfig %s (commit %s, built %s)", Version, Commit, Date)
}
