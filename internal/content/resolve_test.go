// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ManuGH/twconfig/internal/config"
	"github.com/ManuGH/twconfig/internal/metrics"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func mkTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("package x\n"), 0o600))
	}
}

func TestResolve_DefaultDescriptor(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root,
		"pkg/html/index.go",
		"pkg/html/partials/nav.go",
		"pkg/html/style.css",
		"cmd/main.go",
	)

	res, err := Resolve(context.Background(), root, config.Default())
	require.NoError(t, err)
	require.Equal(t, root, res.Root)
	require.Equal(t, []string{"pkg/html/index.go", "pkg/html/partials/nav.go"}, res.Files)
	require.Empty(t, res.Unmatched)
	require.Len(t, res.Patterns, 1)
	require.Equal(t, res.Files, res.Patterns[0].Files)
}

func TestResolve_ExclusionsAndUnmatched(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root,
		"pkg/html/index.go",
		"pkg/html/index_test.go",
		"web/layout.templ",
		"web/page.html",
	)

	d := config.Default()
	d.Content = []string{
		"./pkg/html/**/*.go",
		"./web/**/*.{templ,html}",
		"./docs/**/*.md",
		"!./pkg/html/**/*_test.go",
	}

	res, err := Resolve(context.Background(), root, d)
	require.NoError(t, err)

	want := []Match{
		{Pattern: "./pkg/html/**/*.go", Files: []string{"pkg/html/index.go"}},
		{Pattern: "./web/**/*.{templ,html}", Files: []string{"web/layout.templ", "web/page.html"}},
		{Pattern: "./docs/**/*.md", Files: []string{}},
		{Pattern: "!./pkg/html/**/*_test.go", Exclude: true, Files: []string{"pkg/html/index_test.go"}},
	}
	if diff := cmp.Diff(want, res.Patterns); diff != "" {
		t.Errorf("patterns mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"pkg/html/index.go", "web/layout.templ", "web/page.html"}, res.Files)
	require.Equal(t, []string{"./docs/**/*.md"}, res.Unmatched)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.ContentPatternsUnmatched))
}

func TestResolve_ParentDirectory(t *testing.T) {
	parent := t.TempDir()
	mkTree(t, parent, "shared/button.go", "app/pkg/html/index.go")
	root := filepath.Join(parent, "app")

	d := config.Default()
	d.Content = append(d.Content, "../shared/*.go")

	res, err := Resolve(context.Background(), root, d)
	require.NoError(t, err)
	require.Equal(t, []string{"../shared/button.go", "pkg/html/index.go"}, res.Files)
}

func TestResolve_RelativeToDescriptor(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "site/pkg/html/index.go", "pkg/html/other.go")

	d := config.Default()
	d.ContentRelative = true
	d.Source.Path = filepath.Join(root, "site", "tailwind.config.js")

	res, err := Resolve(context.Background(), root, d)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "site"), res.Root)
	require.Equal(t, []string{"pkg/html/index.go"}, res.Files)

	// Without a source path the root is used.
	d.Source.Path = ""
	require.Equal(t, root, BaseDir(root, d))
}

func TestResolve_InvalidPatterns(t *testing.T) {
	root := t.TempDir()

	d := config.Default()
	d.Content = []string{"./pkg/[a-"}
	_, err := Resolve(context.Background(), root, d)
	require.ErrorIs(t, err, doublestar.ErrBadPattern)

	d.Content = []string{filepath.Join(root, "*.go")}
	_, err = Resolve(context.Background(), root, d)
	require.Error(t, err)
}

func TestResolve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, t.TempDir(), config.Default())
	require.ErrorIs(t, err, context.Canceled)
}
