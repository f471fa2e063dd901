// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/twconfig/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const shippedJS = `/** @type {import('tailwindcss').Config} */
module.exports = {
  content: [
	"./pkg/html/**/*.go",
  ],
  safelist: [
    'bg-blue-500',
  ],
  theme: {
    extend: {},
  },
  plugins: [],
}
`

func runCLI(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// inProject switches to a fresh project directory holding the given files.
func inProject(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv(config.EnvFile, "")
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	t.Chdir(dir)
	return dir
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		args       []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "shipped descriptor",
			files:      map[string]string{"tailwind.config.js": shippedJS},
			args:       []string{"validate"},
			wantExit:   exitOK,
			wantStdout: "tailwind.config.js is valid",
		},
		{
			name:       "explicit file",
			files:      map[string]string{"conf/tw.yaml": "content: ['./src/**/*.go']\n"},
			args:       []string{"validate", "--file", "conf/tw.yaml"},
			wantExit:   exitOK,
			wantStdout: "is valid",
		},
		{
			name:       "no descriptor",
			args:       []string{"validate"},
			wantExit:   exitUsage,
			wantStderr: "no descriptor found",
		},
		{
			name:       "malformed",
			files:      map[string]string{"tailwind.config.js": "module.exports = {\n  content: ['./pkg/html/**/*.go,\n}"},
			args:       []string{"validate"},
			wantExit:   exitInvalid,
			wantStderr: "tailwind.config.js: decode",
		},
		{
			name:       "incomplete",
			files:      map[string]string{"tailwind.config.json": `{"safelist": ["bg-blue-500"]}`},
			args:       []string{"validate"},
			wantExit:   exitInvalid,
			wantStderr: "content",
		},
		{
			name:       "warnings keep exit zero",
			files:      map[string]string{"tailwind.config.js": "module.exports = {darkMode: 'class', content: ['./a/*.go']}"},
			args:       []string{"validate"},
			wantExit:   exitOK,
			wantStderr: "warning: ",
		},
		{
			name:       "strict rejects unknown keys in js",
			files:      map[string]string{"tailwind.config.js": "module.exports = {darkMode: 'class', content: ['./a/*.go']}"},
			args:       []string{"validate", "--strict"},
			wantExit:   exitInvalid,
			wantStderr: "darkMode",
		},
		{
			name:     "unsupported extension",
			files:    map[string]string{"tailwind.config.ts": "export default {}"},
			args:     []string{"validate", "-f", "tailwind.config.ts"},
			wantExit: exitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"validate", "--nope"},
			wantExit: exitUsage,
		},
		{
			name:       "invalid log level",
			files:      map[string]string{"tailwind.config.js": shippedJS},
			args:       []string{"validate", "--log-level", "loud"},
			wantExit:   exitUsage,
			wantStderr: "log-level",
		},
		{
			name:       "explicit log level",
			files:      map[string]string{"tailwind.config.js": shippedJS},
			args:       []string{"validate", "--log-level", "debug"},
			wantExit:   exitOK,
			wantStdout: "is valid",
		},
		{
			name:     "unknown command",
			args:     []string{"compile"},
			wantExit: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inProject(t, tt.files)
			code, stdout, stderr := runCLI(t, context.Background(), tt.args...)
			require.Equal(t, tt.wantExit, code, "stdout=%s stderr=%s", stdout, stderr)
			require.Contains(t, stdout, tt.wantStdout)
			require.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestValidate_EnvFile(t *testing.T) {
	dir := inProject(t, map[string]string{"other/desc.json": `{"content": ["./x/*.go"]}`})
	t.Setenv(config.EnvFile, filepath.Join(dir, "other", "desc.json"))

	code, stdout, _ := runCLI(t, context.Background(), "validate")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "desc.json is valid")
}

func TestDump(t *testing.T) {
	inProject(t, map[string]string{"tailwind.config.js": shippedJS})

	for _, f := range config.Formats {
		t.Run(string(f), func(t *testing.T) {
			code, stdout, stderr := runCLI(t, context.Background(), "dump", "--format", string(f))
			require.Equal(t, exitOK, code, stderr)

			got, err := config.Decode(context.Background(), []byte(stdout), f)
			require.NoError(t, err)
			require.True(t, config.Equal(config.Default(), got))
		})
	}

	code, _, _ := runCLI(t, context.Background(), "dump", "--format", "toml")
	require.Equal(t, exitUsage, code)
}

func TestInit(t *testing.T) {
	inProject(t, nil)

	code, stdout, _ := runCLI(t, context.Background(), "init")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "wrote tailwind.config.js")

	code, _, stderr := runCLI(t, context.Background(), "init")
	require.Equal(t, exitInvalid, code)
	require.Contains(t, stderr, "already exists")

	code, _, _ = runCLI(t, context.Background(), "init", "--force")
	require.Equal(t, exitOK, code)

	code, _, _ = runCLI(t, context.Background(), "init", "--format", "yaml")
	require.Equal(t, exitOK, code)
	d, err := config.NewLoader("tailwind.config.yaml").Load(context.Background())
	require.NoError(t, err)
	require.True(t, config.Equal(config.Default(), d))

	code, _, _ = runCLI(t, context.Background(), "init", "-f", "tailwind.config.toml")
	require.Equal(t, exitUsage, code)
}

func TestDiff(t *testing.T) {
	inProject(t, map[string]string{
		"a.js":   shippedJS,
		"b.yaml": "content: ['./pkg/html/**/*.go']\nsafelist: ['bg-blue-500']\ntheme: {extend: {}}\nplugins: []\n",
		"c.json": `{"content": ["./pkg/html/**/*.go", "./web/*.html"], "safelist": ["p-4"]}`,
	})

	code, stdout, _ := runCLI(t, context.Background(), "diff", "a.js", "b.yaml")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "descriptors are equal")

	code, stdout, _ = runCLI(t, context.Background(), "diff", "a.js", "c.json")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "+ content ./web/*.html")
	require.Contains(t, stdout, "+ safelist p-4")
	require.Contains(t, stdout, "- safelist bg-blue-500")

	code, _, _ = runCLI(t, context.Background(), "diff", "--exit-code", "a.js", "c.json")
	require.Equal(t, exitInvalid, code)

	code, _, _ = runCLI(t, context.Background(), "diff", "a.js")
	require.Equal(t, exitUsage, code)
}

func TestFiles(t *testing.T) {
	inProject(t, map[string]string{
		"tailwind.config.js":   "module.exports = {content: ['./pkg/html/**/*.go', './docs/*.md']}",
		"pkg/html/index.go":    "package html\n",
		"pkg/html/nav/nav.go":  "package nav\n",
		"pkg/html/style.css":   "",
		"cmd/twconfig/main.go": "package main\n",
	})

	code, stdout, stderr := runCLI(t, context.Background(), "files")
	require.Equal(t, exitOK, code, stderr)
	require.Equal(t, "pkg/html/index.go\npkg/html/nav/nav.go\n", stdout)
	require.Contains(t, stderr, `content pattern "./docs/*.md" matches no files`)

	code, stdout, _ = runCLI(t, context.Background(), "files", "--patterns")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "./pkg/html/**/*.go (2)\n  pkg/html/index.go\n")

	code, _, _ = runCLI(t, context.Background(), "files", "--fail-unmatched")
	require.Equal(t, exitInvalid, code)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, context.Background(), "version")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "twconfig dev")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	inProject(t, map[string]string{"tailwind.config.js": shippedJS})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	code, stdout, stderr := runCLI(t, ctx, "watch")
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stdout, "watching ")
	require.Contains(t, stdout, "tailwind.config.js")
}

func TestWatch_InvalidServerSettings(t *testing.T) {
	inProject(t, map[string]string{"tailwind.config.js": shippedJS})

	code, _, stderr := runCLI(t, context.Background(), "watch", "--listen", "127.0.0.1:0", "--rate-limit", "-1")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "rate-limit")
}

func TestWatch_InvalidDescriptor(t *testing.T) {
	inProject(t, map[string]string{"tailwind.config.json": `{"content": [`})

	code, _, _ := runCLI(t, context.Background(), "watch")
	require.Equal(t, exitInvalid, code)
}
