// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecode_ShippedDescriptor(t *testing.T) {
	inputs := map[Format]string{
		FormatJS:   shippedJS,
		FormatYAML: shippedYAML,
		FormatJSON: shippedJSON,
	}

	for format, body := range inputs {
		t.Run(string(format), func(t *testing.T) {
			d, err := Decode(context.Background(), []byte(body), format)
			require.NoError(t, err)

			require.Equal(t, []string{"./pkg/html/**/*.go"}, d.Content)
			require.Equal(t, []string{"bg-blue-500"}, d.Safelist)
			require.NotNil(t, d.Theme.Extend)
			require.Empty(t, d.Theme.Extend)
			require.Empty(t, d.Theme.Overrides)
			require.NotNil(t, d.Plugins)
			require.Empty(t, d.Plugins)
			require.Equal(t, format, d.Source.Format)
			require.True(t, Equal(Default(), d))
		})
	}
}

func TestDecode_MalformedReturnsNoPartialDescriptor(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		body   string
	}{
		{"js unterminated string", FormatJS, "module.exports = {\n  content: [\"./pkg/html/**/*.go,\n]}"},
		{"js unterminated array", FormatJS, "module.exports = { content: ['./a/*.go'"},
		{"js throws", FormatJS, "throw new Error('boom')"},
		{"js exports array", FormatJS, "module.exports = ['./a/*.go']"},
		{"yaml unterminated flow", FormatYAML, "content: [\"./pkg/html/**/*.go\"\nsafelist: []"},
		{"yaml unterminated quote", FormatYAML, "content:\n  - './pkg/html/**/*.go\n"},
		{"yaml multiple documents", FormatYAML, "content: ['a/*.go']\n---\ncontent: ['b/*.go']\n"},
		{"yaml scalar root", FormatYAML, "just a string"},
		{"json unterminated", FormatJSON, `{"content": ["./pkg/html/**/*.go"`},
		{"json trailing", FormatJSON, `{"content": ["a/*.go"]} {}`},
		{"content not a list", FormatJSON, `{"content": "./a/*.go"}`},
		{"content raw entry", FormatJS, "module.exports = { content: [{ raw: '<div class=\"p-4\">' }] }"},
		{"safelist pattern object", FormatJS, "module.exports = { content: ['a/*.go'], safelist: [{ pattern: /bg-.*/ }] }"},
		{"theme not an object", FormatYAML, "content: ['a/*.go']\ntheme: []\n"},
		{"extend not an object", FormatYAML, "content: ['a/*.go']\ntheme:\n  extend: 3\n"},
		{"plugins not a list", FormatJSON, `{"content": ["a/*.go"], "plugins": {}}`},
		{"relative not bool", FormatJSON, `{"content": {"files": ["a/*.go"], "relative": "yes"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(context.Background(), []byte(tt.body), tt.format)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMalformed), "expected ErrMalformed, got %v", err)
			require.True(t, Equal(Descriptor{}, d))
			require.Empty(t, d.Content)
		})
	}
}

func TestDecode_MissingContentIsIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		body   string
	}{
		{"empty yaml", FormatYAML, ""},
		{"empty object", FormatJSON, `{}`},
		{"empty content", FormatJS, "module.exports = { content: [] }"},
		{"only exclusions", FormatYAML, "content: ['!./pkg/**/*_test.go']\n"},
		{"invalid glob only", FormatJSON, `{"content": ["./pkg/[a-z.go"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), []byte(tt.body), tt.format)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrIncomplete)
		})
	}
}

func TestDecode_UnknownKeys(t *testing.T) {
	yamlBody := "content: ['a/*.go']\ndarkMode: class\n"
	_, err := Decode(context.Background(), []byte(yamlBody), FormatYAML)
	require.ErrorIs(t, err, ErrUnknownField)
	require.Contains(t, err.Error(), "darkMode")

	d, err := Decode(context.Background(), []byte(yamlBody), FormatYAML, WithStrict(false))
	require.NoError(t, err)
	require.Equal(t, []string{"darkMode"}, d.Source.IgnoredKeys)

	jsBody := "module.exports = { darkMode: 'class', prefix: 'tw-', content: ['a/*.go'] }"
	d, err = Decode(context.Background(), []byte(jsBody), FormatJS)
	require.NoError(t, err)
	require.Equal(t, []string{"darkMode", "prefix"}, d.Source.IgnoredKeys)

	_, err = Decode(context.Background(), []byte(jsBody), FormatJS, WithStrict(true))
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestDecode_ContentObjectForm(t *testing.T) {
	body := `module.exports = {
  content: {
    relative: true,
    files: ['./templates/**/*.html', '!./templates/legacy/**'],
  },
}`
	d, err := Decode(context.Background(), []byte(body), FormatJS)
	require.NoError(t, err)
	require.True(t, d.ContentRelative)
	require.Equal(t, []string{"./templates/**/*.html", "!./templates/legacy/**"}, d.Content)
	require.Equal(t, []string{"./templates/**/*.html"}, d.Includes())
	require.Equal(t, []string{"./templates/legacy/**"}, d.Excludes())
}

func TestDecode_JSPluginsAndTheme(t *testing.T) {
	body := `const plugin = require('tailwindcss/plugin')

module.exports = {
  content: ['./pkg/html/**/*.go'],
  theme: {
    screens: { sm: '480px' },
    extend: {
      spacing: { 128: '32rem' },
      zIndex: { top: 100 },
      colors: ({ theme }) => ({ brand: theme('colors.blue.500') }),
    },
  },
  plugins: [
    require('@tailwindcss/typography'),
    require('@tailwindcss/forms')({ strategy: 'class' }),
    plugin(function ({ addUtilities }) {}),
  ],
}`
	d, err := Decode(context.Background(), []byte(body), FormatJS)
	require.NoError(t, err)

	require.Equal(t, map[string]any{"sm": "480px"}, d.Theme.Overrides["screens"])
	require.Equal(t, map[string]any{"128": "32rem"}, d.Theme.Extend["spacing"])
	require.Equal(t, map[string]any{"top": float64(100)}, d.Theme.Extend["zIndex"])
	require.Equal(t, FunctionMarker, d.Theme.Extend["colors"])

	require.Len(t, d.Plugins, 3)
	require.Equal(t, Plugin{Name: "@tailwindcss/typography"}, d.Plugins[0])
	require.Equal(t, Plugin{Name: "@tailwindcss/forms", Value: map[string]any{"strategy": "class"}}, d.Plugins[1])
	// Calling the required module yields a reference to it.
	require.Equal(t, Plugin{Name: "tailwindcss/plugin", Value: FunctionMarker}, d.Plugins[2])
}

func TestDecode_ESMDefaultExport(t *testing.T) {
	body := `import forms from '@tailwindcss/forms'

/** @type {import('tailwindcss').Config} */
export default {
  content: ['./src/**/*.{html,js}'],
  plugins: [forms],
}`
	d, err := Decode(context.Background(), []byte(body), FormatJS)
	require.NoError(t, err)
	require.Equal(t, []string{"./src/**/*.{html,js}"}, d.Content)
	require.Equal(t, []Plugin{{Name: "@tailwindcss/forms"}}, d.Plugins)
}

func TestDecode_ExportsAssignment(t *testing.T) {
	body := `exports.content = ['./a/**/*.go']; exports.safelist = ['p-4']`
	d, err := Decode(context.Background(), []byte(body), FormatJS)
	require.NoError(t, err)
	require.Equal(t, []string{"./a/**/*.go"}, d.Content)
	require.Equal(t, []string{"p-4"}, d.Safelist)
}

func TestDecode_JSTimeout(t *testing.T) {
	body := "while (true) {}\nmodule.exports = { content: ['a/*.go'] }"

	start := time.Now()
	_, err := Decode(context.Background(), []byte(body), FormatJS, WithEvalTimeout(50*time.Millisecond))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMalformed)
	require.ErrorIs(t, err, ErrEvalTimeout)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestDecode_JSTimeoutCoversExport(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"looping getter", "module.exports = { get content() { while (true) {} } }"},
		{"looping nested getter", "module.exports = { content: ['a/*.go'], theme: { extend: { get colors() { for (;;) {} } } } }"},
		{"looping proxy trap", "module.exports = new Proxy({}, { ownKeys() { while (true) {} } })"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errc := make(chan error, 1)
			go func() {
				_, err := Decode(context.Background(), []byte(tt.body), FormatJS, WithEvalTimeout(100*time.Millisecond))
				errc <- err
			}()

			select {
			case err := <-errc:
				require.ErrorIs(t, err, ErrMalformed)
				require.ErrorIs(t, err, ErrEvalTimeout)
			case <-time.After(5 * time.Second):
				t.Fatal("decode not bounded by the evaluation timeout")
			}
		})
	}
}

func TestDecode_JSHugeArray(t *testing.T) {
	body := "module.exports = { content: new Array(2**32 - 1) }"

	start := time.Now()
	d, err := Decode(context.Background(), []byte(body), FormatJS)
	require.ErrorIs(t, err, ErrMalformed)
	require.NotErrorIs(t, err, ErrEvalTimeout)
	require.Equal(t, Descriptor{}, d)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestDecode_JSThrowingGetter(t *testing.T) {
	body := "module.exports = { get content() { throw new Error('nope') } }"

	_, err := Decode(context.Background(), []byte(body), FormatJS)
	require.ErrorIs(t, err, ErrMalformed)
	require.NotErrorIs(t, err, ErrEvalTimeout)
}

func TestDecode_JSCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := "while (true) {}"
	_, err := Decode(ctx, []byte(body), FormatJS)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode(context.Background(), []byte("content = []"), Format("toml"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecode_NumbersNormalizeAcrossFormats(t *testing.T) {
	js := "module.exports = { content: ['a/*.go'], theme: { extend: { opacity: { 15: 0.15, full: 1 } } } }"
	yml := "content: ['a/*.go']\ntheme:\n  extend:\n    opacity:\n      15: 0.15\n      full: 1\n"
	jsn := `{"content": ["a/*.go"], "theme": {"extend": {"opacity": {"15": 0.15, "full": 1}}}}`

	dj, err := Decode(context.Background(), []byte(js), FormatJS)
	require.NoError(t, err)
	dy, err := Decode(context.Background(), []byte(yml), FormatYAML)
	require.NoError(t, err)
	dn, err := Decode(context.Background(), []byte(jsn), FormatJSON)
	require.NoError(t, err)

	require.True(t, Equal(dj, dy))
	require.True(t, Equal(dy, dn))
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"js": FormatJS, "MJS": FormatJS, "yml": FormatYAML, "yaml": FormatYAML, " json ": FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFormat("toml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"tailwind.config.js":   FormatJS,
		"tailwind.config.cjs":  FormatJS,
		"tailwind.config.mjs":  FormatJS,
		"tailwind.config.yaml": FormatYAML,
		"conf/TW.YML":          FormatYAML,
		"tailwind.config.json": FormatJSON,
	}
	for in, want := range tests {
		got, err := FormatFromPath(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := FormatFromPath("tailwind.config.ts")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
