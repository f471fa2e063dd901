// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// The descriptor the project ships with, in every supported format.
const (
	shippedJS = `/** @type {import('tailwindcss').Config} */
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
	shippedYAML = `content:
  - ./pkg/html/**/*.go
safelist:
  - bg-blue-500
theme:
  extend: {}
plugins: []
`
	shippedJSON = `{
  "content": ["./pkg/html/**/*.go"],
  "safelist": ["bg-blue-500"],
  "theme": {"extend": {}},
  "plugins": []
}
`
)

func writeDescriptor(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write descriptor: %v", err)
	}
	return path
}
