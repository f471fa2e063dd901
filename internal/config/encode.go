// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// jsHeader is the type annotation editors use to offer completion.
const jsHeader = "/** @type {import('tailwindcss').Config} */\n"

// fileDescriptor is the canonical serialized layout. Field order is the
// order keys appear in YAML and JSON output.
type fileDescriptor struct {
	Content  any            `yaml:"content" json:"content"`
	Safelist []string       `yaml:"safelist" json:"safelist"`
	Theme    map[string]any `yaml:"theme" json:"theme"`
	Plugins  []any          `yaml:"plugins" json:"plugins"`
}

type contentObject struct {
	Files    []string `yaml:"files" json:"files"`
	Relative bool     `yaml:"relative" json:"relative"`
}

// Marshal serializes d in the given format. Decoding the output with the
// same format yields a descriptor Equal to d.
func Marshal(d Descriptor, format Format) ([]byte, error) {
	fd := canonical(d)
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fd); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("close yaml encoder: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fd); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJS:
		return marshalJS(fd), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func canonical(d Descriptor) fileDescriptor {
	content := append([]string{}, d.Content...)
	fd := fileDescriptor{
		Content:  content,
		Safelist: append([]string{}, d.Safelist...),
		Theme:    make(map[string]any, len(d.Theme.Overrides)+1),
		Plugins:  make([]any, 0, len(d.Plugins)),
	}
	if d.ContentRelative {
		fd.Content = contentObject{Files: content, Relative: true}
	}

	for k, v := range d.Theme.Overrides {
		fd.Theme[k] = v
	}
	extend := d.Theme.Extend
	if extend == nil {
		extend = map[string]any{}
	}
	fd.Theme[keyExtend] = extend

	for _, p := range d.Plugins {
		fd.Plugins = append(fd.Plugins, pluginValue(p))
	}
	return fd
}

func pluginValue(p Plugin) any {
	if p.Name == "" {
		return p.Value
	}
	ref := map[string]any{keyRequire: p.Name}
	if p.Value != nil {
		ref[keyOptions] = p.Value
	}
	return ref
}

func marshalJS(fd fileDescriptor) []byte {
	var b strings.Builder
	b.WriteString(jsHeader)
	b.WriteString("module.exports = {\n")

	b.WriteString("  content: ")
	if obj, ok := fd.Content.(contentObject); ok {
		writeJS(&b, map[string]any{keyFiles: stringsToAny(obj.Files), keyRelative: obj.Relative}, 1)
	} else {
		writeJS(&b, stringsToAny(fd.Content.([]string)), 1)
	}
	b.WriteString(",\n  safelist: ")
	writeJS(&b, stringsToAny(fd.Safelist), 1)
	b.WriteString(",\n  theme: ")
	writeJS(&b, fd.Theme, 1)
	b.WriteString(",\n  plugins: ")
	if len(fd.Plugins) == 0 {
		b.WriteString("[]")
	} else {
		b.WriteString("[\n")
		for _, p := range fd.Plugins {
			b.WriteString("    ")
			writePluginJS(&b, p, 2)
			b.WriteString(",\n")
		}
		b.WriteString("  ]")
	}
	b.WriteString(",\n}\n")
	return []byte(b.String())
}

func writePluginJS(b *strings.Builder, v any, depth int) {
	p := pluginFromValue(v)
	if p.Name == "" {
		writeJS(b, v, depth)
		return
	}
	b.WriteString("require(")
	b.WriteString(quoteJS(p.Name))
	b.WriteString(")")
	if p.Value != nil {
		b.WriteString("(")
		writeJS(b, p.Value, depth)
		b.WriteString(")")
	}
}

var jsIdent = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func writeJS(b *strings.Builder, v any, depth int) {
	pad := strings.Repeat("  ", depth)
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(quoteJS(t))
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case float64:
		switch {
		case math.IsNaN(t):
			b.WriteString("NaN")
		case math.IsInf(t, 1):
			b.WriteString("Infinity")
		case math.IsInf(t, -1):
			b.WriteString("-Infinity")
		default:
			b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
		}
	case []any:
		if len(t) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for _, item := range t {
			b.WriteString(pad + "  ")
			writeJS(b, item, depth+1)
			b.WriteString(",\n")
		}
		b.WriteString(pad + "]")
	case map[string]any:
		if len(t) == 0 {
			b.WriteString("{}")
			return
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{\n")
		for _, k := range keys {
			b.WriteString(pad + "  ")
			if jsIdent.MatchString(k) {
				b.WriteString(k)
			} else {
				b.WriteString(quoteJS(k))
			}
			b.WriteString(": ")
			writeJS(b, t[k], depth+1)
			b.WriteString(",\n")
		}
		b.WriteString(pad + "}")
	default:
		// normalize() only produces the cases above.
		b.WriteString(quoteJS(fmt.Sprint(t)))
	}
}

func quoteJS(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
