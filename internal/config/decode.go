// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	keyContent  = "content"
	keySafelist = "safelist"
	keyTheme    = "theme"
	keyPlugins  = "plugins"
	keyExtend   = "extend"
	keyFiles    = "files"
	keyRelative = "relative"
	keyRequire  = "require"
	keyOptions  = "options"
)

var knownKeys = map[string]struct{}{
	keyContent:  {},
	keySafelist: {},
	keyTheme:    {},
	keyPlugins:  {},
}

// Decode parses and validates an in-memory descriptor. It applies the
// same pipeline as Loader.Load: on error the zero Descriptor is returned.
func Decode(ctx context.Context, data []byte, format Format, opts ...Option) (Descriptor, error) {
	d, err := decode(ctx, data, format, newOptions(opts))
	if err != nil {
		return Descriptor{}, err
	}
	if err := Validate(d); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// decode turns raw bytes into a structurally valid, unvalidated descriptor.
func decode(ctx context.Context, data []byte, format Format, o options) (Descriptor, error) {
	var (
		raw map[string]any
		err error
	)
	switch format {
	case FormatYAML:
		raw, err = decodeYAML(data)
	case FormatJSON:
		raw, err = decodeJSON(data)
	case FormatJS:
		raw, err = evalJS(ctx, data, o.evalTimeout)
	default:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Descriptor{}, err
	}

	d, err := fromRaw(raw, o.strictFor(format))
	if err != nil {
		return Descriptor{}, err
	}
	d.Source.Format = format
	return d, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: yaml: %w", ErrMalformed, err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: yaml: multiple documents or trailing content", ErrMalformed)
	}

	return rootObject(doc)
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: json: %w", ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: json: trailing content after descriptor", ErrMalformed)
	}

	return rootObject(doc)
}

func rootObject(doc any) (map[string]any, error) {
	if doc == nil {
		return map[string]any{}, nil
	}
	norm, err := normalize(doc, 0)
	if err != nil {
		return nil, err
	}
	m, ok := norm.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be an object, got %s", ErrMalformed, typeName(norm))
	}
	return m, nil
}

// fromRaw maps a normalized object onto a Descriptor.
func fromRaw(raw map[string]any, strict bool) (Descriptor, error) {
	var d Descriptor
	var ignored []string

	for key := range raw {
		if _, ok := knownKeys[key]; !ok {
			ignored = append(ignored, key)
		}
	}

	content, relative, contentIgnored, err := parseContent(raw[keyContent])
	if err != nil {
		return Descriptor{}, err
	}
	d.Content = content
	d.ContentRelative = relative
	ignored = append(ignored, contentIgnored...)

	if d.Safelist, err = parseStrings(keySafelist, raw[keySafelist]); err != nil {
		return Descriptor{}, err
	}
	if d.Theme, err = parseTheme(raw[keyTheme]); err != nil {
		return Descriptor{}, err
	}
	if d.Plugins, err = parsePlugins(raw[keyPlugins]); err != nil {
		return Descriptor{}, err
	}

	sort.Strings(ignored)
	if strict && len(ignored) > 0 {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(ignored, ", "))
	}
	d.Source.IgnoredKeys = ignored
	return d, nil
}

func parseContent(v any) (patterns []string, relative bool, ignored []string, err error) {
	switch c := v.(type) {
	case nil:
		return nil, false, nil, nil
	case []any:
		patterns, err = parseStrings(keyContent, c)
		return patterns, false, nil, err
	case map[string]any:
		for key := range c {
			if key != keyFiles && key != keyRelative {
				ignored = append(ignored, keyContent+"."+key)
			}
		}
		patterns, err = parseStrings(keyContent+"."+keyFiles, c[keyFiles])
		if err != nil {
			return nil, false, nil, err
		}
		if r, ok := c[keyRelative]; ok && r != nil {
			b, isBool := r.(bool)
			if !isBool {
				return nil, false, nil, fmt.Errorf("%w: content.relative must be a boolean, got %s", ErrMalformed, typeName(r))
			}
			relative = b
		}
		return patterns, relative, ignored, nil
	default:
		return nil, false, nil, fmt.Errorf("%w: content must be a list of glob patterns, got %s", ErrMalformed, typeName(v))
	}
}

func parseStrings(field string, v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list, got %s", ErrMalformed, field, typeName(v))
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a string, got %s", ErrMalformed, field, i, typeName(item))
		}
		out = append(out, s)
	}
	return out, nil
}

func parseTheme(v any) (Theme, error) {
	t := Theme{Extend: map[string]any{}}
	if v == nil {
		return t, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Theme{}, fmt.Errorf("%w: theme must be an object, got %s", ErrMalformed, typeName(v))
	}
	for key, val := range m {
		if key == keyExtend {
			if val == nil {
				continue
			}
			ext, ok := val.(map[string]any)
			if !ok {
				return Theme{}, fmt.Errorf("%w: theme.extend must be an object, got %s", ErrMalformed, typeName(val))
			}
			t.Extend = ext
			continue
		}
		if t.Overrides == nil {
			t.Overrides = map[string]any{}
		}
		t.Overrides[key] = val
	}
	return t, nil
}

func parsePlugins(v any) ([]Plugin, error) {
	out := []Plugin{}
	if v == nil {
		return out, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: plugins must be a list, got %s", ErrMalformed, typeName(v))
	}
	for _, item := range list {
		out = append(out, pluginFromValue(item))
	}
	return out, nil
}

// pluginFromValue recognises {require: name, options: ...} references.
func pluginFromValue(v any) Plugin {
	m, ok := v.(map[string]any)
	if !ok {
		return Plugin{Value: v}
	}
	name, ok := m[keyRequire].(string)
	if !ok || name == "" {
		return Plugin{Value: v}
	}
	for key := range m {
		if key != keyRequire && key != keyOptions {
			return Plugin{Value: v}
		}
	}
	return Plugin{Name: name, Value: m[keyOptions]}
}

const maxDepth = 64

// normalize converts decoder output into a canonical tree of
// map[string]any, []any, string, float64, bool and nil so descriptors
// decoded from different formats compare equal.
func normalize(v any, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d levels", ErrMalformed, maxDepth)
	}
	switch t := v.(type) {
	case nil, string, bool, float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case float32:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", ErrMalformed, t.String())
		}
		return f, nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			n, err := normalize(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := normalize(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			n, err := normalize(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value of type %T", ErrMalformed, v)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
