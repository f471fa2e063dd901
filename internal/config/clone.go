// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// Clone returns an alias-free deep copy of d.
func Clone(d Descriptor) Descriptor {
	out := d

	out.Content = cloneStringSlice(d.Content)
	out.Safelist = cloneStringSlice(d.Safelist)
	out.Source.IgnoredKeys = cloneStringSlice(d.Source.IgnoredKeys)

	out.Theme.Extend = cloneMap(d.Theme.Extend)
	out.Theme.Overrides = cloneMap(d.Theme.Overrides)

	if d.Plugins != nil {
		out.Plugins = make([]Plugin, len(d.Plugins))
		for i, p := range d.Plugins {
			out.Plugins[i] = Plugin{Name: p.Name, Value: cloneValue(p.Value)}
		}
	}
	return out
}

func cloneStringSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
