// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// DefaultEvalTimeout bounds JavaScript descriptor evaluation.
const DefaultEvalTimeout = 2 * time.Second

type options struct {
	strict      *bool
	evalTimeout time.Duration
}

// Option tunes decoding and loading.
type Option func(*options)

// WithStrict forces strict (true) or lax (false) handling of unknown keys.
// Without it YAML and JSON are strict and JavaScript is lax.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = &strict
	}
}

// WithEvalTimeout overrides DefaultEvalTimeout. Non-positive values are ignored.
func WithEvalTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.evalTimeout = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{evalTimeout: DefaultEvalTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) strictFor(f Format) bool {
	if o.strict != nil {
		return *o.strict
	}
	return f != FormatJS
}
