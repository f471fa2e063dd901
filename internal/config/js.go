// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/dop251/goja"
)

const (
	// pluginMarker tags values returned by the require() binding.
	pluginMarker = "__twconfigModule"

	// maxArrayLen bounds arrays read from module.exports.
	maxArrayLen = 100_000
)

var (
	esmExportDefault = regexp.MustCompile(`(?m)^(\s*)export\s+default\s+`)
	esmImportDefault = regexp.MustCompile(`(?m)^(\s*)import\s+([A-Za-z_$][\w$]*)\s+from\s+('[^']*'|"[^"]*")\s*;?`)
)

// rewriteESM maps the ESM forms used by descriptor files onto CommonJS.
func rewriteESM(src string) string {
	src = esmImportDefault.ReplaceAllString(src, "${1}const $2 = require($3);")
	return esmExportDefault.ReplaceAllString(src, "${1}module.exports = ")
}

// evalJS evaluates a CommonJS (or default-export ESM) descriptor and
// returns module.exports as a normalized object. require() never touches
// the filesystem: it returns an opaque module reference that can also be
// called with plugin options.
func evalJS(ctx context.Context, src []byte, timeout time.Duration) (map[string]any, error) {
	prg, err := goja.Compile("descriptor.js", rewriteESM(string(src)), false)
	if err != nil {
		return nil, fmt.Errorf("%w: js: %w", ErrMalformed, err)
	}

	vm := goja.New()
	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, fmt.Errorf("bind module: %w", err)
	}
	if err := vm.Set("module", module); err != nil {
		return nil, fmt.Errorf("bind module: %w", err)
	}
	if err := vm.Set("exports", exports); err != nil {
		return nil, fmt.Errorf("bind exports: %w", err)
	}
	if err := vm.Set("require", func(call goja.FunctionCall) goja.Value {
		return moduleRef(vm, call.Argument(0).String())
	}); err != nil {
		return nil, fmt.Errorf("bind require: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Export runs inside the interrupt window too: getters and proxy
	// traps on module.exports execute script code.
	var (
		out       any
		runErr    error
		exportErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("panic: %v", r)
			}
		}()
		if _, runErr = vm.RunProgram(prg); runErr != nil {
			return
		}
		out, exportErr = exportJS(vm, module.Get("exports"), 0)
	}()

	select {
	case <-done:
	case <-runCtx.Done():
		vm.Interrupt("timeout")
		<-done
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w after %s", ErrMalformed, ErrEvalTimeout, timeout)
	}
	for _, err := range []error{runErr, exportErr} {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, fmt.Errorf("%w: %w after %s", ErrMalformed, ErrEvalTimeout, timeout)
		}
	}
	if runErr != nil {
		return nil, fmt.Errorf("%w: js: %w", ErrMalformed, runErr)
	}
	if exportErr != nil {
		return nil, exportErr
	}

	m, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: module.exports must be an object, got %s", ErrMalformed, typeName(out))
	}
	return m, nil
}

func moduleRef(vm *goja.Runtime, name string) goja.Value {
	fn := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		ref := vm.NewObject()
		_ = ref.Set(pluginMarker, name)
		_ = ref.Set(keyOptions, call.Argument(0))
		return ref
	}).(*goja.Object)
	_ = fn.Set(pluginMarker, name)
	return fn
}

// exportJS converts a VM value into the normalized tree produced by the
// YAML and JSON decoders.
func exportJS(vm *goja.Runtime, v goja.Value, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d levels", ErrMalformed, maxDepth)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return normalize(v.Export(), depth)
	}

	if marker := obj.Get(pluginMarker); marker != nil && !goja.IsUndefined(marker) {
		ref := map[string]any{keyRequire: marker.String()}
		opts, err := exportJS(vm, obj.Get(keyOptions), depth+1)
		if err != nil {
			return nil, err
		}
		if opts != nil {
			ref[keyOptions] = opts
		}
		return ref, nil
	}

	if _, isFn := goja.AssertFunction(v); isFn {
		return FunctionMarker, nil
	}

	switch obj.ClassName() {
	case "Array":
		length := obj.Get("length").ToInteger()
		if length < 0 || length > maxArrayLen {
			return nil, fmt.Errorf("%w: array of %d elements exceeds %d", ErrMalformed, length, maxArrayLen)
		}
		n := int(length)
		out := make([]any, n)
		for i := 0; i < n; i++ {
			item, err := exportJS(vm, obj.Get(strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case "RegExp", "String", "Date":
		return obj.String(), nil
	case "Number":
		return obj.ToFloat(), nil
	}

	keys := obj.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		item, err := exportJS(vm, obj.Get(key), depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = item
	}
	return out, nil
}
