package modplug

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/afero"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/lazyview"
)

// Resolver returns the deferred half of a definition: a function that
// interprets the module source and extracts its render function. Nothing is
// read or interpreted until the ResolveFunc runs, typically from a
// lazyview.ViewLoader the first time the widget scrolls into view.
func (def Definition) Resolver(fsys afero.Fs, dir string) lazyview.ResolveFunc {
	normalized := def.Normalized()
	path := filepath.Join(dir, normalized.Source)
	return func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Interpret(fsys, path, normalized.Symbol)
	}
}

// Interpret evaluates one module source file and returns the render
// function it exports under symbol. When symbol is DefaultSymbol and
// missing, the bundler-style spelling "Default" is accepted too; a symbol
// named explicitly by a manifest must exist.
func Interpret(fsys afero.Fs, path, symbol string) (lazyview.View, error) {
	code, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("modplug: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("modplug: %s is empty", path)
	}

	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.Eval(string(code)); err != nil {
		return nil, fmt.Errorf("modplug: interpret %s: %w", path, err)
	}
	pkg := packageName(code)
	value, err := evalSymbol(i, pkg, symbol)
	if err != nil && symbol == DefaultSymbol {
		value, err = evalSymbol(i, pkg, "Default")
	}
	if err != nil {
		return nil, fmt.Errorf("modplug: %s must export %s(width int) string: %w", path, symbol, err)
	}
	view, err := viewFromValue(value)
	if err != nil {
		return nil, fmt.Errorf("modplug: %s: %s: %w", path, symbol, err)
	}
	return view, nil
}

// evalSymbol resolves symbol in the evaluated source's scope. The
// interpreter exposes package main symbols by bare name and everything
// else package-qualified.
func evalSymbol(i *interp.Interpreter, pkg, symbol string) (reflect.Value, error) {
	if pkg != "" && pkg != "main" {
		if v, err := i.Eval(pkg + "." + symbol); err == nil {
			return v, nil
		}
	}
	return i.Eval(symbol)
}

// packageName reads the package clause. Sources that do not parse were
// already rejected by the interpreter.
func packageName(code []byte) string {
	f, err := parser.ParseFile(token.NewFileSet(), "", code, parser.PackageClauseOnly)
	if err != nil || f.Name == nil {
		return ""
	}
	return f.Name.Name
}

// viewFromValue converts an interpreted symbol into a render function. A
// direct assertion covers the common case; the reflect path keeps modules
// working when the interpreter hands back a differently named but
// compatible function type.
func viewFromValue(value reflect.Value) (lazyview.View, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("symbol is missing")
	}
	if fn, ok := value.Interface().(func(width int) string); ok {
		return lazyview.View(fn), nil
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("symbol is %s, not a function", value.Kind())
	}
	t := value.Type()
	if t.NumIn() != 1 || t.In(0).Kind() != reflect.Int {
		return nil, fmt.Errorf("render function must take a single int width")
	}
	if t.NumOut() != 1 || t.Out(0).Kind() != reflect.String {
		return nil, fmt.Errorf("render function must return a single string")
	}
	return func(width int) string {
		out := value.Call([]reflect.Value{reflect.ValueOf(width)})
		return out[0].String()
	}, nil
}
