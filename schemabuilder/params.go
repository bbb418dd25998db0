package schemabuilder

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"
)

// ParamKind is the source a resolver parameter is bound to.
type ParamKind int

const (
	ParamArg ParamKind = iota
	ParamContext
)

func (k ParamKind) String() string {
	if k == ParamContext {
		return "Context"
	}
	return "Arg"
}

// ParamBinding binds one resolver parameter, by zero-based position, to the
// query arguments or to the request context.
type ParamBinding struct {
	Index    int
	Kind     ParamKind
	Selector string
	Type     interface{}
}

// ContextKey is the key type used for context values looked up by selector
// when no value map was attached with WithContextValues.
type ContextKey string

type contextValuesKey struct{}

// WithContextValues attaches values that Context parameter selectors resolve
// against.
func WithContextValues(ctx context.Context, values map[string]interface{}) context.Context {
	return context.WithValue(ctx, contextValuesKey{}, values)
}

// ContextValues returns the values attached with WithContextValues.
func ContextValues(ctx context.Context) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(contextValuesKey{}).(map[string]interface{})
	return v
}

// validateParamOrder checks that Arg bindings occupy the leading positions:
// an Arg bound after a Context binding or after an unbound parameter is an
// error, as is binding one position twice.
func validateParamOrder(f *Field) error {
	if len(f.params) == 0 {
		return nil
	}

	byIndex := make(map[int]ParamBinding, len(f.params))
	for _, p := range f.params {
		if _, ok := byIndex[p.Index]; ok {
			return newFieldError(ErrArgumentOrdering, f.ownerName(), f.name, "parameter %d of %q is bound twice", p.Index, f.name)
		}
		if p.Index < 0 {
			return newFieldError(ErrArgumentOrdering, f.ownerName(), f.name, "parameter index %d of %q is negative", p.Index, f.name)
		}
		byIndex[p.Index] = p
	}

	lastArg := -1
	for _, p := range f.params {
		if p.Kind == ParamArg && p.Index > lastArg {
			lastArg = p.Index
		}
	}
	for i := 0; i < lastArg; i++ {
		if p, ok := byIndex[i]; !ok || p.Kind != ParamArg {
			return newFieldError(ErrArgumentOrdering, f.ownerName(), f.name, "Arg must be declared before any other parameter in %q", f.name)
		}
	}
	return nil
}

// remapArgs translates graphql-go's resolver call into positional values.
// Bound positions receive the selected argument or context value; positions
// between bindings stay nil; the native source, args, context and info follow
// the last bound position.
func remapArgs(params []ParamBinding, p graphql.ResolveParams) []interface{} {
	size := 0
	for _, b := range params {
		if b.Index+1 > size {
			size = b.Index + 1
		}
	}

	values := make([]interface{}, size, size+4)
	for _, b := range params {
		switch b.Kind {
		case ParamArg:
			if b.Selector == "" {
				values[b.Index] = p.Args
			} else {
				values[b.Index] = lookupPath(p.Args, splitSelector(b.Selector))
			}
		case ParamContext:
			values[b.Index] = contextValue(p.Context, b.Selector)
		}
	}
	return append(values, p.Source, p.Args, p.Context, p.Info)
}

func contextValue(ctx context.Context, selector string) interface{} {
	if selector == "" {
		return ctx
	}
	path := splitSelector(selector)
	if values := ContextValues(ctx); values != nil {
		return lookupPath(values, path)
	}
	if ctx == nil {
		return nil
	}
	return lookupPath(ctx.Value(ContextKey(path[0])), path[1:])
}

func splitSelector(selector string) []string {
	return strings.Split(selector, ".")
}

func selectorRoot(selector string) string {
	return splitSelector(selector)[0]
}

// lookupPath descends into maps, structs and pointers following path. Missing
// segments yield nil.
func lookupPath(v interface{}, path []string) interface{} {
	for _, seg := range path {
		if v == nil {
			return nil
		}
		if m, ok := v.(map[string]interface{}); ok {
			v = m[seg]
			continue
		}

		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil
			}
			rv = rv.Elem()
		}
		switch rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return nil
			}
			mv := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
			if !mv.IsValid() {
				return nil
			}
			v = mv.Interface()
		case reflect.Struct:
			fv := structField(rv, seg)
			if !fv.IsValid() || !fv.CanInterface() {
				return nil
			}
			v = fv.Interface()
		default:
			return nil
		}
	}
	return v
}

func structField(rv reflect.Value, name string) reflect.Value {
	if fv := rv.FieldByName(name); fv.IsValid() {
		return fv
	}
	if fv := rv.FieldByName(goFieldName(name)); fv.IsValid() {
		return fv
	}
	return rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
}

// call invokes fn with values coerced to its parameter types. Values past the
// function's arity are dropped and missing ones are zero.
func call(r *Registry, fn reflect.Value, values []interface{}) (interface{}, error) {
	typ := fn.Type()
	in := make([]reflect.Value, typ.NumIn())
	for i := range in {
		var v interface{}
		if i < len(values) {
			v = values[i]
		}
		arg, err := r.coerce(v, typ.In(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		in[i] = arg
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if typ.Out(0) == errType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		return out[0].Interface(), asError(out[1])
	}
}

func asError(v reflect.Value) error {
	if !v.IsValid() || v.IsNil() {
		return nil
	}
	err, _ := v.Interface().(error)
	return err
}
