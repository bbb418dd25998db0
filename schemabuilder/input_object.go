package schemabuilder

import (
	"context"
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
)

type deserializeOptions struct {
	parseValues   bool
	scalarParsers map[*graphql.Scalar]func(interface{}) interface{}
}

// DeserializeOption configures Deserialize.
type DeserializeOption func(*deserializeOptions)

// ParseValues controls whether scalar values go through the scalar's
// ParseValue. It is on by default.
func ParseValues(enabled bool) DeserializeOption {
	return func(o *deserializeOptions) { o.parseValues = enabled }
}

// ScalarParser overrides how values of one scalar are parsed.
func ScalarParser(scalar *graphql.Scalar, fn func(interface{}) interface{}) DeserializeOption {
	return func(o *deserializeOptions) {
		if o.scalarParsers == nil {
			o.scalarParsers = make(map[*graphql.Scalar]func(interface{}) interface{})
		}
		o.scalarParsers[scalar] = fn
	}
}

// Deserialize turns plain data (as decoded from JSON or handed over by
// graphql-go as argument values) into instances of registered classes,
// following the field metadata of ref. Lists become []interface{}, registered
// classes become pointers to freshly allocated values, and data for
// unregistered references is returned untouched.
func (r *Registry) Deserialize(ref interface{}, data interface{}, opts ...DeserializeOption) (interface{}, error) {
	o := &deserializeOptions{parseValues: true}
	for _, opt := range opts {
		opt(o)
	}
	return r.deserialize(ref, data, o)
}

func (r *Registry) deserialize(ref interface{}, data interface{}, o *deserializeOptions) (interface{}, error) {
	if data == nil {
		return nil, nil
	}

	switch t := ref.(type) {
	case *WrappedType:
		if t.Kind == WrapNonNull {
			return r.deserialize(t.OfType, data, o)
		}
		rv := reflect.ValueOf(data)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected a list for %s but received %T", t, data)
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			v, err := r.deserialize(t.OfType, rv.Index(i).Interface(), o)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil

	case *graphql.Scalar:
		if fn, ok := o.scalarParsers[t]; ok {
			return fn(data), nil
		}
		if o.parseValues {
			return t.ParseValue(data), nil
		}
		return data, nil

	case graphql.Type:
		return data, nil
	}

	c := r.Lookup(ref, NamespaceObjectType)
	if c == nil || c.class.Kind() != reflect.Struct {
		return data, nil
	}
	values, ok := data.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object for %s but received %T", c.displayName(), data)
	}

	ptr := reflect.New(c.class)
	dest := ptr.Elem()
	for _, f := range c.effectiveFields() {
		raw, ok := values[f.name]
		if !ok {
			continue
		}
		v, err := r.deserialize(f.typeRef, raw, o)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		fv := structField(dest, f.PropertyName())
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		cv, err := r.coerce(v, fv.Type())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		fv.Set(cv)
	}
	return ptr.Interface(), nil
}

// coerce converts v into a value assignable to typ.
func (r *Registry) coerce(v interface{}, typ reflect.Type) (reflect.Value, error) {
	if v == nil {
		if typ == contextType {
			return reflect.ValueOf(context.Background()), nil
		}
		return reflect.Zero(typ), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return rv, nil
	}

	switch typ.Kind() {
	case reflect.Ptr:
		if rv.Kind() == reflect.Ptr && rv.Type().Elem() == typ.Elem() {
			return rv, nil
		}
		inner, err := r.coerce(v, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil

	case reflect.Slice:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			break
		}
		out := reflect.MakeSlice(typ, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := r.coerce(rv.Index(i).Interface(), typ.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Map:
		// An unselected Context binding on a map parameter receives the values
		// attached with WithContextValues.
		if ctx, ok := v.(context.Context); ok {
			values := ContextValues(ctx)
			if values == nil {
				return reflect.Zero(typ), nil
			}
			return r.coerce(values, typ)
		}
		m, ok := v.(map[string]interface{})
		if !ok || typ.Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(typ, len(m))
		for k, e := range m {
			ev, err := r.coerce(e, typ.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(typ.Key()), ev)
		}
		return out, nil

	case reflect.Struct:
		if rv.Kind() == reflect.Ptr && rv.Type().Elem() == typ {
			if rv.IsNil() {
				return reflect.Zero(typ), nil
			}
			return rv.Elem(), nil
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			break
		}
		if c := r.Lookup(typ, NamespaceObjectType); c != nil {
			out, err := r.Deserialize(typ, m)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(out).Elem(), nil
		}
		return r.decodeStruct(m, typ)
	}

	if convertible(rv.Type(), typ) {
		return rv.Convert(typ), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, typ)
}

// decodeStruct fills an unregistered struct by matching keys to exported
// field names, case-insensitively.
func (r *Registry) decodeStruct(m map[string]interface{}, typ reflect.Type) (reflect.Value, error) {
	out := reflect.New(typ).Elem()
	for k, e := range m {
		fv := structField(out, k)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		ev, err := r.coerce(e, fv.Type())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s: %w", k, err)
		}
		fv.Set(ev)
	}
	return out, nil
}

// convertible limits reflect conversions to same-family kinds, so an int
// never silently becomes a one-rune string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	switch {
	case isNumber(from.Kind()) && isNumber(to.Kind()):
		return true
	case from.Kind() == reflect.String && to.Kind() == reflect.String:
		return true
	case from.Kind() == reflect.Bool && to.Kind() == reflect.Bool:
		return true
	}
	return false
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
