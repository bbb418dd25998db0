package schemabuilder

import (
	"reflect"
	"sort"

	"github.com/graphql-go/graphql"
)

// BindingKind states how a field's resolver is dispatched.
type BindingKind int

const (
	// BindNone leaves the field to graphql-go's default property resolution.
	BindNone BindingKind = iota
	// BindInstance dispatches to a named method of the class instance.
	BindInstance
	// BindStatic dispatches to a free function.
	BindStatic
)

type argSpec struct {
	name         string
	typeRef      interface{}
	defaultValue interface{}
	description  string
}

// Field is the metadata for one schema field.
type Field struct {
	name        string
	typeRef     interface{}
	description string
	deprecation string
	property    string

	binding BindingKind
	method  string
	fn      interface{}

	params []ParamBinding
	args   []argSpec

	owner *Container
}

// FieldOption configures a Field at registration time.
type FieldOption func(*Field)

// FieldName overrides the schema field name.
func FieldName(name string) FieldOption {
	return func(f *Field) { f.name = name }
}

// FieldDesc sets the field description.
func FieldDesc(desc string) FieldOption {
	return func(f *Field) { f.description = desc }
}

// Deprecated marks the field as deprecated with the given reason.
func Deprecated(reason string) FieldOption {
	return func(f *Field) { f.deprecation = reason }
}

// Property names the Go struct field backing the schema field. It is used by
// property resolution and by Deserialize.
func Property(name string) FieldOption {
	return func(f *Field) { f.property = name }
}

// Argument declares a schema argument explicitly.
func Argument(name string, typ interface{}) FieldOption {
	return func(f *Field) {
		f.args = append(f.args, argSpec{name: name, typeRef: typ})
	}
}

// ArgumentWithDefault declares a schema argument with a default value.
func ArgumentWithDefault(name string, typ interface{}, def interface{}) FieldOption {
	return func(f *Field) {
		f.args = append(f.args, argSpec{name: name, typeRef: typ, defaultValue: def})
	}
}

// ArgParam binds resolver parameter index to the query arguments. With a
// selector the parameter receives args[selector] (dotted paths descend into
// nested objects); without one it receives the whole argument map and typ
// must be nil. typ declares the schema argument named by selector.
func ArgParam(index int, selector string, typ interface{}) FieldOption {
	return func(f *Field) {
		f.params = append(f.params, ParamBinding{Index: index, Kind: ParamArg, Selector: selector, Type: typ})
	}
}

// ContextParam binds resolver parameter index to the request context, or to
// one context value when selector is set.
func ContextParam(index int, selector string) FieldOption {
	return func(f *Field) {
		f.params = append(f.params, ParamBinding{Index: index, Kind: ParamContext, Selector: selector})
	}
}

// NewField returns a field with no resolver binding.
func NewField(name string, typ interface{}, opts ...FieldOption) *Field {
	f := &Field{name: name, typeRef: typ}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewMethodField returns a field resolved by calling method on the instance
// of its owning class.
func NewMethodField(name string, typ interface{}, method string, opts ...FieldOption) *Field {
	f := NewField(name, typ, opts...)
	f.binding = BindInstance
	f.method = method
	return f
}

// NewFuncField returns a field resolved by calling fn.
func NewFuncField(name string, typ interface{}, fn interface{}, opts ...FieldOption) *Field {
	f := NewField(name, typ, opts...)
	f.binding = BindStatic
	f.fn = fn
	return f
}

func (f *Field) Name() string              { return f.name }
func (f *Field) TypeRef() interface{}      { return f.typeRef }
func (f *Field) Description() string       { return f.description }
func (f *Field) Binding() BindingKind      { return f.binding }
func (f *Field) MethodName() string        { return f.method }
func (f *Field) Params() []ParamBinding    { return append([]ParamBinding(nil), f.params...) }
func (f *Field) IsStatic() bool            { return f.binding == BindStatic }
func (f *Field) DeprecationReason() string { return f.deprecation }

// PropertyName returns the Go struct field backing the schema field.
func (f *Field) PropertyName() string {
	if f.property != "" {
		return f.property
	}
	return goFieldName(f.name)
}

func (f *Field) registry() *Registry {
	return f.owner.registry
}

func (f *Field) ownerName() string {
	if f.owner == nil {
		return ""
	}
	return f.owner.displayName()
}

// computeType resolves the declared type reference.
func (f *Field) computeType() (graphql.Type, error) {
	return resolveType(f.registry(), f.typeRef, f.name)
}

// computeArgs derives the schema argument map from explicit arguments and
// typed argument bindings. A nil map means the field takes no arguments.
func (f *Field) computeArgs() (graphql.FieldConfigArgument, error) {
	if err := validateParamOrder(f); err != nil {
		return nil, err
	}

	specs := append([]argSpec(nil), f.args...)
	declared := make(map[string]bool, len(specs))
	for _, s := range specs {
		declared[s.name] = true
	}

	bound := make([]ParamBinding, 0, len(f.params))
	for _, p := range f.params {
		if p.Kind == ParamArg {
			bound = append(bound, p)
		}
	}
	sort.Slice(bound, func(i, j int) bool { return bound[i].Index < bound[j].Index })
	for _, p := range bound {
		if p.Selector == "" {
			if p.Type != nil {
				return nil, newFieldError(ErrInvalidType, f.ownerName(), f.name, "parameter %d of %q receives the whole argument map and cannot declare a type", p.Index, f.name)
			}
			continue
		}
		root := selectorRoot(p.Selector)
		if p.Type == nil {
			if !declared[root] {
				return nil, newFieldError(ErrMissingType, f.ownerName(), f.name, "argument %q of %q is missing a type", root, f.name)
			}
			continue
		}
		if declared[root] {
			return nil, newFieldError(ErrDuplicateField, f.ownerName(), f.name, "argument %q of %q is declared twice", root, f.name)
		}
		declared[root] = true
		specs = append(specs, argSpec{name: root, typeRef: p.Type})
	}

	if len(specs) == 0 {
		return nil, nil
	}

	args := graphql.FieldConfigArgument{}
	for _, s := range specs {
		typ, err := resolveType(f.registry(), s.typeRef, s.name)
		if err != nil {
			return nil, err
		}
		if !isInputType(typ) {
			return nil, newFieldError(ErrInvalidType, f.ownerName(), f.name, "%s is not a valid input type for argument %q of %q", typ, s.name, f.name)
		}
		args[s.name] = &graphql.ArgumentConfig{
			Type:         typ,
			DefaultValue: s.defaultValue,
			Description:  s.description,
		}
	}
	return args, nil
}

// compileOutput produces the graphql-go field definition.
func (f *Field) compileOutput() (*graphql.Field, error) {
	typ, err := f.computeType()
	if err != nil {
		return nil, err
	}
	if !isOutputType(typ) {
		return nil, newFieldError(ErrInvalidType, f.ownerName(), f.name, "%s is not a valid output type for field %q", typ, f.name)
	}

	args, err := f.computeArgs()
	if err != nil {
		return nil, err
	}

	resolve, err := f.buildResolver()
	if err != nil {
		return nil, err
	}

	out := &graphql.Field{
		Name:              f.name,
		Type:              typ,
		Description:       f.description,
		DeprecationReason: f.deprecation,
	}
	if args != nil {
		out.Args = args
	}
	if resolve != nil {
		out.Resolve = resolve
	}
	return out, nil
}

// buildResolver returns nil for plain property fields; otherwise it returns a
// resolver that remaps graphql-go's call into the bound function's signature.
func (f *Field) buildResolver() (graphql.FieldResolveFn, error) {
	switch f.binding {
	case BindNone:
		if len(f.params) > 0 {
			return nil, newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "field %q binds parameters but has no resolver", f.name)
		}
		if f.property != "" && f.owner.IsObjectType() {
			return propertyResolver(f.property), nil
		}
		return nil, nil

	case BindStatic:
		fn := reflect.ValueOf(f.fn)
		if err := f.checkCallable(fn); err != nil {
			return nil, err
		}
		return f.dispatch(fn), nil

	case BindInstance:
		inst, err := f.owner.Instance()
		if err != nil {
			return nil, err
		}
		method := reflect.ValueOf(inst).MethodByName(f.method)
		if !method.IsValid() {
			return nil, newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "%T has no method %q for field %q", inst, f.method, f.name)
		}
		if err := f.checkCallable(method); err != nil {
			return nil, err
		}
		return f.dispatch(method), nil
	}
	return nil, newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "unknown binding %d for field %q", f.binding, f.name)
}

func (f *Field) checkCallable(fn reflect.Value) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "resolver for %q is not a function", f.name)
	}
	typ := fn.Type()
	if typ.IsVariadic() {
		return newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "resolver for %q must not be variadic", f.name)
	}
	for _, p := range f.params {
		if p.Index < 0 || p.Index >= typ.NumIn() {
			return newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "parameter %d of %q is out of range for %s", p.Index, f.name, typ)
		}
	}
	if typ.NumOut() > 2 {
		return newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "resolver for %q returns more than two values", f.name)
	}
	if typ.NumOut() == 2 && typ.Out(1) != errType {
		return newFieldError(ErrInvalidResolver, f.ownerName(), f.name, "second result of resolver for %q must be an error", f.name)
	}
	return nil
}

func (f *Field) dispatch(fn reflect.Value) graphql.FieldResolveFn {
	params := f.Params()
	r := f.registry()
	return func(p graphql.ResolveParams) (interface{}, error) {
		return call(r, fn, remapArgs(params, p))
	}
}

func propertyResolver(property string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return lookupPath(p.Source, []string{property}), nil
	}
}
