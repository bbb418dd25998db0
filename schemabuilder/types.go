package schemabuilder

import (
	"reflect"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
)

// TypeOption configures the container behind an Object.
type TypeOption func(*Container)

// TypeName overrides the schema type name, which defaults to the Go type name.
func TypeName(name string) TypeOption {
	return func(c *Container) { c.SetName(name) }
}

// TypeDesc sets the schema type description.
func TypeDesc(desc string) TypeOption {
	return func(c *Container) { c.SetDescription(desc) }
}

// Object registers the fields of an ObjectType or InputType class.
//
//	r.ObjectType(Cow{}, TypeDesc("A cow")).
//		Field("name", schemabuilder.String).
//		Field("friends", schemabuilder.List(Cow{})).
//		FieldFunc("loud", schemabuilder.String, func(src interface{}) string { ... })
//
// Registration methods panic with a *FieldError on invalid declarations.
type Object struct {
	c *Container
}

// ObjectType marks class as an output object type.
func (r *Registry) ObjectType(class interface{}, opts ...TypeOption) *Object {
	return r.object(class, KindObject, opts)
}

// InputType marks class as an input object type.
func (r *Registry) InputType(class interface{}, opts ...TypeOption) *Object {
	return r.object(class, KindInput, opts)
}

func (r *Registry) object(class interface{}, kind TypeKind, opts []TypeOption) *Object {
	c := r.mustGetOrCreate(class, NamespaceObjectType)
	c.SetKind(kind)
	if c.Name() == "" {
		c.SetName(c.Class().Name())
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Object{c: c}
}

// Container returns the metadata container behind the builder.
func (o *Object) Container() *Container { return o.c }

// Field exposes a field resolved from the source value: by the Property
// option when given, otherwise by graphql-go's default resolver.
func (o *Object) Field(name string, typ interface{}, opts ...FieldOption) *Object {
	o.add(NewField(name, typ, opts...))
	return o
}

// FieldFunc exposes a computed field on an ObjectType. fn is a free
// function; its parameters are filled by ArgParam and ContextParam bindings
// and then by the source value, the argument map, the context and the
// resolve info, in that order. For example:
//
//	obj.FieldFunc("fullName", schemabuilder.String, func(u *User) string {
//		return u.FirstName + " " + u.LastName
//	})
func (o *Object) FieldFunc(name string, typ interface{}, fn interface{}, opts ...FieldOption) *Object {
	if o.c.Kind() == KindInput {
		panic(newFieldError(ErrInvalidResolver, o.c.displayName(), name, "InputType %s cannot have computed field %q", o.c.displayName(), name))
	}
	o.add(NewFuncField(name, typ, fn, opts...))
	return o
}

// Extends inherits the fields of parent, which must be registered as an
// ObjectType by the time the schema is built.
func (o *Object) Extends(parent interface{}) *Object {
	if err := o.c.Extend(parent); err != nil {
		panic(err)
	}
	return o
}

// FromStruct registers every exported struct field not registered yet. Names,
// descriptions and deprecations come from the graphql tag (or json tag):
//
//	Color string `graphql:"color,description=Hide color,deprecated=Use paint"`
//
// Go kinds map to the built-in scalars, slices to List and named structs to
// forward class references. Fields whose type cannot be derived are skipped.
func (o *Object) FromStruct() *Object {
	class := o.c.Class()
	if class.Kind() != reflect.Struct {
		panic(newFieldError(ErrInvalidType, o.c.displayName(), "", "%s is not a struct", class))
	}

	for i := 0; i < class.NumField(); i++ {
		sf := class.Field(i)
		info := parseGraphQLFieldInfo(sf)
		if info.Skipped || o.c.HasField(info.Name) {
			continue
		}
		ref, ok := typeRefForGo(sf.Type)
		if !ok {
			o.c.registry.logger.Debug("struct field skipped",
				zap.String("type", o.c.displayName()),
				zap.String("field", sf.Name),
				zap.Stringer("goType", sf.Type),
			)
			continue
		}
		if info.NonNull {
			ref = NonNull(ref)
		}

		opts := []FieldOption{Property(sf.Name)}
		if info.Description != "" {
			opts = append(opts, FieldDesc(info.Description))
		}
		if info.DeprecationReason != "" {
			opts = append(opts, Deprecated(info.DeprecationReason))
		}
		o.add(NewField(info.Name, ref, opts...))
	}
	return o
}

func (o *Object) add(f *Field) {
	if err := o.c.AddField(f); err != nil {
		panic(err)
	}
}

// Root registers the Query or Mutation fields contributed by a class.
type Root struct {
	c *Container
}

// Query returns the builder for the Query fields of class.
func (r *Registry) Query(class interface{}) *Root {
	return &Root{c: r.mustGetOrCreate(class, NamespaceQuery)}
}

// Mutation returns the builder for the Mutation fields of class.
func (r *Registry) Mutation(class interface{}) *Root {
	return &Root{c: r.mustGetOrCreate(class, NamespaceMutation)}
}

// Container returns the metadata container behind the builder.
func (q *Root) Container() *Container { return q.c }

// Method exposes method of the class instance. The schema name defaults to
// the lower camel case method name and can be changed with FieldName.
func (q *Root) Method(method string, typ interface{}, opts ...FieldOption) *Root {
	q.add(NewMethodField(strcase.ToLowerCamel(method), typ, method, opts...))
	return q
}

// Func exposes a free function that does not need the class instance.
func (q *Root) Func(name string, typ interface{}, fn interface{}, opts ...FieldOption) *Root {
	q.add(NewFuncField(name, typ, fn, opts...))
	return q
}

// Use attaches a plugin contributing fields from another class.
func (q *Root) Use(p Plugin) *Root {
	q.c.Use(p)
	return q
}

// Constructor registers how the provider creates the class instance.
func (q *Root) Constructor(fn interface{}, args ...interface{}) *Root {
	if err := q.c.registry.provider.SetConstructor(q.c.Class(), fn, args...); err != nil {
		panic(err)
	}
	return q
}

// Instance hands the provider a ready instance of the class.
func (q *Root) Instance(inst interface{}) *Root {
	if err := q.c.registry.provider.SetInstance(q.c.Class(), inst); err != nil {
		panic(err)
	}
	return q
}

func (q *Root) add(f *Field) {
	if err := q.c.AddField(f); err != nil {
		panic(err)
	}
}
