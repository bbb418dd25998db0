package schemabuilder

import (
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// SchemaDescription is the assembled output: the merged root types plus every
// object and input type of the batch. Mutation is nil when no class
// contributes a mutation field.
type SchemaDescription struct {
	Query    *graphql.Object
	Mutation *graphql.Object
	Types    []graphql.Type
}

// Config returns the graphql-go schema configuration for the description.
func (d *SchemaDescription) Config() graphql.SchemaConfig {
	return graphql.SchemaConfig{
		Query:    d.Query,
		Mutation: d.Mutation,
		Types:    d.Types,
	}
}

// Build assembles a graphql-go schema from classes and sources. With no
// arguments every registered class is used.
func (r *Registry) Build(classesOrSources ...interface{}) (*graphql.Schema, error) {
	desc, err := r.BuildDescription(classesOrSources...)
	if err != nil {
		return nil, err
	}
	if desc.Query == nil {
		return nil, newFieldError(ErrMissingType, "Query", "", "schema has no Query fields")
	}

	schema, err := graphql.NewSchema(desc.Config())
	if thunkErr := r.thunkError(); thunkErr != nil {
		return nil, thunkErr
	}
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}

	r.logger.Debug("schema built",
		zap.Int("types", len(desc.Types)),
		zap.Bool("mutation", desc.Mutation != nil),
	)
	return &schema, nil
}

// MustBuild is like Build but panics on error.
func (r *Registry) MustBuild(classesOrSources ...interface{}) *graphql.Schema {
	schema, err := r.Build(classesOrSources...)
	if err != nil {
		panic(err)
	}
	return schema
}

// BuildDescription runs validation, type building and root merging without
// handing the result to graphql-go.
func (r *Registry) BuildDescription(classesOrSources ...interface{}) (*SchemaDescription, error) {
	classes, err := r.collectClasses(classesOrSources)
	if err != nil {
		return nil, err
	}
	for _, c := range r.order {
		c.thunkErr = nil
	}

	if err := r.validateStaticBindings(classes); err != nil {
		return nil, err
	}

	desc := &SchemaDescription{}
	var objects []*Container
	for _, class := range classes {
		if c := r.Lookup(class, NamespaceObjectType); c != nil {
			typ, err := c.ensureType()
			if err != nil {
				return nil, err
			}
			objects = append(objects, c)
			desc.Types = append(desc.Types, typ)
		}
	}
	for _, c := range objects {
		if err := c.finalize(); err != nil {
			return nil, err
		}
	}

	if desc.Query, err = r.mergeRoot(NamespaceQuery, classes); err != nil {
		return nil, err
	}
	if desc.Mutation, err = r.mergeRoot(NamespaceMutation, classes); err != nil {
		return nil, err
	}
	return desc, nil
}

// collectClasses expands sources and deduplicates, keeping first-seen order.
func (r *Registry) collectClasses(inputs []interface{}) ([]reflect.Type, error) {
	if len(inputs) == 0 {
		return r.Classes(), nil
	}

	var classes []reflect.Type
	seen := make(map[reflect.Type]bool)
	add := func(typ reflect.Type) {
		if !seen[typ] {
			seen[typ] = true
			classes = append(classes, typ)
		}
	}

	for _, in := range inputs {
		if src, ok := in.(Source); ok {
			found, err := src.Classes(r)
			if err != nil {
				return nil, err
			}
			for _, typ := range found {
				add(typ)
			}
			continue
		}
		typ, ok := classOf(in)
		if !ok {
			return nil, newFieldError(ErrInvalidType, fmt.Sprintf("%T", in), "", "%T is not a valid class reference", in)
		}
		add(typ)
	}
	return classes, nil
}

// validateStaticBindings rejects instance-bound root fields declared on a
// class that is also an ObjectType.
func (r *Registry) validateStaticBindings(classes []reflect.Type) error {
	for _, class := range classes {
		obj := r.Lookup(class, NamespaceObjectType)
		if obj == nil {
			continue
		}
		var offending []string
		for _, ns := range []Namespace{NamespaceQuery, NamespaceMutation} {
			c := r.Lookup(class, ns)
			if c == nil {
				continue
			}
			for _, f := range c.fields {
				if !f.IsStatic() {
					offending = append(offending, f.name)
				}
			}
		}
		if len(offending) > 0 {
			return &StaticBindingError{Class: obj.displayName(), Fields: offending}
		}
	}
	return nil
}

type rootContribution struct {
	container *Container
	fields    graphql.Fields
}

// mergeRoot merges the ns fields of classes into one root object. It returns
// nil when no class contributes a field.
func (r *Registry) mergeRoot(ns Namespace, classes []reflect.Type) (*graphql.Object, error) {
	var roots []*Container
	for _, class := range classes {
		if c := r.Lookup(class, ns); c != nil {
			roots = append(roots, c)
		}
	}

	// Plugins run before any root is compiled so that a plugin may hand the
	// provider an instance of the class it contributes.
	plugged := make(map[reflect.Type]bool)
	for _, c := range roots {
		pluginClasses, err := c.resolvePlugins()
		if err != nil {
			return nil, err
		}
		for _, pc := range pluginClasses {
			if pc != c.class {
				plugged[pc] = true
			}
		}
	}

	var contributions []rootContribution
	for _, c := range roots {
		// Plugin classes are reached through the class that uses them.
		if plugged[c.class] {
			continue
		}
		fields, err := c.computeFields()
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, rootContribution{container: c, fields: fields})
	}

	merged := graphql.Fields{}
	owners := make(map[string]*Container)
	for _, contrib := range contributions {
		for name, f := range contrib.fields {
			if owner, ok := owners[name]; ok && owner != contrib.container {
				return nil, newFieldError(ErrDuplicateField, ns.String(), name, "Field with name %q already exists", name)
			}
			owners[name] = contrib.container
			merged[name] = f
		}
	}
	if len(merged) == 0 {
		return nil, nil
	}

	root := graphql.NewObject(graphql.ObjectConfig{
		Name:   ns.String(),
		Fields: merged,
	})
	if err := root.Error(); err != nil {
		return nil, newFieldError(ErrInvalidType, ns.String(), "", "%s is not a valid root type: %v", ns, err)
	}
	r.logger.Debug("root type merged",
		zap.Stringer("root", ns),
		zap.Int("contributors", len(contributions)),
		zap.Int("fields", len(merged)),
	)
	return root, nil
}

// thunkError reports a failure raised while graphql-go evaluated a lazy
// field map.
func (r *Registry) thunkError() error {
	for _, c := range r.order {
		if c.thunkErr != nil {
			return c.thunkErr
		}
	}
	return nil
}

// TypeFromObjectTypeClass builds the output object type of class.
func (r *Registry) TypeFromObjectTypeClass(class interface{}) (*graphql.Object, error) {
	c, err := r.builtType(class, KindObject)
	if err != nil {
		return nil, err
	}
	return c.objectType.(*graphql.Object), nil
}

// TypeFromInputTypeClass builds the input object type of class.
func (r *Registry) TypeFromInputTypeClass(class interface{}) (*graphql.InputObject, error) {
	c, err := r.builtType(class, KindInput)
	if err != nil {
		return nil, err
	}
	return c.objectType.(*graphql.InputObject), nil
}

func (r *Registry) builtType(class interface{}, kind TypeKind) (*Container, error) {
	c := r.Lookup(class, NamespaceObjectType)
	if c == nil || c.Kind() != kind {
		return nil, newFieldError(ErrInvalidType, describeRef(class), "", "%s is not a valid %s", describeRef(class), kind)
	}
	if _, err := c.ensureType(); err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// TypeFromClassWithQueries merges the Query fields of classes into a root
// object, or returns nil when none of them declares one.
func (r *Registry) TypeFromClassWithQueries(classes ...interface{}) (*graphql.Object, error) {
	return r.typeFromRoots(NamespaceQuery, classes)
}

// TypeFromClassWithMutations merges the Mutation fields of classes into a
// root object, or returns nil when none of them declares one.
func (r *Registry) TypeFromClassWithMutations(classes ...interface{}) (*graphql.Object, error) {
	return r.typeFromRoots(NamespaceMutation, classes)
}

func (r *Registry) typeFromRoots(ns Namespace, inputs []interface{}) (*graphql.Object, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	classes, err := r.collectClasses(inputs)
	if err != nil {
		return nil, err
	}
	return r.mergeRoot(ns, classes)
}

// ObjectType registers class as an object type on the default registry.
func ObjectType(class interface{}, opts ...TypeOption) *Object {
	return Default().ObjectType(class, opts...)
}

// InputType registers class as an input type on the default registry.
func InputType(class interface{}, opts ...TypeOption) *Object {
	return Default().InputType(class, opts...)
}

// Query returns the Query builder of class on the default registry.
func Query(class interface{}) *Root {
	return Default().Query(class)
}

// Mutation returns the Mutation builder of class on the default registry.
func Mutation(class interface{}) *Root {
	return Default().Mutation(class)
}

// Build assembles a schema from the default registry.
func Build(classesOrSources ...interface{}) (*graphql.Schema, error) {
	return Default().Build(classesOrSources...)
}
