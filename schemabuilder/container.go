package schemabuilder

import (
	"reflect"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// TypeKind is the schema type a container compiles to.
type TypeKind int

const (
	KindObject TypeKind = iota
	KindInput
)

func (k TypeKind) String() string {
	if k == KindInput {
		return "InputType"
	}
	return "ObjectType"
}

// Plugin receives the instance backing a Query or Mutation class and returns
// another class whose container, in the same namespace, contributes fields.
type Plugin func(instance interface{}) (interface{}, error)

// Container is the metadata record accumulated for one (class, namespace) pair.
type Container struct {
	registry  *Registry
	class     reflect.Type
	namespace Namespace

	name        string
	description string
	kind        TypeKind

	fields []*Field
	byName map[string]*Field

	parents []reflect.Type
	plugins []Plugin
	// pluginClasses caches plugin results so each plugin runs once.
	pluginClasses []reflect.Type

	objectType   graphql.Type
	outputFields graphql.Fields
	inputFields  graphql.InputObjectConfigFieldMap
	thunkErr     error

	instance interface{}
}

func newContainer(r *Registry, class reflect.Type, ns Namespace) *Container {
	return &Container{
		registry:  r,
		class:     class,
		namespace: ns,
		byName:    make(map[string]*Field),
	}
}

// Class returns the class the container describes.
func (c *Container) Class() reflect.Type { return c.class }

// Namespace returns the container namespace.
func (c *Container) Namespace() Namespace { return c.namespace }

// Name returns the schema type name, empty until a naming registration runs.
func (c *Container) Name() string { return c.name }

// SetName sets the schema type name.
func (c *Container) SetName(name string) { c.name = name }

// Description returns the schema type description.
func (c *Container) Description() string { return c.description }

// SetDescription sets the schema type description.
func (c *Container) SetDescription(desc string) { c.description = desc }

// Kind returns whether the container compiles to an object or input type.
func (c *Container) Kind() TypeKind { return c.kind }

// SetKind sets the type kind.
func (c *Container) SetKind(kind TypeKind) { c.kind = kind }

func (c *Container) IsQuery() bool           { return c.namespace == NamespaceQuery }
func (c *Container) IsMutation() bool        { return c.namespace == NamespaceMutation }
func (c *Container) IsObjectType() bool      { return c.namespace == NamespaceObjectType }
func (c *Container) IsQueryOrMutation() bool { return c.IsQuery() || c.IsMutation() }

// AddField registers f. Field names are unique within a container.
func (c *Container) AddField(f *Field) error {
	if f.typeRef == nil {
		return newFieldError(ErrMissingType, c.displayName(), f.name, "%s %q is missing a type", c.namespace, f.name)
	}
	if _, ok := c.byName[f.name]; ok {
		return newFieldError(ErrDuplicateField, c.displayName(), f.name, "Duplicate field %q", f.name)
	}
	f.owner = c
	c.fields = append(c.fields, f)
	c.byName[f.name] = f
	return nil
}

// Field returns the field registered under name, or nil.
func (c *Container) Field(name string) *Field { return c.byName[name] }

// HasField reports whether name is registered.
func (c *Container) HasField(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Fields returns the fields registered directly on the container, in
// registration order.
func (c *Container) Fields() []*Field {
	out := make([]*Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// ObjectType returns the finalised schema type, or nil before it is built.
func (c *Container) ObjectType() graphql.Type { return c.objectType }

// Extend records parent as a class whose ObjectType fields are inherited.
func (c *Container) Extend(parent interface{}) error {
	typ, ok := classOf(parent)
	if !ok {
		return newFieldError(ErrInvalidType, c.displayName(), "", "%T is not a valid parent for %s", parent, c.displayName())
	}
	c.parents = append(c.parents, typ)
	return nil
}

// Use attaches a plugin.
func (c *Container) Use(p Plugin) {
	c.plugins = append(c.plugins, p)
}

// Instance returns the object backing instance-bound resolvers, asking the
// registry provider on first use.
func (c *Container) Instance() (interface{}, error) {
	if c.instance == nil {
		inst, err := c.registry.provider.Resolve(c.class)
		if err != nil {
			return nil, err
		}
		c.instance = inst
	}
	return c.instance, nil
}

func (c *Container) displayName() string {
	if c.name != "" {
		return c.name
	}
	return c.class.Name()
}

// parentContainers returns the ObjectType containers this one inherits from:
// explicit parents first, then anonymously embedded registered structs.
func (c *Container) parentContainers() []*Container {
	var parents []*Container
	seen := make(map[reflect.Type]bool)
	add := func(typ reflect.Type) {
		if seen[typ] || typ == c.class {
			return
		}
		seen[typ] = true
		if p := c.registry.Lookup(typ, NamespaceObjectType); p != nil {
			parents = append(parents, p)
		}
	}

	for _, p := range c.parents {
		add(p)
	}
	if c.class.Kind() == reflect.Struct {
		for i := 0; i < c.class.NumField(); i++ {
			sf := c.class.Field(i)
			if !sf.Anonymous {
				continue
			}
			typ := sf.Type
			for typ.Kind() == reflect.Ptr {
				typ = typ.Elem()
			}
			add(typ)
		}
	}
	return parents
}

// effectiveFields returns inherited fields followed by own fields; an own
// field shadows an inherited one of the same name.
func (c *Container) effectiveFields() []*Field {
	return c.collectFields(make(map[*Container]bool))
}

func (c *Container) collectFields(visiting map[*Container]bool) []*Field {
	if visiting[c] {
		return nil
	}
	visiting[c] = true
	defer delete(visiting, c)

	var names []string
	byName := make(map[string]*Field)
	put := func(f *Field) {
		if _, ok := byName[f.name]; !ok {
			names = append(names, f.name)
		}
		byName[f.name] = f
	}

	if c.IsObjectType() {
		for _, p := range c.parentContainers() {
			for _, f := range p.collectFields(visiting) {
				put(f)
			}
		}
	}
	for _, f := range c.fields {
		put(f)
	}

	out := make([]*Field, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out
}

// ensureType registers the schema type placeholder for an ObjectType
// container. Fields are filled in through a thunk, so the placeholder can be
// referenced (including by the container's own fields) before they exist.
func (c *Container) ensureType() (graphql.Type, error) {
	if c.objectType != nil {
		return c.objectType, nil
	}
	if !c.IsObjectType() {
		return nil, newFieldError(ErrInvalidType, c.displayName(), "", "%s metadata of %q cannot be built as a type", c.namespace, c.class.Name())
	}
	if c.name == "" {
		return nil, newFieldError(ErrInvalidType, c.class.Name(), "", "%q is not a valid ObjectType", c.class.Name())
	}

	var typ graphql.Type
	switch c.kind {
	case KindInput:
		typ = graphql.NewInputObject(graphql.InputObjectConfig{
			Name:        c.name,
			Description: c.description,
			Fields:      graphql.InputObjectConfigFieldMapThunk(c.inputFieldsThunk),
		})
	default:
		typ = graphql.NewObject(graphql.ObjectConfig{
			Name:        c.name,
			Description: c.description,
			Fields:      graphql.FieldsThunk(c.outputFieldsThunk),
		})
	}
	if err := typ.Error(); err != nil {
		return nil, newFieldError(ErrInvalidType, c.name, "", "%q is not a valid %s: %v", c.name, c.kind, err)
	}

	c.objectType = typ
	c.registry.logger.Debug("type placeholder registered",
		zap.String("type", c.name),
		zap.Stringer("kind", c.kind),
	)
	return typ, nil
}

// finalize computes the field map behind the placeholder.
func (c *Container) finalize() error {
	if c.kind == KindInput {
		fields, err := c.computeInputFields()
		if err != nil {
			return err
		}
		c.inputFields = fields
		return nil
	}

	fields, err := c.computeFields()
	if err != nil {
		return err
	}
	c.outputFields = fields
	return nil
}

func (c *Container) outputFieldsThunk() graphql.Fields {
	if c.outputFields == nil {
		if err := c.finalize(); err != nil {
			c.thunkErr = err
			return graphql.Fields{}
		}
	}
	return c.outputFields
}

func (c *Container) inputFieldsThunk() graphql.InputObjectConfigFieldMap {
	if c.inputFields == nil {
		if err := c.finalize(); err != nil {
			c.thunkErr = err
			return graphql.InputObjectConfigFieldMap{}
		}
	}
	return c.inputFields
}

// computeFields compiles every effective field into graphql-go output fields.
// Query and Mutation containers also merge the fields of their plugins.
func (c *Container) computeFields() (graphql.Fields, error) {
	fields := graphql.Fields{}
	for _, f := range c.effectiveFields() {
		out, err := f.compileOutput()
		if err != nil {
			return nil, err
		}
		fields[f.name] = out
	}

	if c.IsQueryOrMutation() {
		pluginFields, err := c.computePluginFields()
		if err != nil {
			return nil, err
		}
		for name, f := range pluginFields {
			fields[name] = f
		}
	}
	return fields, nil
}

func (c *Container) computeInputFields() (graphql.InputObjectConfigFieldMap, error) {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range c.effectiveFields() {
		typ, err := f.computeType()
		if err != nil {
			return nil, err
		}
		if !isInputType(typ) {
			return nil, newFieldError(ErrInvalidType, c.displayName(), f.name, "%s is not a valid input type for field %q", typ, f.name)
		}
		fields[f.name] = &graphql.InputObjectFieldConfig{
			Type:        typ,
			Description: f.description,
		}
	}
	return fields, nil
}

// resolvePlugins runs the plugins once against the container instance and
// returns the classes they contribute.
func (c *Container) resolvePlugins() ([]reflect.Type, error) {
	if len(c.plugins) == 0 || c.pluginClasses != nil {
		return c.pluginClasses, nil
	}

	inst, err := c.Instance()
	if err != nil {
		return nil, err
	}
	var classes []reflect.Type
	for _, p := range c.plugins {
		class, err := p(inst)
		if err != nil {
			return nil, err
		}
		typ, ok := classOf(class)
		if !ok {
			return nil, newFieldError(ErrInvalidType, c.displayName(), "", "plugin for %s returned %T, not a class", c.displayName(), class)
		}
		classes = append(classes, typ)
	}
	c.pluginClasses = classes
	return classes, nil
}

func (c *Container) computePluginFields() (graphql.Fields, error) {
	if _, err := c.resolvePlugins(); err != nil {
		return nil, err
	}

	fields := graphql.Fields{}
	for _, typ := range c.pluginClasses {
		pc := c.registry.Lookup(typ, c.namespace)
		if pc == nil || pc == c {
			continue
		}
		pf, err := pc.computeFields()
		if err != nil {
			return nil, err
		}
		for name, f := range pf {
			fields[name] = f
		}
	}
	return fields, nil
}
