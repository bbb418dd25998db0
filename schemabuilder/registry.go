package schemabuilder

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Namespace separates the metadata a single class can carry.
type Namespace int

const (
	NamespaceObjectType Namespace = iota
	NamespaceQuery
	NamespaceMutation
)

func (n Namespace) String() string {
	switch n {
	case NamespaceObjectType:
		return "ObjectType"
	case NamespaceQuery:
		return "Query"
	case NamespaceMutation:
		return "Mutation"
	default:
		return fmt.Sprintf("Namespace(%d)", int(n))
	}
}

type containerKey struct {
	class     reflect.Type
	namespace Namespace
}

// Registry holds every metadata container, keyed by class and namespace.
//
// Registration is expected to happen from setup code on a single goroutine
// before Build is called; a Registry is not safe for concurrent mutation.
type Registry struct {
	containers map[containerKey]*Container
	order      []*Container
	provider   *Provider
	logger     *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProvider replaces the instance provider used to back Query and Mutation
// classes.
func WithProvider(p *Provider) RegistryOption {
	return func(r *Registry) {
		if p != nil {
			r.provider = p
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		containers: make(map[containerKey]*Container),
		provider:   NewProvider(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// SetDefault replaces the process-wide registry and returns the previous one.
func SetDefault(r *Registry) *Registry {
	prev := defaultRegistry
	defaultRegistry = r
	return prev
}

// Provider returns the instance provider backing this registry.
func (r *Registry) Provider() *Provider {
	return r.provider
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger {
	return r.logger
}

// Reset drops every container and every provided instance.
func (r *Registry) Reset() {
	r.containers = make(map[containerKey]*Container)
	r.order = nil
	r.provider.Reset()
}

// GetOrCreate returns the container for (class, ns), creating an empty one on
// first use.
func (r *Registry) GetOrCreate(class interface{}, ns Namespace) (*Container, error) {
	typ, ok := classOf(class)
	if !ok {
		return nil, newFieldError(ErrInvalidType, fmt.Sprintf("%T", class), "", "%T is not a valid class reference", class)
	}

	key := containerKey{class: typ, namespace: ns}
	if c, ok := r.containers[key]; ok {
		return c, nil
	}

	c := newContainer(r, typ, ns)
	r.containers[key] = c
	r.order = append(r.order, c)
	r.logger.Debug("metadata container created",
		zap.String("class", typeIdentifier(typ)),
		zap.Stringer("namespace", ns),
	)
	return c, nil
}

func (r *Registry) mustGetOrCreate(class interface{}, ns Namespace) *Container {
	c, err := r.GetOrCreate(class, ns)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the container for (class, ns) or nil.
func (r *Registry) Lookup(class interface{}, ns Namespace) *Container {
	typ, ok := classOf(class)
	if !ok {
		return nil
	}
	return r.containers[containerKey{class: typ, namespace: ns}]
}

// Classes returns every class that carries metadata, in registration order.
func (r *Registry) Classes() []reflect.Type {
	seen := make(map[reflect.Type]bool)
	var classes []reflect.Type
	for _, c := range r.order {
		if seen[c.class] {
			continue
		}
		seen[c.class] = true
		classes = append(classes, c.class)
	}
	return classes
}

// classOf normalises a class reference to its named, non-pointer type.
func classOf(class interface{}) (reflect.Type, bool) {
	var typ reflect.Type
	switch c := class.(type) {
	case nil:
		return nil, false
	case reflect.Type:
		typ = c
	default:
		typ = reflect.TypeOf(class)
	}
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Name() == "" || typ.PkgPath() == "" || typ.Kind() == reflect.Func {
		return nil, false
	}
	return typ, true
}

// typeIdentifier renders a class as importpath.Name.
func typeIdentifier(typ reflect.Type) string {
	return typ.PkgPath() + "." + typ.Name()
}
