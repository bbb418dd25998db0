package schemabuilder

import (
	"fmt"
	"reflect"
)

// InstanceContainer is an external dependency-injection registry able to
// supply the instance backing a class.
type InstanceContainer interface {
	Get(class reflect.Type) (interface{}, error)
}

// ContainerFunc adapts a function to InstanceContainer.
type ContainerFunc func(class reflect.Type) (interface{}, error)

// Get calls f.
func (f ContainerFunc) Get(class reflect.Type) (interface{}, error) {
	return f(class)
}

// ContainerOptions controls when the built-in instance cache is used in place
// of an external container.
type ContainerOptions struct {
	// Fallback uses the built-in cache when the container returns nil.
	Fallback bool
	// FallbackOnErrors uses the built-in cache when the container fails.
	FallbackOnErrors bool
}

type containerBinding struct {
	container InstanceContainer
	opts      ContainerOptions
}

type constructor struct {
	fn   reflect.Value
	args []interface{}
}

// Provider supplies the instances that instance-bound resolvers are invoked
// on. Lookup order: the container registered for the class, then the global
// container, then the built-in cache, which constructs each class once.
type Provider struct {
	instances    map[reflect.Type]interface{}
	constructors map[reflect.Type]constructor
	perClass     map[reflect.Type]containerBinding
	global       *containerBinding
}

// NewProvider returns a provider with an empty built-in cache.
func NewProvider() *Provider {
	p := &Provider{}
	p.Reset()
	return p
}

// Reset drops every cached instance, constructor and container.
func (p *Provider) Reset() {
	p.instances = make(map[reflect.Type]interface{})
	p.constructors = make(map[reflect.Type]constructor)
	p.perClass = make(map[reflect.Type]containerBinding)
	p.global = nil
}

// UseContainer makes c the source of instances for class.
func (p *Provider) UseContainer(class interface{}, c InstanceContainer, opts ContainerOptions) error {
	typ, ok := classOf(class)
	if !ok {
		return newFieldError(ErrInvalidType, fmt.Sprintf("%T", class), "", "%T is not a valid class reference", class)
	}
	p.perClass[typ] = containerBinding{container: c, opts: opts}
	return nil
}

// SetContainer makes c the source of instances for every class without a
// container of its own. A nil container removes it.
func (p *Provider) SetContainer(c InstanceContainer, opts ContainerOptions) {
	if c == nil {
		p.global = nil
		return
	}
	p.global = &containerBinding{container: c, opts: opts}
}

// SetInstance stores inst in the built-in cache. A class holds at most one
// instance.
func (p *Provider) SetInstance(class interface{}, inst interface{}) error {
	typ, ok := classOf(class)
	if !ok {
		return newFieldError(ErrInvalidType, fmt.Sprintf("%T", class), "", "%T is not a valid class reference", class)
	}
	if _, ok := p.instances[typ]; ok {
		return newFieldError(ErrInstanceExists, typ.Name(), "", "Target %s already exists in container", typ.Name())
	}
	p.instances[typ] = inst
	return nil
}

// SetConstructor registers the function the built-in cache uses to create the
// instance of class. fn is called with args and returns the instance,
// optionally followed by an error.
func (p *Provider) SetConstructor(class interface{}, fn interface{}, args ...interface{}) error {
	typ, ok := classOf(class)
	if !ok {
		return newFieldError(ErrInvalidType, fmt.Sprintf("%T", class), "", "%T is not a valid class reference", class)
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return newFieldError(ErrInvalidResolver, typ.Name(), "", "constructor for %s is not a function", typ.Name())
	}
	ft := fv.Type()
	if ft.NumOut() == 0 || ft.NumOut() > 2 || (ft.NumOut() == 2 && ft.Out(1) != errType) {
		return newFieldError(ErrInvalidResolver, typ.Name(), "", "constructor for %s must return the instance and an optional error", typ.Name())
	}
	if !ft.IsVariadic() && ft.NumIn() != len(args) {
		return newFieldError(ErrInvalidResolver, typ.Name(), "", "constructor for %s takes %d arguments, got %d", typ.Name(), ft.NumIn(), len(args))
	}
	if !ft.IsVariadic() {
		for i, a := range args {
			if a != nil && !reflect.TypeOf(a).AssignableTo(ft.In(i)) {
				return newFieldError(ErrInvalidResolver, typ.Name(), "", "argument %d of constructor for %s: cannot use %T as %s", i, typ.Name(), a, ft.In(i))
			}
		}
	}
	p.constructors[typ] = constructor{fn: fv, args: args}
	return nil
}

// Resolve returns the instance backing class.
func (p *Provider) Resolve(class reflect.Type) (interface{}, error) {
	binding, ok := p.perClass[class]
	if !ok && p.global != nil {
		binding, ok = *p.global, true
	}
	if ok {
		inst, err := binding.container.Get(class)
		switch {
		case err != nil && !binding.opts.FallbackOnErrors:
			return nil, err
		case err == nil && inst != nil:
			return inst, nil
		case err == nil && !binding.opts.Fallback:
			return nil, newFieldError(ErrNoInstance, class.Name(), "", "container returned no instance for %s", class.Name())
		}
	}
	return p.get(class)
}

// get returns the cached instance of class, constructing it on first use.
func (p *Provider) get(class reflect.Type) (interface{}, error) {
	if inst, ok := p.instances[class]; ok {
		return inst, nil
	}

	var inst interface{}
	if c, ok := p.constructors[class]; ok {
		var err error
		inst, err = c.call()
		if err != nil {
			return nil, fmt.Errorf("constructing %s: %w", class.Name(), err)
		}
	} else {
		inst = reflect.New(class).Interface()
	}

	p.instances[class] = inst
	return inst, nil
}

func (c constructor) call() (interface{}, error) {
	in := make([]reflect.Value, len(c.args))
	ft := c.fn.Type()
	for i, a := range c.args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		if a == nil {
			in[i] = reflect.Zero(pt)
		} else {
			in[i] = reflect.ValueOf(a)
		}
	}

	out := c.fn.Call(in)
	if len(out) == 2 {
		if err := asError(out[1]); err != nil {
			return nil, err
		}
	}
	return addressable(out[0]), nil
}

// addressable returns a pointer to struct values so pointer-receiver methods
// stay reachable.
func addressable(v reflect.Value) interface{} {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		return ptr.Interface()
	}
	return v.Interface()
}
