package schemabuilder_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/party/schemabuilder"
)

type Barn struct {
	label string
}

type Silo struct {
	label string
}

var (
	barnType = reflect.TypeOf(Barn{})
	siloType = reflect.TypeOf(Silo{})
)

func labelled(label string) schemabuilder.ContainerFunc {
	return func(reflect.Type) (interface{}, error) {
		return &Barn{label: label}, nil
	}
}

func TestProviderDefaultCache(t *testing.T) {
	p := schemabuilder.NewProvider()

	a, err := p.Resolve(barnType)
	require.NoError(t, err)
	b, err := p.Resolve(barnType)
	require.NoError(t, err)
	assert.Same(t, a.(*Barn), b.(*Barn))

	p.Reset()
	c, err := p.Resolve(barnType)
	require.NoError(t, err)
	assert.NotSame(t, a.(*Barn), c.(*Barn))
}

func TestProviderSetInstance(t *testing.T) {
	p := schemabuilder.NewProvider()
	barn := &Barn{label: "red"}

	require.NoError(t, p.SetInstance(Barn{}, barn))
	err := p.SetInstance(Barn{}, &Barn{})
	assert.True(t, errors.Is(err, schemabuilder.ErrInstanceExists))

	got, err := p.Resolve(barnType)
	require.NoError(t, err)
	assert.Same(t, barn, got.(*Barn))
}

func TestProviderContainerPrecedence(t *testing.T) {
	p := schemabuilder.NewProvider()
	p.SetContainer(schemabuilder.ContainerFunc(func(class reflect.Type) (interface{}, error) {
		return reflect.New(class).Interface(), nil
	}), schemabuilder.ContainerOptions{})
	require.NoError(t, p.UseContainer(Barn{}, labelled("local"), schemabuilder.ContainerOptions{}))

	barn, err := p.Resolve(barnType)
	require.NoError(t, err)
	assert.Equal(t, "local", barn.(*Barn).label)

	silo, err := p.Resolve(siloType)
	require.NoError(t, err)
	assert.IsType(t, &Silo{}, silo)
}

func TestProviderFallback(t *testing.T) {
	empty := schemabuilder.ContainerFunc(func(reflect.Type) (interface{}, error) { return nil, nil })
	failing := schemabuilder.ContainerFunc(func(reflect.Type) (interface{}, error) { return nil, errors.New("down") })

	p := schemabuilder.NewProvider()
	require.NoError(t, p.UseContainer(Barn{}, empty, schemabuilder.ContainerOptions{}))
	_, err := p.Resolve(barnType)
	assert.True(t, errors.Is(err, schemabuilder.ErrNoInstance))

	require.NoError(t, p.UseContainer(Barn{}, empty, schemabuilder.ContainerOptions{Fallback: true}))
	inst, err := p.Resolve(barnType)
	require.NoError(t, err)
	assert.IsType(t, &Barn{}, inst)

	p.SetContainer(failing, schemabuilder.ContainerOptions{})
	_, err = p.Resolve(siloType)
	assert.EqualError(t, err, "down")

	p.SetContainer(failing, schemabuilder.ContainerOptions{FallbackOnErrors: true})
	inst, err = p.Resolve(siloType)
	require.NoError(t, err)
	assert.IsType(t, &Silo{}, inst)
}

func TestProviderConstructor(t *testing.T) {
	p := schemabuilder.NewProvider()

	require.NoError(t, p.SetConstructor(Silo{}, func(label string) Silo { return Silo{label: label} }, "tall"))
	inst, err := p.Resolve(siloType)
	require.NoError(t, err)
	assert.Equal(t, &Silo{label: "tall"}, inst)

	err = p.SetConstructor(Barn{}, func(label string) *Barn { return nil }, 3)
	assert.True(t, errors.Is(err, schemabuilder.ErrInvalidResolver))
	err = p.SetConstructor(Barn{}, func() {})
	assert.True(t, errors.Is(err, schemabuilder.ErrInvalidResolver))
	err = p.SetConstructor(Barn{}, "not a func")
	assert.True(t, errors.Is(err, schemabuilder.ErrInvalidResolver))

	require.NoError(t, p.SetConstructor(Barn{}, func() (*Barn, error) { return nil, errors.New("no barn") }))
	_, err = p.Resolve(barnType)
	assert.EqualError(t, err, "constructing Barn: no barn")
}
