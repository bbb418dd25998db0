package schemabuilder

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	Name string
	Next *node
}

type plainService struct{}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	r := NewRegistry()

	a, err := r.GetOrCreate(node{}, NamespaceObjectType)
	require.NoError(t, err)
	b, err := r.GetOrCreate(&node{}, NamespaceObjectType)
	require.NoError(t, err)
	c, err := r.GetOrCreate(reflect.TypeOf(node{}), NamespaceObjectType)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Same(t, a, c)

	q, err := r.GetOrCreate(node{}, NamespaceQuery)
	require.NoError(t, err)
	assert.NotSame(t, a, q)
	assert.True(t, q.IsQuery())
	assert.True(t, q.IsQueryOrMutation())
	assert.False(t, q.IsObjectType())
	assert.True(t, a.IsObjectType())

	assert.Equal(t, []reflect.Type{reflect.TypeOf(node{})}, r.Classes())
}

func TestGetOrCreateRejectsUnnamedTypes(t *testing.T) {
	r := NewRegistry()
	for _, class := range []interface{}{nil, "str", 42, struct{}{}, func() {}} {
		_, err := r.GetOrCreate(class, NamespaceObjectType)
		assert.True(t, errors.Is(err, ErrInvalidType), "%T", class)
	}
}

func TestAddField(t *testing.T) {
	r := NewRegistry()
	c := r.mustGetOrCreate(node{}, NamespaceObjectType)

	require.NoError(t, c.AddField(NewField("name", String)))
	require.NoError(t, c.AddField(NewField("next", node{})))

	err := c.AddField(NewField("name", Int))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateField))
	assert.Equal(t, `Duplicate field "name"`, err.Error())

	assert.True(t, c.HasField("name"))
	assert.True(t, c.HasField("next"))
	assert.Equal(t, String, c.Field("name").TypeRef())
	assert.Len(t, c.Fields(), 2)

	err = c.AddField(NewField("ghost", nil))
	assert.True(t, errors.Is(err, ErrMissingType))
}

func TestResetRestoresEmptyState(t *testing.T) {
	r := NewRegistry()
	r.ObjectType(node{}).Field("name", String)
	require.NoError(t, r.Provider().SetInstance(plainService{}, &plainService{}))

	r.Reset()

	assert.Nil(t, r.Lookup(node{}, NamespaceObjectType))
	assert.Empty(t, r.Classes())
	require.NoError(t, r.Provider().SetInstance(plainService{}, &plainService{}))
}

func TestResolveWrappedTypes(t *testing.T) {
	r := NewRegistry()
	r.ObjectType(node{}).Field("name", String)

	cases := []struct {
		ref  interface{}
		want string
	}{
		{List(ID), "[ID]"},
		{NonNull(ID), "ID!"},
		{List(List(String)), "[[String]]"},
		{NonNull(List(NonNull(ID))), "[ID!]!"},
		{List(NonNull(List(Int))), "[[Int]!]"},
		{NonNull(List(List(Boolean))), "[[Boolean]]!"},
		{List(NonNull(node{})), "[node!]"},
	}
	for _, tc := range cases {
		typ, err := resolveType(r, tc.ref, "field")
		require.NoError(t, err, tc.want)
		assert.Equal(t, tc.want, typ.String())
	}
}

func TestResolveInvalidReferences(t *testing.T) {
	r := NewRegistry()

	_, err := resolveType(r, NonNull(NonNull(ID)), "ids")
	assert.True(t, errors.Is(err, ErrInvalidType))

	_, err = resolveType(r, plainService{}, "svc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidType))
	assert.Equal(t, `ObjectType for "svc" is not a valid type`, err.Error())

	_, err = resolveType(r, List(nil), "items")
	assert.True(t, errors.Is(err, ErrMissingType))
}

func TestSelfReferenceSharesTypeIdentity(t *testing.T) {
	r := NewRegistry()
	r.ObjectType(node{}).
		Field("name", String).
		Field("next", node{}).
		Field("siblings", List(NonNull(node{})))

	typ, err := r.TypeFromObjectTypeClass(node{})
	require.NoError(t, err)

	fields := typ.Fields()
	assert.Same(t, typ, fields["next"].Type)
	assert.Same(t, typ, namedType(fields["siblings"].Type))
}

func TestEnsureTypeIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.ObjectType(node{}).Field("name", String)
	c := r.Lookup(node{}, NamespaceObjectType)

	a, err := c.ensureType()
	require.NoError(t, err)
	b, err := c.ensureType()
	require.NoError(t, err)
	assert.Same(t, a, b)

	first, err := r.TypeFromObjectTypeClass(node{})
	require.NoError(t, err)
	second, err := r.TypeFromObjectTypeClass(node{})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestComputeArgsOmitsEmptyMap(t *testing.T) {
	r := NewRegistry()
	c := r.mustGetOrCreate(plainService{}, NamespaceQuery)
	f := NewFuncField("plain", String, func() string { return "" })
	require.NoError(t, c.AddField(f))

	args, err := f.computeArgs()
	require.NoError(t, err)
	assert.Nil(t, args)

	g := NewFuncField("withArgs", String, func(a string) string { return a },
		ArgParam(0, "a", NonNull(String)),
		Argument("limit", Int),
	)
	require.NoError(t, c.AddField(g))
	args, err = g.computeArgs()
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, "String!", args["a"].Type.String())
	assert.Equal(t, Int, args["limit"].Type)
}

func TestWholeArgumentMapRejectsType(t *testing.T) {
	r := NewRegistry()
	c := r.mustGetOrCreate(plainService{}, NamespaceQuery)

	typed := NewFuncField("typed", String, func(args map[string]interface{}) string { return "" },
		ArgParam(0, "", String),
	)
	require.NoError(t, c.AddField(typed))
	_, err := typed.computeArgs()
	assert.True(t, errors.Is(err, ErrInvalidType))

	untyped := NewFuncField("untyped", String, func(args map[string]interface{}) string { return "" },
		ArgParam(0, "", nil),
		Argument("limit", Int),
	)
	require.NoError(t, c.AddField(untyped))
	args, err := untyped.computeArgs()
	require.NoError(t, err)
	assert.Len(t, args, 1)
}

func TestArgumentOrdering(t *testing.T) {
	r := NewRegistry()
	c := r.mustGetOrCreate(plainService{}, NamespaceQuery)

	bad := NewFuncField("bad", String, func(ctx context.Context, a string) string { return a },
		ContextParam(0, ""),
		ArgParam(1, "a", String),
	)
	require.NoError(t, c.AddField(bad))
	_, err := bad.computeArgs()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArgumentOrdering))
	assert.Contains(t, err.Error(), `"bad"`)

	gap := NewFuncField("gap", String, func(x, a string) string { return a },
		ArgParam(1, "a", String),
	)
	require.NoError(t, c.AddField(gap))
	_, err = gap.computeArgs()
	assert.True(t, errors.Is(err, ErrArgumentOrdering))

	good := NewFuncField("good", String, func(a, b string, ctx context.Context) string { return a + b },
		ArgParam(0, "a", String),
		ArgParam(1, "b", String),
		ContextParam(2, ""),
	)
	require.NoError(t, c.AddField(good))
	_, err = good.computeArgs()
	assert.NoError(t, err)
}

func TestRemapArgs(t *testing.T) {
	ctx := WithContextValues(context.Background(), map[string]interface{}{
		"user": map[string]interface{}{"name": "ana"},
	})
	p := graphql.ResolveParams{
		Source: "src",
		Args: map[string]interface{}{
			"a":      "x",
			"filter": map[string]interface{}{"color": "brown"},
		},
		Context: ctx,
	}

	values := remapArgs([]ParamBinding{
		{Index: 0, Kind: ParamArg, Selector: "filter.color"},
		{Index: 2, Kind: ParamContext, Selector: "user.name"},
	}, p)

	require.Len(t, values, 7)
	assert.Equal(t, "brown", values[0])
	assert.Nil(t, values[1])
	assert.Equal(t, "ana", values[2])
	assert.Equal(t, "src", values[3])
	assert.Equal(t, p.Args, values[4])
	assert.Equal(t, ctx, values[5])

	values = remapArgs([]ParamBinding{{Index: 0, Kind: ParamArg}}, p)
	assert.Equal(t, p.Args, values[0])
	assert.Nil(t, remapArgs([]ParamBinding{{Index: 0, Kind: ParamArg, Selector: "missing"}}, p)[0])
}

func TestContextValueFallsBackToContextKey(t *testing.T) {
	ctx := context.WithValue(context.Background(), ContextKey("tenant"), map[string]interface{}{"id": "acme"})
	assert.Equal(t, "acme", contextValue(ctx, "tenant.id"))
	assert.Equal(t, ctx, contextValue(ctx, ""))
	assert.Nil(t, contextValue(ctx, "other"))
}

func TestLookupPathStructs(t *testing.T) {
	n := &node{Name: "a", Next: &node{Name: "b"}}
	assert.Equal(t, "b", lookupPath(n, []string{"next", "name"}))
	assert.Equal(t, "a", lookupPath(*n, []string{"Name"}))
	assert.Nil(t, lookupPath(n, []string{"next", "next", "name"}))
}

func TestParseGraphQLFieldInfo(t *testing.T) {
	type tagged struct {
		Title  string `graphql:"title,description=Book title,nonnull"`
		Isbn   string `json:"isbn,omitempty" graphql:",deprecated=Use ids"`
		Pages  int    `json:"pageCount"`
		Secret string `graphql:"-"`
		hidden string
	}
	typ := reflect.TypeOf(tagged{})

	title := parseGraphQLFieldInfo(typ.Field(0))
	assert.Equal(t, &graphQLFieldInfo{Name: "title", Description: "Book title", NonNull: true}, title)

	isbn := parseGraphQLFieldInfo(typ.Field(1))
	assert.Equal(t, "isbn", isbn.Name)
	assert.Equal(t, "Use ids", isbn.DeprecationReason)

	assert.Equal(t, "pageCount", parseGraphQLFieldInfo(typ.Field(2)).Name)
	assert.True(t, parseGraphQLFieldInfo(typ.Field(3)).Skipped)
	assert.True(t, parseGraphQLFieldInfo(typ.Field(4)).Skipped)
}
