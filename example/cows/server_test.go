package cows_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/party/example/cows"
	"go.appointy.com/party/introspection"
	"go.appointy.com/party/schemabuilder"
	"go.uber.org/zap/zaptest"
)

type client struct {
	t      *testing.T
	server *httptest.Server
}

func newClient(t *testing.T) *client {
	t.Helper()
	h, err := cows.GetGraphqlServer(cows.NewBarn("brown"), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, h)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return &client{t: t, server: server}
}

func (c *client) post(query string, vars map[string]interface{}, header http.Header) map[string]interface{} {
	c.t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": vars})
	require.NoError(c.t, err)

	req, err := http.NewRequest(http.MethodPost, c.server.URL, bytes.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func (c *client) data(query string, vars map[string]interface{}) map[string]interface{} {
	c.t.Helper()
	result := c.post(query, vars, nil)
	require.Nil(c.t, result["errors"], "GraphQL errors: %v", result["errors"])
	return result["data"].(map[string]interface{})
}

func TestCowQueries(t *testing.T) {
	c := newClient(t)

	data := c.data(`{ cows { id name soundsLike color bornAt mother { id name } } barnColor }`, nil)
	assert.Equal(t, "brown", data["barnColor"])

	list := data["cows"].([]interface{})
	require.Len(t, list, 2)
	daisy := list[0].(map[string]interface{})
	assert.Equal(t, "c1", daisy["id"])
	assert.Equal(t, "Daisy", daisy["name"])
	assert.Equal(t, "moo!", daisy["soundsLike"])
	assert.Equal(t, "brown", daisy["color"])
	assert.Equal(t, "2019-04-01T00:00:00Z", daisy["bornAt"])
	assert.Nil(t, daisy["mother"])

	calf := list[1].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"id": "c1", "name": "Daisy"}, calf["mother"])
}

func TestCowLookup(t *testing.T) {
	c := newClient(t)

	data := c.data(`query Q($id: ID!) { cow(id: $id) { name } }`, map[string]interface{}{"id": "c2"})
	assert.Equal(t, map[string]interface{}{"name": "Bluebell"}, data["cow"])

	result := c.post(`{ cow(id: "nope") { name } }`, nil, nil)
	require.NotNil(t, result["errors"])
	errs := result["errors"].([]interface{})
	assert.Contains(t, errs[0].(map[string]interface{})["message"], "cow not found")
}

func TestCowFilterAndPlugin(t *testing.T) {
	c := newClient(t)

	data := c.data(`{ cows(filter: {breed: "Angus"}) { id } herdSize breeds }`, nil)
	assert.Empty(t, data["cows"])
	assert.Equal(t, float64(2), data["herdSize"])
	assert.Equal(t, []interface{}{"Jersey"}, data["breeds"])
}

func TestCowMutations(t *testing.T) {
	c := newClient(t)

	data := c.data(`mutation Add($input: NewCowInput!) {
		addCow(input: $input) { id name breed color mother { name } }
	}`, map[string]interface{}{
		"input": map[string]interface{}{"name": "Clover", "breed": "Angus", "motherId": "c1"},
	})
	added := data["addCow"].(map[string]interface{})
	assert.NotEmpty(t, added["id"])
	assert.Equal(t, "Clover", added["name"])
	assert.Equal(t, "Angus", added["breed"])
	assert.Equal(t, "brown", added["color"])
	assert.Equal(t, map[string]interface{}{"name": "Daisy"}, added["mother"])

	data = c.data(`{ herdSize breeds }`, nil)
	assert.Equal(t, float64(3), data["herdSize"])
	assert.Equal(t, []interface{}{"Angus", "Jersey"}, data["breeds"])

	data = c.data(`mutation Remove($id: ID!) { removeCow(id: $id) }`, map[string]interface{}{"id": added["id"]})
	assert.Equal(t, true, data["removeCow"])
	data = c.data(`mutation { removeCow(id: "c9") }`, nil)
	assert.Equal(t, false, data["removeCow"])

	result := c.post(`mutation { addCow(input: {name: "Orphan", motherId: "c9"}) { id } }`, nil, nil)
	assert.NotNil(t, result["errors"])
}

func TestFarmerFromHeader(t *testing.T) {
	c := newClient(t)

	result := c.post(`{ farmer }`, nil, http.Header{cows.UserHeader: []string{"old macdonald"}})
	require.Nil(t, result["errors"])
	assert.Equal(t, map[string]interface{}{"farmer": "old macdonald"}, result["data"])
}

func TestCowSchemaShape(t *testing.T) {
	schema, err := cows.NewSchema(cows.NewBarn("white"), zaptest.NewLogger(t))
	require.NoError(t, err)

	s, err := introspection.Inspect(context.Background(), *schema)
	require.NoError(t, err)
	assert.Equal(t, "Query", s.QueryTypeName())
	assert.Equal(t, "Mutation", s.MutationTypeName())

	cow := s.Type("Cow")
	require.NotNil(t, cow)
	require.NotNil(t, cow.Description)
	assert.Equal(t, "A cow and its lineage.", *cow.Description)
	assert.Equal(t, "ID!", cow.Field("id").Type.String())
	assert.Equal(t, "String!", cow.Field("name").Type.String())
	assert.Equal(t, "DateTime", cow.Field("bornAt").Type.String())
	assert.Equal(t, "Cow", cow.Field("mother").Type.String())
	require.NotNil(t, cow.Field("color").Description)
	assert.Equal(t, "Coat color", *cow.Field("color").Description)
	assert.Nil(t, cow.Field("motherID"))

	query := s.Type("Query")
	require.NotNil(t, query)
	assert.Equal(t, "[Cow!]!", query.Field("cows").Type.String())
	assert.Equal(t, "CowFilter", query.Field("cows").Args[0].Type.String())
	assert.Equal(t, "Int!", query.Field("herdSize").Type.String())

	mutation := s.Type("Mutation")
	require.NotNil(t, mutation)
	require.Len(t, mutation.Field("addCow").Args, 1)
	assert.Equal(t, "NewCowInput!", mutation.Field("addCow").Args[0].Type.String())

	input := s.Type("NewCowInput")
	require.NotNil(t, input)
	assert.Equal(t, introspection.INPUT_OBJECT, input.Kind)
	assert.NotNil(t, input.InputField("motherId"))
}

func TestBuildFromGlob(t *testing.T) {
	r := schemabuilder.NewRegistry(schemabuilder.WithLogger(zaptest.NewLogger(t)))
	cows.RegisterSchema(r, cows.NewBarn("brown"))

	classes, err := schemabuilder.Glob("*/cows.Cow*").Classes(r)
	require.NoError(t, err)
	var names []string
	for _, c := range classes {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"Cow", "CowFilter", "CowQueries", "CowMutations"}, names)

	schema, err := r.Build(schemabuilder.Glob("*/cows.*"))
	require.NoError(t, err)
	assert.NotNil(t, schema.MutationType())
	assert.NotNil(t, schema.Type("NewCowInput"))
}
