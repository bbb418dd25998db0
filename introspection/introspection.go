// Package introspection runs the standard introspection query against a
// built schema and exposes the result as typed values.
package introspection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
)

type TypeKind string

const (
	SCALAR       TypeKind = "SCALAR"
	OBJECT       TypeKind = "OBJECT"
	INTERFACE    TypeKind = "INTERFACE"
	UNION        TypeKind = "UNION"
	ENUM         TypeKind = "ENUM"
	INPUT_OBJECT TypeKind = "INPUT_OBJECT"
	LIST         TypeKind = "LIST"
	NON_NULL     TypeKind = "NON_NULL"
)

// TypeRef is a possibly wrapped reference to a named type.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// String renders the reference in schema language, e.g. [ID!]!.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case NON_NULL:
		return t.OfType.String() + "!"
	case LIST:
		return "[" + t.OfType.String() + "]"
	}
	if t.Name == nil {
		return ""
	}
	return *t.Name
}

// Named returns the innermost named type name.
func (t *TypeRef) Named() string {
	for t != nil && t.Name == nil {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return *t.Name
}

type InputValue struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Type         *TypeRef `json:"type"`
	DefaultValue *string  `json:"defaultValue"`
}

type Field struct {
	Name              string       `json:"name"`
	Description       *string      `json:"description"`
	Args              []InputValue `json:"args"`
	Type              *TypeRef     `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type Type struct {
	Kind          TypeKind     `json:"kind"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// Field returns the output field called name, or nil.
func (t *Type) Field(name string) *Field {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// InputField returns the input field called name, or nil.
func (t *Type) InputField(name string) *InputValue {
	for i := range t.InputFields {
		if t.InputFields[i].Name == name {
			return &t.InputFields[i]
		}
	}
	return nil
}

type Directive struct {
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Locations   []string     `json:"locations"`
	Args        []InputValue `json:"args"`
}

type NamedType struct {
	Name string `json:"name"`
}

type Schema struct {
	QueryType        *NamedType  `json:"queryType"`
	MutationType     *NamedType  `json:"mutationType"`
	SubscriptionType *NamedType  `json:"subscriptionType"`
	Types            []Type      `json:"types"`
	Directives       []Directive `json:"directives"`
}

// QueryTypeName returns the name of the query root.
func (s *Schema) QueryTypeName() string { return s.QueryType.name() }

// MutationTypeName returns the name of the mutation root, empty when the
// schema has none.
func (s *Schema) MutationTypeName() string { return s.MutationType.name() }

func (n *NamedType) name() string {
	if n == nil {
		return ""
	}
	return n.Name
}

// Type returns the type called name, or nil.
func (s *Schema) Type(name string) *Type {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i]
		}
	}
	return nil
}

// UserTypes returns the types not reserved by introspection itself.
func (s *Schema) UserTypes() []Type {
	var out []Type
	for _, t := range s.Types {
		if !strings.HasPrefix(t.Name, "__") {
			out = append(out, t)
		}
	}
	return out
}

// ComputeSchemaJSON returns the result of executing the introspection query.
func ComputeSchemaJSON(ctx context.Context, schema graphql.Schema) ([]byte, error) {
	data, err := run(ctx, schema)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// Inspect executes the introspection query and decodes the result.
func Inspect(ctx context.Context, schema graphql.Schema) (*Schema, error) {
	data, err := run(ctx, schema)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out struct {
		Schema Schema `json:"__schema"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding introspection result: %w", err)
	}
	return &out.Schema, nil
}

func run(ctx context.Context, schema graphql.Schema) (interface{}, error) {
	res := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: Query,
		Context:       ctx,
	})
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Message
		}
		return nil, errors.New("introspection failed: " + strings.Join(msgs, "; "))
	}
	return res.Data, nil
}
