package cows

import (
	"net/http"

	"github.com/graphql-go/graphql"
	"go.appointy.com/party"
	"go.appointy.com/party/schemabuilder"
	"go.uber.org/zap"
)

// UserHeader names the request header exposed to resolvers as the "user"
// context value.
const UserHeader = "X-User"

// NewSchema registers the cow domain on a fresh registry and builds it.
func NewSchema(barn *Barn, logger *zap.Logger) (*graphql.Schema, error) {
	r := schemabuilder.NewRegistry(schemabuilder.WithLogger(logger))
	RegisterSchema(r, barn)
	return r.Build()
}

// GetGraphqlServer builds the schema and returns the HTTP handler serving it.
func GetGraphqlServer(barn *Barn, logger *zap.Logger, opts ...party.HandlerOption) (http.Handler, error) {
	schema, err := NewSchema(barn, logger)
	if err != nil {
		return nil, err
	}

	opts = append([]party.HandlerOption{
		party.WithLogger(logger),
		party.WithContextValues(func(r *http.Request) map[string]interface{} {
			return map[string]interface{}{"user": r.Header.Get(UserHeader)}
		}),
	}, opts...)
	return party.HTTPHandler(schema, opts...), nil
}
