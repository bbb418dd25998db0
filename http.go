// Package party serves schemas built by schemabuilder over HTTP.
package party

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.appointy.com/party/schemabuilder"
	"go.uber.org/zap"
)

// HandlerFunc executes one GraphQL operation.
type HandlerFunc func(ctx context.Context, params graphql.Params) *graphql.Result

// MiddlewareFunc wraps operation execution.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	Middlewares   []MiddlewareFunc
	Logger        *zap.Logger
	Metrics       *Metrics
	ContextValues func(*http.Request) map[string]interface{}
	Playground    bool
	Title         string
}

// WithMiddlewares appends middlewares; the first one is the outermost.
func WithMiddlewares(m ...MiddlewareFunc) HandlerOption {
	return func(o *handlerOptions) {
		o.Middlewares = append(o.Middlewares, m...)
	}
}

// WithLogger logs failed operations at warn and successful ones at debug.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(o *handlerOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithMetrics records operation counts and latencies.
func WithMetrics(m *Metrics) HandlerOption {
	return func(o *handlerOptions) { o.Metrics = m }
}

// WithContextValues attaches per-request values that Context parameter
// bindings select from.
func WithContextValues(fn func(*http.Request) map[string]interface{}) HandlerOption {
	return func(o *handlerOptions) { o.ContextValues = fn }
}

// WithPlayground controls whether GET requests serve the playground UI.
func WithPlayground(enabled bool, title string) HandlerOption {
	return func(o *handlerOptions) {
		o.Playground = enabled
		if title != "" {
			o.Title = title
		}
	}
}

// HTTPHandler implements the handler required for executing the graphql queries and mutations
func HTTPHandler(schema *graphql.Schema, opts ...HandlerOption) http.Handler {
	o := handlerOptions{
		Logger:     zap.NewNop(),
		Playground: true,
		Title:      "Party Playground",
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &httpHandler{
		schema: schema,
		opts:   o,
	}

	prev := h.execute
	for i := range o.Middlewares {
		prev = o.Middlewares[len(o.Middlewares)-1-i](prev)
	}
	h.exec = prev

	return h
}

type httpHandler struct {
	schema *graphql.Schema
	opts   handlerOptions

	exec HandlerFunc
}

type httpPostBody struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.opts.Playground && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		PlaygroundHandler(h.opts.Title, r.URL.Path).ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodPost {
		writeResult(w, errorResult("request must be a POST"))
		return
	}

	if r.Body == nil {
		writeResult(w, errorResult("request must include a query"))
		return
	}

	var params httpPostBody
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeResult(w, errorResult(err.Error()))
		return
	}
	if params.Query == "" {
		writeResult(w, errorResult("request must include a query"))
		return
	}

	ctx := r.Context()
	if h.opts.ContextValues != nil {
		ctx = schemabuilder.WithContextValues(ctx, h.opts.ContextValues(r))
	}
	ctx = addVariables(ctx, params.Variables)

	start := time.Now()
	result := h.exec(ctx, graphql.Params{
		Schema:         *h.schema,
		RequestString:  params.Query,
		VariableValues: params.Variables,
		OperationName:  params.OperationName,
		Context:        ctx,
	})
	if result == nil {
		result = errorResult("operation produced no result")
	}
	h.observe(params.OperationName, result, time.Since(start))

	writeResult(w, result)
}

func (h *httpHandler) execute(ctx context.Context, params graphql.Params) *graphql.Result {
	params.Context = ctx
	return graphql.Do(params)
}

func (h *httpHandler) observe(operation string, result *graphql.Result, elapsed time.Duration) {
	status := "ok"
	if result.HasErrors() {
		status = "error"
		h.opts.Logger.Warn("graphql operation failed",
			zap.String("operation", operation),
			zap.Int("errors", len(result.Errors)),
			zap.String("first_error", result.Errors[0].Message),
			zap.Duration("elapsed", elapsed),
		)
	} else {
		h.opts.Logger.Debug("graphql operation",
			zap.String("operation", operation),
			zap.Duration("elapsed", elapsed),
		)
	}
	if h.opts.Metrics != nil {
		h.opts.Metrics.observe(status, elapsed)
	}
}

func errorResult(message string) *graphql.Result {
	return &graphql.Result{
		Errors: []gqlerrors.FormattedError{gqlerrors.NewFormattedError(message)},
	}
}

func writeResult(w http.ResponseWriter, result *graphql.Result) {
	responseJSON, err := json.Marshal(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(responseJSON)
}

type graphqlVariableKeyType int

const graphqlVariableKey graphqlVariableKeyType = 0

// ExtractVariables is used to returns the variables received as part of the graphql request.
// This is intended to be used from within the middlewares.
func ExtractVariables(ctx context.Context) map[string]interface{} {
	if v := ctx.Value(graphqlVariableKey); v != nil {
		return v.(map[string]interface{})
	}

	return nil
}

func addVariables(ctx context.Context, v map[string]interface{}) context.Context {
	return context.WithValue(ctx, graphqlVariableKey, v)
}

// playgroundHTML loads GraphiQL from a CDN.
const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>%s</title>
    <style>
        body {
            height: 100%%;
            margin: 0;
            overflow: hidden;
        }
        #graphiql {
            height: 100vh;
        }
    </style>
    <link rel="stylesheet" href="https://unpkg.com/graphiql@1.4.0/graphiql.min.css" />
    <script src="https://unpkg.com/react@16.14.0/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@16.14.0/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql@1.4.0/graphiql.min.js"></script>
</head>
<body>
    <div id="graphiql">Loading...</div>
    <script>
      function graphQLFetcher(graphQLParams) {
        return fetch('%s', {
          method: 'post',
          headers: {
            Accept: 'application/json',
            'Content-Type': 'application/json',
          },
          body: JSON.stringify(graphQLParams),
          credentials: 'same-origin',
        }).then(function (response) {
          return response.json().catch(function () {
            return response.text();
          });
        });
      }

      ReactDOM.render(
        React.createElement(GraphiQL, { fetcher: graphQLFetcher }),
        document.getElementById('graphiql'),
      );
    </script>
</body>
</html>`

// PlaygroundHandler serves a GraphiQL page that posts to graphqlEndpoint.
//
//	r.Handle("/graphql", party.HTTPHandler(schema, party.WithPlayground(false, "")))
//	r.Handle("/", party.PlaygroundHandler("Cows", "/graphql"))
func PlaygroundHandler(title, graphqlEndpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = fmt.Fprintf(w, playgroundHTML, title, graphqlEndpoint)
	})
}
