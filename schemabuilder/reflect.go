package schemabuilder

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
)

// graphQLFieldInfo contains basic struct field information related to GraphQL.
type graphQLFieldInfo struct {
	// Skipped indicates that this field should not be included in GraphQL.
	Skipped bool

	// Name is the GraphQL field name that should be exposed for this field.
	Name string

	// NonNull wraps the derived type reference in NonNull.
	NonNull bool

	DeprecationReason string
	Description       string
}

// parseGraphQLFieldInfo parses a struct field and returns a struct with the
// parsed information about the field. The graphql tag wins over the json tag:
//
//	Color string `graphql:"color,description=Hide color,deprecated=Use paint,nonnull"`
func parseGraphQLFieldInfo(field reflect.StructField) *graphQLFieldInfo {
	if field.PkgPath != "" || field.Anonymous {
		return &graphQLFieldInfo{Skipped: true}
	}

	tag, ok := field.Tag.Lookup("graphql")
	if !ok {
		tag = field.Tag.Get("json")
	}
	tags := strings.Split(tag, ",")
	name := strings.TrimSpace(tags[0])
	if name == "-" {
		return &graphQLFieldInfo{Skipped: true}
	}
	if name == "" {
		name = makeGraphql(field.Name)
	}

	info := &graphQLFieldInfo{Name: name}
	for _, opt := range tags[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case strings.HasPrefix(opt, "deprecated="):
			info.DeprecationReason = strings.TrimPrefix(opt, "deprecated=")
		case strings.HasPrefix(opt, "description="):
			info.Description = strings.TrimPrefix(opt, "description=")
		case opt == "nonnull":
			info.NonNull = true
		}
	}
	return info
}

// makeGraphql converts a Go name "MyField" into a graphQL field name "myField".
func makeGraphql(s string) string {
	return strcase.ToLowerCamel(s)
}

// goFieldName converts a graphQL field name "myField" into the exported Go
// name "MyField".
func goFieldName(s string) string {
	return strcase.ToCamel(s)
}

// Common Types that we will need to perform type assertions against.
var (
	errType     = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// typeRefForGo derives a type reference for a Go type: scalars for basic
// kinds, List for slices and arrays, and a forward class reference for any
// other named type. ok is false when nothing sensible can be derived.
func typeRefForGo(typ reflect.Type) (interface{}, bool) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == timeType {
		return DateTime, true
	}

	switch typ.Kind() {
	case reflect.String:
		return String, true
	case reflect.Bool:
		return Boolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int, true
	case reflect.Float32, reflect.Float64:
		return Float, true
	case reflect.Slice, reflect.Array:
		inner, ok := typeRefForGo(typ.Elem())
		if !ok {
			return nil, false
		}
		return List(inner), true
	case reflect.Struct:
		if _, ok := classOf(typ); ok {
			return typ, true
		}
	}
	return nil, false
}
