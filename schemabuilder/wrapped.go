package schemabuilder

import (
	"fmt"

	"github.com/graphql-go/graphql"
)

// Built-in scalars, re-exported so schemas can be declared without importing
// graphql-go directly.
var (
	String   = graphql.String
	Int      = graphql.Int
	Float    = graphql.Float
	Boolean  = graphql.Boolean
	ID       = graphql.ID
	DateTime = graphql.DateTime
)

// WrapperKind selects the structural wrapper applied by a WrappedType.
type WrapperKind int

const (
	WrapList WrapperKind = iota
	WrapNonNull
)

func (k WrapperKind) String() string {
	switch k {
	case WrapList:
		return "List"
	case WrapNonNull:
		return "NonNull"
	default:
		return fmt.Sprintf("WrapperKind(%d)", int(k))
	}
}

// WrappedType is a deferred List or NonNull wrapper around another type
// reference. OfType may be a graphql.Type, another *WrappedType or a class
// reference that is looked up when the schema is built.
type WrappedType struct {
	Kind   WrapperKind
	OfType interface{}
}

func (w *WrappedType) String() string {
	inner := describeRef(w.OfType)
	if w.Kind == WrapList {
		return "[" + inner + "]"
	}
	return inner + "!"
}

// List wraps ref in a list.
func List(ref interface{}) *WrappedType {
	return &WrappedType{Kind: WrapList, OfType: ref}
}

// NonNull marks ref as non-nullable.
func NonNull(ref interface{}) *WrappedType {
	return &WrappedType{Kind: WrapNonNull, OfType: ref}
}

// describeRef renders a type reference for error messages without resolving it.
func describeRef(ref interface{}) string {
	switch r := ref.(type) {
	case nil:
		return "<nil>"
	case graphql.Type:
		return r.String()
	case *WrappedType:
		return r.String()
	}
	if class, ok := classOf(ref); ok {
		return class.Name()
	}
	return fmt.Sprintf("%T", ref)
}
