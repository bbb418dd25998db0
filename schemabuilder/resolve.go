package schemabuilder

import (
	"github.com/graphql-go/graphql"
)

// resolveType turns a type reference into a concrete schema type. A reference
// is a graphql.Type, a *WrappedType, or a class registered as an ObjectType or
// InputType; a class gets its placeholder type on first reference. fieldName
// is only used in error messages.
func resolveType(r *Registry, ref interface{}, fieldName string) (graphql.Type, error) {
	switch t := ref.(type) {
	case nil:
		return nil, newFieldError(ErrMissingType, "", fieldName, "%q is missing a type", fieldName)

	case graphql.Type:
		return t, nil

	case *WrappedType:
		inner, err := resolveType(r, t.OfType, fieldName)
		if err != nil {
			return nil, err
		}
		var wrapped graphql.Type
		switch t.Kind {
		case WrapList:
			wrapped = graphql.NewList(inner)
		case WrapNonNull:
			wrapped = graphql.NewNonNull(inner)
		default:
			return nil, newFieldError(ErrInvalidType, "", fieldName, "unknown wrapper %s for field %q", t.Kind, fieldName)
		}
		if err := wrapped.Error(); err != nil {
			return nil, newFieldError(ErrInvalidType, "", fieldName, "%q is not a valid type or ObjectType for field %q: %v", describeRef(t.OfType), fieldName, err)
		}
		return wrapped, nil
	}

	c := r.Lookup(ref, NamespaceObjectType)
	if c == nil {
		return nil, newFieldError(ErrInvalidType, "", fieldName, "ObjectType for %q is not a valid type", fieldName)
	}
	typ, err := c.ensureType()
	if err != nil {
		return nil, newFieldError(ErrInvalidType, "", fieldName, "ObjectType for %q is not a valid type: %v", fieldName, err)
	}
	return typ, nil
}

// namedType strips List and NonNull wrappers.
func namedType(t graphql.Type) graphql.Type {
	for {
		switch w := t.(type) {
		case *graphql.List:
			t = w.OfType
		case *graphql.NonNull:
			t = w.OfType
		default:
			return t
		}
	}
}

func isInputType(t graphql.Type) bool {
	switch namedType(t).(type) {
	case *graphql.Scalar, *graphql.Enum, *graphql.InputObject:
		return true
	}
	return false
}

func isOutputType(t graphql.Type) bool {
	switch namedType(t).(type) {
	case *graphql.Scalar, *graphql.Enum, *graphql.Object, *graphql.Interface, *graphql.Union:
		return true
	}
	return false
}
