package schemabuilder

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds raised while registering metadata or building a schema. Every
// error returned by this package wraps exactly one of them, so callers can
// classify failures with errors.Is.
var (
	ErrDuplicateField       = errors.New("duplicate field")
	ErrInvalidType          = errors.New("invalid type")
	ErrInvalidStaticBinding = errors.New("invalid static binding")
	ErrArgumentOrdering     = errors.New("argument ordering")
	ErrMissingType          = errors.New("missing type")
	ErrInvalidResolver      = errors.New("invalid resolver")
	ErrNoInstance           = errors.New("no instance")
	ErrInstanceExists       = errors.New("instance already exists")
)

// FieldError describes a failure tied to one type and, usually, one field.
type FieldError struct {
	Kind    error
	Type    string
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Unwrap returns the error kind.
func (e *FieldError) Unwrap() error {
	return e.Kind
}

func newFieldError(kind error, typ, field, format string, args ...interface{}) *FieldError {
	return &FieldError{
		Kind:    kind,
		Type:    typ,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// StaticBindingError is reported once per class that carries ObjectType
// metadata together with instance-bound Query or Mutation fields.
type StaticBindingError struct {
	Class  string
	Fields []string
}

func (e *StaticBindingError) Error() string {
	quoted := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		quoted[i] = fmt.Sprintf("%q", f)
	}
	return fmt.Sprintf("Fields %s must be static if they belong to an ObjectType (%s)", strings.Join(quoted, ", "), e.Class)
}

// Unwrap returns ErrInvalidStaticBinding.
func (e *StaticBindingError) Unwrap() error {
	return ErrInvalidStaticBinding
}
