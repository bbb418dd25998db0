package schemabuilder

import (
	"fmt"
	"path"
	"reflect"
	"strings"
)

// Source supplies classes to Build in place of direct references.
type Source interface {
	Classes(r *Registry) ([]reflect.Type, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(r *Registry) ([]reflect.Type, error)

// Classes calls f.
func (f SourceFunc) Classes(r *Registry) ([]reflect.Type, error) {
	return f(r)
}

// All selects every registered class.
func All() Source {
	return SourceFunc(func(r *Registry) ([]reflect.Type, error) {
		return r.Classes(), nil
	})
}

// Glob selects the registered classes whose identifier, importpath.TypeName,
// matches one of patterns. A pattern is matched against the full identifier
// and against every trailing run of its path segments, so "*/cows.*" selects
// every class of a package named cows.
func Glob(patterns ...string) Source {
	return SourceFunc(func(r *Registry) ([]reflect.Type, error) {
		for _, p := range patterns {
			if _, err := path.Match(p, ""); err != nil {
				return nil, fmt.Errorf("glob %q: %w", p, err)
			}
		}

		var out []reflect.Type
		for _, class := range r.Classes() {
			id := typeIdentifier(class)
			for _, p := range patterns {
				if globMatch(p, id) {
					out = append(out, class)
					break
				}
			}
		}
		return out, nil
	})
}

func globMatch(pattern, id string) bool {
	for {
		if ok, _ := path.Match(pattern, id); ok {
			return true
		}
		i := strings.Index(id, "/")
		if i < 0 {
			return false
		}
		id = id[i+1:]
	}
}
