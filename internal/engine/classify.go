package engine

import (
	"github.com/classlens/classlens/internal/artifact"
	"github.com/classlens/classlens/internal/rules"
)

// classify returns the subset of index types matching the classifier, in
// index order. Matching is exact fully-qualified-name equality; an empty
// result is a normal outcome, not an error.
func classify(idx *artifact.Index, c rules.Classifier) []*artifact.Type {
	var out []*artifact.Type
	for i := range idx.Types {
		t := &idx.Types[i]
		if classifierMatch(t, c) != "" {
			out = append(out, t)
		}
	}
	return out
}

// classifierMatch reports which predicate matched the type, or "" when
// none did. The returned string names the predicate kind and the matched
// name, e.g. "annotation:com.example.EnableFoo".
func classifierMatch(t *artifact.Type, c rules.Classifier) string {
	for _, name := range c.Annotations {
		if t.HasAnnotation(name) {
			return "annotation:" + name
		}
	}
	for _, name := range c.Superclasses {
		if t.Super == name {
			return "superclass:" + name
		}
	}
	for _, name := range c.Interfaces {
		if t.Implements(name) {
			return "interface:" + name
		}
	}
	return ""
}
