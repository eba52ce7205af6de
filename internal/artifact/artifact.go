// Package artifact models the in-memory symbol table of a compiled JVM
// application: type declarations, annotations, method signatures, and the
// invocation records extracted from each method body. ClassLens never reads
// class files itself; an index document is produced by a separate bytecode
// extraction step and loaded here.
package artifact

// Trace status values for a method's invocation stream.
const (
	TraceOK          = "ok"
	TraceUnavailable = "unavailable"
	TraceMalformed   = "malformed"
)

// Annotation is a single annotation marker on a type, with optional
// attribute values (e.g. debug: "true" on an enabling annotation).
type Annotation struct {
	Name       string            `json:"name" yaml:"name"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Invocation is one invocation instruction recorded in a method body:
// the receiver type, the invoked member, and the bytecode offset. Order
// in the slice is bytecode order, not execution order.
type Invocation struct {
	Receiver string `json:"receiver" yaml:"receiver"`
	Member   string `json:"member" yaml:"member"`
	Offset   int    `json:"offset" yaml:"offset"`
}

// Method describes one declared method: name, parameter and return type
// names, and the invocation records scanned from its body. TraceStatus
// is "ok" unless the extraction step could not recover the instruction
// stream, in which case Calls must be ignored.
type Method struct {
	Name        string       `json:"name" yaml:"name"`
	Params      []string     `json:"params,omitempty" yaml:"params,omitempty"`
	Returns     string       `json:"returns,omitempty" yaml:"returns,omitempty"`
	TraceStatus string       `json:"trace_status,omitempty" yaml:"trace_status,omitempty"`
	Calls       []Invocation `json:"calls,omitempty" yaml:"calls,omitempty"`
}

// Type describes one class or interface of the target application.
type Type struct {
	Name        string       `json:"name" yaml:"name"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Super       string       `json:"super,omitempty" yaml:"super,omitempty"`
	Interfaces  []string     `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Methods     []Method     `json:"methods,omitempty" yaml:"methods,omitempty"`
}

// Index is the full symbol table for one analysis run. Types preserves
// document order; engine output order follows it.
type Index struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Types  []Type `json:"types" yaml:"types"`
}

// HasAnnotation reports whether the type carries an annotation with the
// given fully qualified name. Matching is exact string equality.
func (t *Type) HasAnnotation(name string) bool {
	for _, a := range t.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// AnnotationAttr returns the attribute value for an annotation, or ""
// when either the annotation or the attribute is absent.
func (t *Type) AnnotationAttr(annotation, attr string) string {
	for _, a := range t.Annotations {
		if a.Name == annotation {
			return a.Attributes[attr]
		}
	}
	return ""
}

// Implements reports whether the type's declared interface set contains
// the given fully qualified name.
func (t *Type) Implements(name string) bool {
	for _, iface := range t.Interfaces {
		if iface == name {
			return true
		}
	}
	return false
}
