package engine

import (
	"github.com/classlens/classlens/internal/artifact"
	"github.com/classlens/classlens/internal/rules"
)

// locateConfigMethod finds the type's configuration method: the first
// declared method (declaration order) whose name and single parameter
// type match one of the designated signatures. When several methods
// match, later ones are ignored. Absence is a normal outcome reported
// via ok=false, never an error.
func locateConfigMethod(t *artifact.Type, sigs []rules.Signature) (*artifact.Method, bool) {
	for i := range t.Methods {
		m := &t.Methods[i]
		if len(m.Params) != 1 {
			continue
		}
		for _, sig := range sigs {
			if m.Name == sig.Name && m.Params[0] == sig.Param {
				return m, true
			}
		}
	}
	return nil, false
}
