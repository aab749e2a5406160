package term

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateTarget is returned when a substitution would target the same
// variable twice.
var ErrDuplicateTarget = errors.New("variable already targeted")

// Binding maps one variable to its replacement term.
type Binding struct {
	Target VarID
	Value  ID
}

// Subst is a finite, target-unique mapping from variables to replacement
// terms. Iteration follows insertion order.
type Subst []Binding

// Lookup returns the replacement for v.
func (s Subst) Lookup(v VarID) (ID, bool) {
	for _, b := range s {
		if b.Target == v {
			return b.Value, true
		}
	}
	return NoID, false
}

// Targets returns the bound variables in insertion order.
func (s Subst) Targets() DepSet {
	var d DepSet
	for _, b := range s {
		d.Add(b.Target)
	}
	return d
}

// Bind returns s extended with v := value.
func (s Subst) Bind(v VarID, value ID) (Subst, error) {
	if _, ok := s.Lookup(v); ok {
		return s, fmt.Errorf("%s: %w", v, ErrDuplicateTarget)
	}
	out := make(Subst, len(s), len(s)+1)
	copy(out, s)
	return append(out, Binding{Target: v, Value: value}), nil
}

// Without drops the bindings of every variable in vars.
func (s Subst) Without(vars DepSet) Subst {
	var out Subst
	for _, b := range s {
		if !vars.Contains(b.Target) {
			out = append(out, b)
		}
	}
	return out
}

// Compose merges later into s. Where both bind a variable, s wins.
func (s Subst) Compose(later Subst) Subst {
	out := make(Subst, len(s), len(s)+len(later))
	copy(out, s)
	for _, b := range later {
		if _, ok := s.Lookup(b.Target); !ok {
			out = append(out, b)
		}
	}
	return out
}

// Equal compares bindings, ignoring order.
func (s Subst) Equal(other Subst) bool {
	if len(s) != len(other) {
		return false
	}
	for _, b := range s {
		if v, ok := other.Lookup(b.Target); !ok || v != b.Value {
			return false
		}
	}
	return true
}

func (s Subst) String() string {
	parts := make([]string, len(s))
	for i, b := range s {
		parts[i] = fmt.Sprintf("%s ↦ %s", b.Target, b.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
