package semantics

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/funvibe/termcore/internal/term"
)

// Resolve turns the replacements of a Replacing term into a substitution
// map. Named replacements come first; unlabeled values then bind, in order,
// to the remaining dependencies of the base in declaration order.
func (e *Engine) Resolve(replacing term.ID) (term.Subst, error) {
	t, err := e.store.Get(replacing)
	if err != nil {
		return nil, err
	}
	r, ok := t.(term.Replacing)
	if !ok {
		return nil, fmt.Errorf("%s is a %s, not a Replacing term", replacing, t.Kind())
	}
	base, err := e.Dependencies(r.Base)
	if err != nil {
		return nil, err
	}
	return e.resolveAgainst(replacing, r, base)
}

func (e *Engine) resolveAgainst(id term.ID, r term.Replacing, baseDeps term.DepSet) (term.Subst, error) {
	var subst term.Subst
	for _, rep := range r.Replacements {
		v, ok := e.asVariable(rep.Target)
		if !ok {
			return nil, NewSubstitutionError(id, "target %s is not a variable", rep.Target)
		}
		next, err := subst.Bind(v, rep.Value)
		if err != nil {
			return nil, &SubstitutionError{Replacing: id, Reason: "duplicate target", Err: err}
		}
		subst = next
	}

	targets := subst.Targets()
	free := baseDeps.Without(targets.Contains).Sorted()
	if len(r.Unlabeled) > len(free) {
		return nil, NewSubstitutionError(id, "too many positional values: %d given, %d free variables",
			len(r.Unlabeled), len(free))
	}
	for i, value := range r.Unlabeled {
		subst = append(subst, term.Binding{Target: free[i], Value: value})
	}

	if len(r.Unlabeled) > 0 {
		e.log.Debug("resolved positional replacements",
			zap.Stringer("replacing", id),
			zap.Stringer("subst", subst))
	}
	return subst, nil
}

// asVariable follows transparent wrappers down to a Variable term.
func (e *Engine) asVariable(id term.ID) (term.VarID, bool) {
	for {
		t, err := e.store.Get(id)
		if err != nil {
			return 0, false
		}
		switch t := t.(type) {
		case term.VariableTerm:
			return t.Var, true
		case term.Defining:
			id = t.Base
		case term.TypeIs:
			id = t.Base
		default:
			return 0, false
		}
	}
}

// Apply rewrites id under subst. Terms that do not depend on any target
// keep their id; an empty map is the identity.
func (e *Engine) Apply(id term.ID, subst term.Subst) (term.ID, error) {
	if len(subst) == 0 {
		return id, nil
	}
	return e.apply(id, subst, subst.Targets(), make(map[term.ID]bool))
}

// ApplyToType applies subst to the computed type of id, which rewrites the
// variables listed by its FromType wrapper.
func (e *Engine) ApplyToType(id term.ID, subst term.Subst) (term.ID, error) {
	typ, err := e.ComputeType(id)
	if err != nil {
		return term.NoID, err
	}
	return e.Apply(typ, subst)
}

func (e *Engine) apply(id term.ID, subst term.Subst, targets term.DepSet, visiting map[term.ID]bool) (term.ID, error) {
	// Self references inside the term being rewritten are left as they are.
	if visiting[id] {
		return id, nil
	}
	d, err := e.Dependencies(id)
	if err != nil {
		return term.NoID, err
	}
	if !d.Intersects(targets) {
		return id, nil
	}

	t, err := e.store.Get(id)
	if err != nil {
		return term.NoID, err
	}
	visiting[id] = true
	defer delete(visiting, id)

	switch t := t.(type) {
	case term.VariableTerm:
		if value, ok := subst.Lookup(t.Var); ok {
			return value, nil
		}
		return id, nil

	case term.FromType:
		base, err := e.apply(t.Base, subst, targets, visiting)
		if err != nil {
			return term.NoID, err
		}
		var vars term.DepSet
		for _, v := range t.Vars {
			value, ok := subst.Lookup(v)
			if !ok {
				vars.Add(v)
				continue
			}
			// The replacement's own free variables move into the wrapper.
			vd, err := e.Dependencies(value)
			if err != nil {
				return term.NoID, err
			}
			vars.Union(vd)
		}
		return e.store.Insert(term.FromType{Base: base, Vars: vars.Vars()}), nil

	case term.Replacing:
		inner, err := e.Resolve(id)
		if err != nil {
			return term.NoID, err
		}
		innerTargets := inner.Targets()
		outer := subst.Without(innerTargets)
		base := t.Base
		if len(outer) > 0 {
			if base, err = e.apply(t.Base, outer, outer.Targets(), visiting); err != nil {
				return term.NoID, err
			}
		}
		reps := make([]term.Replacement, len(inner))
		for i, b := range inner {
			value, err := e.apply(b.Value, subst, targets, visiting)
			if err != nil {
				return term.NoID, err
			}
			reps[i] = term.Replacement{Target: e.store.VariableTerm(b.Target), Value: value}
		}
		return e.store.Insert(term.Replacing{Base: base, Replacements: reps}), nil

	default:
		var firstErr error
		out := term.MapIDs(t, func(child term.ID) term.ID {
			if firstErr != nil {
				return child
			}
			rewritten, err := e.apply(child, subst, targets, visiting)
			if err != nil {
				firstErr = err
				return child
			}
			return rewritten
		})
		if firstErr != nil {
			return term.NoID, firstErr
		}
		return e.store.Insert(out), nil
	}
}
