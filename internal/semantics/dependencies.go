package semantics

import (
	"slices"

	"github.com/funvibe/termcore/internal/term"
)

// depResult is a dependency set that may still be waiting on terms that
// were on the analysis stack when it was computed.
type depResult struct {
	set      term.DepSet
	blocking []term.ID
}

func (r *depResult) union(other depResult) {
	r.set.Union(other.set)
	for _, id := range other.blocking {
		if !slices.Contains(r.blocking, id) {
			r.blocking = append(r.blocking, id)
		}
	}
}

// Dependencies returns the free variables the value of id varies with, in
// discovery order. The only error sources are malformed ids and
// Replacing terms whose substitution cannot be resolved.
func (e *Engine) Dependencies(id term.ID) (term.DepSet, error) {
	res, err := e.deps(id, nil)
	if err != nil {
		return term.DepSet{}, err
	}
	return res.set.Clone(), nil
}

// IsClosed reports whether id has no free variables.
func (e *Engine) IsClosed(id term.ID) (bool, error) {
	res, err := e.deps(id, nil)
	if err != nil {
		return false, err
	}
	return res.set.IsEmpty(), nil
}

func (e *Engine) deps(id term.ID, stack []term.ID) (depResult, error) {
	if d, ok := e.depCache[id]; ok {
		return depResult{set: d}, nil
	}
	// Cycle: report which term we are waiting on instead of recursing.
	if slices.Contains(stack, id) {
		return depResult{blocking: []term.ID{id}}, nil
	}

	t, err := e.store.Get(id)
	if err != nil {
		return depResult{}, err
	}
	stack = append(stack, id)

	var res depResult
	add := func(child term.ID) error {
		r, err := e.deps(child, stack)
		if err != nil {
			return err
		}
		res.union(r)
		return nil
	}

	switch t := t.(type) {
	case term.VariableTerm:
		err = e.addVariable(&res, t.Var, stack)
	case term.FromType:
		if err = add(t.Base); err == nil {
			for _, v := range t.Vars {
				if err = e.addVariable(&res, v, stack); err != nil {
					break
				}
			}
		}
	case term.Defining:
		err = add(t.Base)
	case term.TypeIs:
		err = add(t.Base)
	case term.Member:
		// A resolved projection varies with the projected value only.
		if def, ok := e.findDefinition(t.Base, t.Name); ok {
			err = add(def)
		} else {
			err = add(t.Base)
		}
	case term.Replacing:
		err = e.replacingDeps(&res, id, t, stack)
	case term.GodType, term.PrimitiveType, term.PrimitiveValue, term.Unique:
	default:
		for _, child := range term.Children(t) {
			if err = add(child); err != nil {
				break
			}
		}
	}
	if err != nil {
		return depResult{}, err
	}

	// The cycle through id closes here.
	res.blocking = slices.DeleteFunc(res.blocking, func(b term.ID) bool { return b == id })
	if len(res.blocking) == 0 {
		e.depCache[id] = res.set
	}
	return res, nil
}

// addVariable adds the dependencies of v's declared type, then v itself.
func (e *Engine) addVariable(res *depResult, v term.VarID, stack []term.ID) error {
	variable, err := e.store.Variable(v)
	if err != nil {
		return err
	}
	if variable.Type != term.NoID {
		r, err := e.deps(variable.Type, stack)
		if err != nil {
			return err
		}
		res.union(r)
	}
	res.set.Add(v)
	return nil
}

// replacingDeps is deps(base) without the substituted variables, plus the
// dependencies of every replacement value. A surviving variable keeps the
// dependencies of its declared type even when they name a target, since
// substitution leaves unbound variables untouched.
func (e *Engine) replacingDeps(res *depResult, id term.ID, t term.Replacing, stack []term.ID) error {
	base, err := e.deps(t.Base, stack)
	if err != nil {
		return err
	}
	subst, err := e.resolveAgainst(id, t, base.set)
	if err != nil {
		return err
	}

	targets := subst.Targets()
	res.union(depResult{blocking: base.blocking})
	for _, v := range base.set.Vars() {
		if targets.Contains(v) {
			continue
		}
		if err := e.addVariable(res, v, stack); err != nil {
			return err
		}
	}
	for _, b := range subst {
		r, err := e.deps(b.Value, stack)
		if err != nil {
			return err
		}
		res.union(r)
	}
	return nil
}
