package semantics

import (
	"go.uber.org/zap"

	"github.com/funvibe/termcore/internal/term"
)

// Reduce rewrites id to its normal form. Equal normal forms share an id.
func (e *Engine) Reduce(id term.ID) (term.ID, error) {
	r, err := e.reduce(id)
	if err != nil {
		return term.NoID, err
	}
	if !e.cfg.CheckFixpoint {
		return r, nil
	}

	again, err := e.reduce(r)
	if err != nil {
		return term.NoID, err
	}
	if again != r {
		fe := &FixpointError{Term: id, Once: r, Twice: again}
		e.log.Error("reduction is not idempotent",
			zap.Stringer("term", id),
			zap.Stringer("once", r),
			zap.Stringer("twice", again))
		return term.NoID, fe
	}
	return r, nil
}

func (e *Engine) reduce(id term.ID) (term.ID, error) {
	if r, ok := e.reduced[id]; ok {
		return r, nil
	}
	// A term that reduces through itself stays as it is.
	if e.reducing[id] {
		return id, nil
	}
	t, err := e.store.Get(id)
	if err != nil {
		return term.NoID, err
	}

	e.reducing[id] = true
	r, err := e.reduceTerm(id, t)
	delete(e.reducing, id)
	if err != nil {
		return term.NoID, err
	}
	e.reduced[id] = r
	return r, nil
}

func (e *Engine) reduceTerm(id term.ID, t term.Term) (term.ID, error) {
	switch t := t.(type) {
	case term.Defining:
		return e.reduce(t.Base)
	case term.TypeIs:
		return e.reduce(t.Base)
	case term.Replacing:
		return e.reduceReplacing(id, t)
	case term.BuiltinOperation:
		return e.reduceOperation(t)
	case term.Pick:
		return e.reducePick(t)
	case term.InductiveValue:
		fields, changed, err := e.reduceAll(t.Fields)
		if err != nil || !changed {
			return id, err
		}
		return e.store.Insert(term.InductiveValue{Type: t.Type, Variant: t.Variant, Fields: fields}), nil
	case term.IsSameVariant:
		return e.reduceSameVariant(t)
	case term.Member:
		def, ok := e.findDefinition(t.Base, t.Name)
		if !ok {
			return id, nil
		}
		return e.reduce(def)
	case term.FromType:
		return e.reduceFromType(t)
	case term.GodType, term.InductiveType, term.PrimitiveType, term.PrimitiveValue,
		term.VariableTerm, term.Unique:
		return id, nil
	default:
		panic("semantics.reduce: unknown term kind")
	}
}

// reduceReplacing substitutes the closed replacements into the base. Open
// ones stay behind as a residual Replacing over the reduced base, minus
// those whose target the base no longer depends on.
func (e *Engine) reduceReplacing(id term.ID, t term.Replacing) (term.ID, error) {
	subst, err := e.Resolve(id)
	if err != nil {
		return term.NoID, err
	}

	var closed, open term.Subst
	for _, b := range subst {
		value, err := e.reduce(b.Value)
		if err != nil {
			return term.NoID, err
		}
		isClosed, err := e.IsClosed(value)
		if err != nil {
			return term.NoID, err
		}
		if isClosed {
			closed = append(closed, term.Binding{Target: b.Target, Value: value})
		} else {
			open = append(open, term.Binding{Target: b.Target, Value: value})
		}
	}

	base, err := e.Apply(t.Base, closed)
	if err != nil {
		return term.NoID, err
	}
	base, err = e.reduce(base)
	if err != nil {
		return term.NoID, err
	}
	if len(open) == 0 {
		return base, nil
	}

	baseDeps, err := e.Dependencies(base)
	if err != nil {
		return term.NoID, err
	}
	var reps []term.Replacement
	for _, b := range open {
		if !baseDeps.Contains(b.Target) {
			continue
		}
		reps = append(reps, term.Replacement{Target: e.store.VariableTerm(b.Target), Value: b.Value})
	}
	if len(reps) == 0 {
		return base, nil
	}
	return e.store.Insert(term.Replacing{Base: base, Replacements: reps}), nil
}

func (e *Engine) reduceOperation(t term.BuiltinOperation) (term.ID, error) {
	args, _, err := e.reduceAll(t.Args)
	if err != nil {
		return term.NoID, err
	}

	values := make([]term.Value, 0, len(args))
	for _, a := range args {
		pv, ok := e.store.MustGet(a).(term.PrimitiveValue)
		if !ok {
			break
		}
		values = append(values, pv.Value)
	}
	if len(values) == len(args) {
		// A failed fold (division by zero, kind mismatch) keeps the operation.
		if v, err := term.Eval(t.Op, values); err == nil {
			return e.store.Literal(v), nil
		}
	}
	return e.store.Insert(term.BuiltinOperation{Op: t.Op, Args: args}), nil
}

// reducePick keeps the clauses whose condition is not yet decided. The first
// clause that is known true ends the walk; nothing after it is reduced.
func (e *Engine) reducePick(t term.Pick) (term.ID, error) {
	var kept []term.Clause
	result := term.NoID
	for _, c := range t.Clauses {
		cond, err := e.reduce(c.Cond)
		if err != nil {
			return term.NoID, err
		}
		if b, ok := e.boolLiteral(cond); ok {
			if !b {
				continue
			}
			if result, err = e.reduce(c.Value); err != nil {
				return term.NoID, err
			}
			break
		}
		value, err := e.reduce(c.Value)
		if err != nil {
			return term.NoID, err
		}
		kept = append(kept, term.Clause{Cond: cond, Value: value})
	}

	if result == term.NoID {
		var err error
		if result, err = e.reduce(t.Else); err != nil {
			return term.NoID, err
		}
	}
	if len(kept) == 0 {
		return result, nil
	}
	return e.store.Insert(term.Pick{Clauses: kept, Else: result}), nil
}

func (e *Engine) reduceSameVariant(t term.IsSameVariant) (term.ID, error) {
	left, err := e.reduce(t.Left)
	if err != nil {
		return term.NoID, err
	}
	right, err := e.reduce(t.Right)
	if err != nil {
		return term.NoID, err
	}
	lv, lok := e.store.MustGet(left).(term.InductiveValue)
	rv, rok := e.store.MustGet(right).(term.InductiveValue)
	if lok && rok {
		return e.store.Bool(lv.Variant == rv.Variant), nil
	}
	return e.store.Insert(term.IsSameVariant{Left: left, Right: right}), nil
}

func (e *Engine) reduceFromType(t term.FromType) (term.ID, error) {
	base, err := e.reduce(t.Base)
	if err != nil {
		return term.NoID, err
	}
	if len(t.Vars) == 0 {
		return base, nil
	}
	vars := term.NewDepSet(t.Vars...)
	if inner, ok := e.store.MustGet(base).(term.FromType); ok {
		base = inner.Base
		vars.Union(term.NewDepSet(inner.Vars...))
	}
	return e.store.Insert(term.FromType{Base: base, Vars: vars.Vars()}), nil
}

// reduceAll reduces every id in ids and reports whether any of them changed.
func (e *Engine) reduceAll(ids []term.ID) ([]term.ID, bool, error) {
	out := make([]term.ID, len(ids))
	changed := false
	for i, id := range ids {
		r, err := e.reduce(id)
		if err != nil {
			return nil, false, err
		}
		out[i] = r
		changed = changed || r != id
	}
	return out, changed, nil
}

func (e *Engine) boolLiteral(id term.ID) (bool, bool) {
	pv, ok := e.store.MustGet(id).(term.PrimitiveValue)
	if !ok || pv.Value.Kind != term.PrimBool {
		return false, false
	}
	return pv.Value.Bool, true
}

// findDefinition looks name up in the Defining terms reachable from id
// through transparent wrappers, innermost last.
func (e *Engine) findDefinition(id term.ID, name string) (term.ID, bool) {
	for {
		t, err := e.store.Get(id)
		if err != nil {
			return term.NoID, false
		}
		switch t := t.(type) {
		case term.Defining:
			for _, d := range t.Definitions {
				if d.Name == name {
					return d.Value, true
				}
			}
			id = t.Base
		case term.TypeIs:
			id = t.Base
		default:
			return term.NoID, false
		}
	}
}
