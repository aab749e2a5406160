package semantics

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/funvibe/termcore/internal/store"
	"github.com/funvibe/termcore/internal/term"
)

// ComputeType returns the type of id, wrapped in FromType when the value
// depends on free variables. The result is cached in the store.
func (e *Engine) ComputeType(id term.ID) (term.ID, error) {
	if typ, ok := e.store.CachedType(id); ok {
		return typ, nil
	}
	if e.typing[id] {
		return term.NoID, &NotYetKnownError{ID: id}
	}
	t, err := e.store.Get(id)
	if err != nil {
		return term.NoID, err
	}

	e.typing[id] = true
	base, err := e.baseTypeOf(id, t)
	delete(e.typing, id)
	if err != nil {
		return term.NoID, err
	}

	deps, err := e.Dependencies(id)
	if err != nil {
		return term.NoID, err
	}
	typ := base
	if !deps.IsEmpty() {
		typ = e.store.Insert(term.FromType{Base: base, Vars: deps.Vars()})
	}
	if err := e.store.SetCachedType(id, typ); err != nil && !errors.Is(err, store.ErrTypeAlreadySet) {
		return term.NoID, err
	}
	return typ, nil
}

// BaseType is ComputeType without the FromType wrapper.
func (e *Engine) BaseType(id term.ID) (term.ID, error) {
	typ, err := e.ComputeType(id)
	if err != nil {
		return term.NoID, err
	}
	return e.strip(typ), nil
}

// CheckAscription verifies a TypeIs term. An exact ascription needs the
// types proven equal; a coercive one fails only when they are proven
// different.
func (e *Engine) CheckAscription(id term.ID) error {
	t, err := e.store.Get(id)
	if err != nil {
		return err
	}
	ti, ok := t.(term.TypeIs)
	if !ok {
		return fmt.Errorf("%s is a %s, not a TypeIs term", id, t.Kind())
	}

	actual, err := e.BaseType(ti.Base)
	if err != nil {
		return err
	}
	expected, err := e.normalType(ti.Type)
	if err != nil {
		return err
	}
	eq, err := e.Equal(expected, actual)
	if err != nil {
		return err
	}
	if eq.Verdict == No || (ti.Exact && eq.Verdict != Yes) {
		return &TypeMismatchError{Term: id, Expected: expected, Actual: actual, Verdict: eq.Verdict}
	}
	return nil
}

func (e *Engine) strip(typ term.ID) term.ID {
	if ft, ok := e.store.MustGet(typ).(term.FromType); ok {
		return ft.Base
	}
	return typ
}

// normalType reduces a type term and drops its FromType wrapper.
func (e *Engine) normalType(typ term.ID) (term.ID, error) {
	r, err := e.reduce(typ)
	if err != nil {
		return term.NoID, err
	}
	return e.strip(r), nil
}

func (e *Engine) baseTypeOf(id term.ID, t term.Term) (term.ID, error) {
	switch t := t.(type) {
	case term.Defining:
		return e.BaseType(t.Base)
	case term.TypeIs:
		return e.normalType(t.Type)
	case term.FromType, term.GodType, term.InductiveType, term.PrimitiveType:
		return e.store.God(), nil
	case term.InductiveValue:
		return t.Type, nil
	case term.IsSameVariant:
		return e.store.PrimType(term.PrimBool), nil
	case term.BuiltinOperation:
		if !t.Op.IsArithmetic() {
			return e.store.PrimType(term.PrimBool), nil
		}
		if len(t.Args) == 0 {
			return term.NoID, fmt.Errorf("%s: %s: %w", id, t.Op, term.ErrArity)
		}
		return e.BaseType(t.Args[0])
	case term.PrimitiveValue:
		return e.store.PrimType(t.Value.Kind), nil
	case term.Unique:
		return e.store.PrimType(term.PrimUnique), nil
	case term.VariableTerm:
		v, err := e.store.Variable(t.Var)
		if err != nil {
			return term.NoID, err
		}
		if v.Type == term.NoID {
			return term.NoID, &NotYetKnownError{ID: id}
		}
		return e.normalType(v.Type)
	case term.Replacing:
		return e.replacingType(id, t)
	case term.Pick:
		return e.pickType(id, t)
	case term.Member:
		def, ok := e.findDefinition(t.Base, t.Name)
		if !ok {
			return term.NoID, &UnresolvedMemberError{Term: id, Name: t.Name}
		}
		return e.BaseType(def)
	default:
		panic("semantics.baseTypeOf: unknown term kind")
	}
}

// replacingType is the type of the base with the substitution applied. Each
// replacement value must not be proven to have a type other than the
// declared type of the variable it replaces.
func (e *Engine) replacingType(id term.ID, t term.Replacing) (term.ID, error) {
	subst, err := e.Resolve(id)
	if err != nil {
		return term.NoID, err
	}
	for _, b := range subst {
		if err := e.checkBinding(id, b, subst); err != nil {
			return term.NoID, err
		}
	}

	baseType, err := e.ComputeType(t.Base)
	if err != nil {
		return term.NoID, err
	}
	applied, err := e.Apply(baseType, subst)
	if err != nil {
		return term.NoID, err
	}
	return e.normalType(applied)
}

func (e *Engine) checkBinding(id term.ID, b term.Binding, subst term.Subst) error {
	v, err := e.store.Variable(b.Target)
	if err != nil {
		return err
	}
	if v.Type == term.NoID {
		return nil
	}
	declared, err := e.Apply(v.Type, subst)
	if err != nil {
		return err
	}
	if declared, err = e.normalType(declared); err != nil {
		return err
	}
	actual, err := e.BaseType(b.Value)
	if IsNotYetKnown(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return e.rejectMismatch(id, declared, actual)
}

// pickType takes the type of the first branch. Every other branch and every
// condition must not be proven to disagree.
func (e *Engine) pickType(id term.ID, t term.Pick) (term.ID, error) {
	branches := pickBranches(t)
	first, err := e.BaseType(branches[0])
	if err != nil {
		return term.NoID, err
	}
	for _, b := range branches[1:] {
		typ, err := e.BaseType(b)
		if IsNotYetKnown(err) {
			continue
		}
		if err != nil {
			return term.NoID, err
		}
		if err := e.rejectMismatch(id, first, typ); err != nil {
			return term.NoID, err
		}
	}

	boolType := e.store.PrimType(term.PrimBool)
	for _, c := range t.Clauses {
		typ, err := e.BaseType(c.Cond)
		if IsNotYetKnown(err) {
			continue
		}
		if err != nil {
			return term.NoID, err
		}
		if err := e.rejectMismatch(id, boolType, typ); err != nil {
			return term.NoID, err
		}
	}
	return first, nil
}

func (e *Engine) rejectMismatch(id, expected, actual term.ID) error {
	eq, err := e.Equal(expected, actual)
	if err != nil {
		return err
	}
	if eq.Verdict == No {
		return &TypeMismatchError{Term: id, Expected: expected, Actual: actual, Verdict: No}
	}
	return nil
}

// pickBranches lists the clause values of p followed by its else value.
func pickBranches(p term.Pick) []term.ID {
	return append(lo.Map(p.Clauses, func(c term.Clause, _ int) term.ID { return c.Value }), p.Else)
}
