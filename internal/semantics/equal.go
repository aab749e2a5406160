package semantics

import (
	"go.uber.org/zap"

	"github.com/funvibe/termcore/internal/term"
)

// Verdict is the outcome of an equality query. Unknown is never an error:
// the terms may become comparable once more is substituted.
type Verdict uint8

const (
	Unknown Verdict = iota
	Yes
	No
)

func (v Verdict) String() string {
	switch v {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return "Unknown"
	}
}

// Equality is a verdict together with the substitutions, one per side,
// under which a Yes holds. They hold only the bindings found by the query,
// never the contexts the caller passed in.
type Equality struct {
	Verdict     Verdict
	Left, Right term.Subst
}

func yes(left, right term.Subst) Equality {
	return Equality{Verdict: Yes, Left: left, Right: right}
}

var (
	unknown = Equality{Verdict: Unknown}
	no      = Equality{Verdict: No}
)

func (q Equality) swap() Equality {
	return Equality{Verdict: q.Verdict, Left: q.Right, Right: q.Left}
}

// And holds when both hold. A No on either side wins over Unknown; two Yes
// results whose bindings disagree give Unknown.
func And(a, b Equality) Equality {
	switch {
	case a.Verdict == No || b.Verdict == No:
		return no
	case a.Verdict == Yes && b.Verdict == Yes:
		if !consistent(a.Left, b.Left) || !consistent(a.Right, b.Right) {
			return unknown
		}
		return yes(a.Left.Compose(b.Left), a.Right.Compose(b.Right))
	default:
		return unknown
	}
}

func consistent(a, b term.Subst) bool {
	for _, bind := range b {
		if v, ok := a.Lookup(bind.Target); ok && v != bind.Value {
			return false
		}
	}
	return true
}

// Or holds when either holds. The first Yes supplies the substitutions.
func Or(a, b Equality) Equality {
	switch {
	case a.Verdict == Yes:
		return a
	case b.Verdict == Yes:
		return b
	case a.Verdict == No && b.Verdict == No:
		return no
	default:
		return unknown
	}
}

// Equal compares two terms with no prior substitutions and the configured
// recursion limit.
func (e *Engine) Equal(left, right term.ID) (Equality, error) {
	return e.IsEqual(left, nil, right, nil, e.cfg.EqualityLimit)
}

// IsEqual decides whether left under leftSubs is definitionally equal to
// right under rightSubs. limit bounds the recursion depth; running out
// yields Unknown, never No.
func (e *Engine) IsEqual(left term.ID, leftSubs term.Subst, right term.ID, rightSubs term.Subst, limit int) (Equality, error) {
	q, err := e.isEqual(left, leftSubs, right, rightSubs, limit)
	if err != nil || q.Verdict != Yes {
		return q, err
	}
	q.Left = e.trim(q.Left)
	q.Right = e.trim(q.Right)
	return q, nil
}

func (e *Engine) isEqual(left term.ID, ls term.Subst, right term.ID, rs term.Subst, limit int) (Equality, error) {
	if left == right && ls.Equal(rs) {
		return yes(nil, nil), nil
	}
	lt, err := e.store.Get(left)
	if err != nil {
		return unknown, err
	}
	rt, err := e.store.Get(right)
	if err != nil {
		return unknown, err
	}
	// Canonical leaves are decided without spending the budget.
	if isLeaf(lt) && isLeaf(rt) {
		if left == right {
			return yes(nil, nil), nil
		}
		return no, nil
	}
	if limit <= 0 {
		e.log.Debug("equality limit reached",
			zap.Stringer("left", left),
			zap.Stringer("right", right))
		return unknown, nil
	}

	if left, err = e.normalize(left, ls); err != nil {
		return unknown, err
	}
	if right, err = e.normalize(right, rs); err != nil {
		return unknown, err
	}
	if left == right {
		return yes(nil, nil), nil
	}

	q, err := e.equalByKind(left, ls, right, rs, limit)
	if err != nil || q.Verdict != Unknown {
		return q, err
	}
	q, err = e.equalByKind(right, rs, left, ls, limit)
	return q.swap(), err
}

// normalize is reduce(apply(id, subs)).
func (e *Engine) normalize(id term.ID, subs term.Subst) (term.ID, error) {
	applied, err := e.Apply(id, subs)
	if err != nil {
		return term.NoID, err
	}
	return e.reduce(applied)
}

// equalByKind applies the rule for the kind of a. Both ids are normal forms.
func (e *Engine) equalByKind(a term.ID, as term.Subst, b term.ID, bs term.Subst, limit int) (Equality, error) {
	at, bt := e.store.MustGet(a), e.store.MustGet(b)

	switch at := at.(type) {
	case term.VariableTerm:
		return e.bindVariable(at.Var, as, b, bs, limit)
	case term.Pick:
		return e.equalPick(at, as, b, bs, limit)
	case term.GodType, term.PrimitiveType, term.PrimitiveValue, term.Unique:
		if isCanonical(bt) {
			return no, nil
		}
		return unknown, nil
	case term.InductiveValue:
		bv, ok := bt.(term.InductiveValue)
		if !ok {
			if isCanonical(bt) {
				return no, nil
			}
			return unknown, nil
		}
		if at.Variant != bv.Variant || len(at.Fields) != len(bv.Fields) {
			return no, nil
		}
		return e.equalAll(append([]term.ID{at.Type}, at.Fields...), as,
			append([]term.ID{bv.Type}, bv.Fields...), bs, limit, false)
	case term.InductiveType:
		bi, ok := bt.(term.InductiveType)
		if !ok {
			if isCanonical(bt) {
				return no, nil
			}
			return unknown, nil
		}
		if !sameShape(at, bi) {
			return no, nil
		}
		return e.equalAll(term.Children(at), as, term.Children(bi), bs, limit, false)
	case term.FromType:
		bf, ok := bt.(term.FromType)
		if !ok || !term.NewDepSet(at.Vars...).Equal(term.NewDepSet(bf.Vars...)) {
			return unknown, nil
		}
		return e.isEqual(at.Base, as, bf.Base, bs, limit-1)
	default:
		return e.equalResidual(at, as, bt, bs, limit)
	}
}

// bindVariable makes v stand for b.
func (e *Engine) bindVariable(v term.VarID, as term.Subst, b term.ID, bs term.Subst, limit int) (Equality, error) {
	deps, err := e.Dependencies(b)
	if err != nil {
		return unknown, err
	}
	if deps.Contains(v) {
		return unknown, nil
	}

	variable, err := e.store.Variable(v)
	if err != nil {
		return unknown, err
	}
	if variable.Type != term.NoID {
		declared, err := e.normalType(variable.Type)
		if err != nil {
			return unknown, err
		}
		actual, err := e.BaseType(b)
		switch {
		case IsNotYetKnown(err):
		case err != nil:
			return unknown, err
		default:
			q, err := e.isEqual(declared, nil, actual, nil, limit-1)
			if err != nil {
				return unknown, err
			}
			if q.Verdict == No {
				return no, nil
			}
		}
	}

	if _, ok := as.Lookup(v); ok {
		return unknown, nil
	}
	return yes(term.Subst{{Target: v, Value: b}}, nil), nil
}

// equalPick compares every branch of a residual Pick against b: Yes when
// all branches are equal to it, No when none can be.
func (e *Engine) equalPick(p term.Pick, as term.Subst, b term.ID, bs term.Subst, limit int) (Equality, error) {
	all := yes(nil, nil)
	some := no
	for _, branch := range pickBranches(p) {
		q, err := e.isEqual(branch, as, b, bs, limit-1)
		if err != nil {
			return unknown, err
		}
		all = And(all, q)
		some = Or(some, q)
	}
	switch {
	case all.Verdict == Yes:
		return all, nil
	case some.Verdict == No:
		return no, nil
	default:
		return unknown, nil
	}
}

// equalResidual compares two stuck terms of the same shape component-wise.
// Stuck terms are never proven different: a component No only means the
// terms are not known equal yet.
func (e *Engine) equalResidual(at term.Term, as term.Subst, bt term.Term, bs term.Subst, limit int) (Equality, error) {
	var left, right []term.ID
	switch a := at.(type) {
	case term.BuiltinOperation:
		b, ok := bt.(term.BuiltinOperation)
		if !ok || a.Op != b.Op || len(a.Args) != len(b.Args) {
			return unknown, nil
		}
		left, right = a.Args, b.Args
	case term.IsSameVariant:
		b, ok := bt.(term.IsSameVariant)
		if !ok {
			return unknown, nil
		}
		left, right = []term.ID{a.Left, a.Right}, []term.ID{b.Left, b.Right}
	case term.Member:
		b, ok := bt.(term.Member)
		if !ok || a.Name != b.Name {
			return unknown, nil
		}
		left, right = []term.ID{a.Base}, []term.ID{b.Base}
	case term.Replacing:
		b, ok := bt.(term.Replacing)
		if !ok || len(a.Replacements) != len(b.Replacements) {
			return unknown, nil
		}
		left, right = []term.ID{a.Base}, []term.ID{b.Base}
		for i := range a.Replacements {
			if a.Replacements[i].Target != b.Replacements[i].Target {
				return unknown, nil
			}
			left = append(left, a.Replacements[i].Value)
			right = append(right, b.Replacements[i].Value)
		}
	default:
		return unknown, nil
	}
	return e.equalAll(left, as, right, bs, limit, true)
}

// equalAll compares left[i] with right[i] in order, threading the
// substitutions found so far into each later comparison.
func (e *Engine) equalAll(left []term.ID, as term.Subst, right []term.ID, bs term.Subst, limit int, residual bool) (Equality, error) {
	acc := yes(nil, nil)
	for i := range left {
		q, err := e.isEqual(left[i], as.Compose(acc.Left), right[i], bs.Compose(acc.Right), limit-1)
		if err != nil {
			return unknown, err
		}
		if q.Verdict == No && residual {
			q = unknown
		}
		if acc = And(acc, q); acc.Verdict != Yes {
			return acc, nil
		}
	}
	return acc, nil
}

// trim drops bindings that map a variable to its own Variable term.
func (e *Engine) trim(s term.Subst) term.Subst {
	for {
		var out term.Subst
		for _, b := range s {
			if self, ok := e.store.Lookup(term.VariableTerm{Var: b.Target}); ok && self == b.Value {
				continue
			}
			out = append(out, b)
		}
		if len(out) == len(s) {
			return out
		}
		s = out
	}
}

func isLeaf(t term.Term) bool {
	switch t.(type) {
	case term.GodType, term.PrimitiveType, term.PrimitiveValue, term.Unique:
		return true
	}
	return false
}

// isCanonical reports whether t is a head that can be told apart from any
// other canonical head by its kind and payload alone.
func isCanonical(t term.Term) bool {
	switch t.(type) {
	case term.InductiveValue, term.InductiveType:
		return true
	}
	return isLeaf(t)
}

func sameShape(a, b term.InductiveType) bool {
	if a.Name != b.Name || len(a.Params) != len(b.Params) || len(a.Variants) != len(b.Variants) {
		return false
	}
	for i := range a.Variants {
		if a.Variants[i].Tag != b.Variants[i].Tag || len(a.Variants[i].Fields) != len(b.Variants[i].Fields) {
			return false
		}
	}
	return true
}
