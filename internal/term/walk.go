package term

// Children returns every id directly referenced by t, in field order.
// Variables contribute nothing here: their declared type is reached through
// the store, not through the term payload.
func Children(t Term) []ID {
	switch t := t.(type) {
	case Defining:
		ids := []ID{t.Base}
		for _, d := range t.Definitions {
			ids = append(ids, d.Value)
		}
		return ids
	case FromType:
		return []ID{t.Base}
	case InductiveType:
		ids := append([]ID{}, t.Params...)
		for _, v := range t.Variants {
			ids = append(ids, v.Fields...)
		}
		return ids
	case InductiveValue:
		return append([]ID{t.Type}, t.Fields...)
	case IsSameVariant:
		return []ID{t.Left, t.Right}
	case Member:
		return []ID{t.Base}
	case Pick:
		ids := make([]ID, 0, 2*len(t.Clauses)+1)
		for _, c := range t.Clauses {
			ids = append(ids, c.Cond, c.Value)
		}
		return append(ids, t.Else)
	case BuiltinOperation:
		return append([]ID{}, t.Args...)
	case Replacing:
		ids := []ID{t.Base}
		for _, r := range t.Replacements {
			ids = append(ids, r.Target, r.Value)
		}
		return append(ids, t.Unlabeled...)
	case TypeIs:
		return []ID{t.Base, t.Type}
	case GodType, PrimitiveType, PrimitiveValue, VariableTerm, Unique:
		return nil
	default:
		panic("term.Children: unknown term kind")
	}
}

// MapIDs returns a copy of t with every directly referenced id passed
// through f. Slices are copied; t itself is never modified.
func MapIDs(t Term, f func(ID) ID) Term {
	mapAll := func(ids []ID) []ID {
		if ids == nil {
			return nil
		}
		out := make([]ID, len(ids))
		for i, id := range ids {
			out[i] = f(id)
		}
		return out
	}

	switch t := t.(type) {
	case Defining:
		defs := make([]Definition, len(t.Definitions))
		for i, d := range t.Definitions {
			defs[i] = Definition{Name: d.Name, Value: f(d.Value)}
		}
		return Defining{Base: f(t.Base), Definitions: defs}
	case FromType:
		return FromType{Base: f(t.Base), Vars: append([]VarID(nil), t.Vars...)}
	case InductiveType:
		variants := make([]Variant, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = Variant{Tag: v.Tag, Fields: mapAll(v.Fields)}
		}
		return InductiveType{Name: t.Name, Params: mapAll(t.Params), Variants: variants}
	case InductiveValue:
		return InductiveValue{Type: f(t.Type), Variant: t.Variant, Fields: mapAll(t.Fields)}
	case IsSameVariant:
		return IsSameVariant{Left: f(t.Left), Right: f(t.Right)}
	case Member:
		return Member{Base: f(t.Base), Name: t.Name}
	case Pick:
		clauses := make([]Clause, len(t.Clauses))
		for i, c := range t.Clauses {
			clauses[i] = Clause{Cond: f(c.Cond), Value: f(c.Value)}
		}
		return Pick{Clauses: clauses, Else: f(t.Else)}
	case BuiltinOperation:
		return BuiltinOperation{Op: t.Op, Args: mapAll(t.Args)}
	case Replacing:
		reps := make([]Replacement, len(t.Replacements))
		for i, r := range t.Replacements {
			reps[i] = Replacement{Target: f(r.Target), Value: f(r.Value)}
		}
		return Replacing{Base: f(t.Base), Replacements: reps, Unlabeled: mapAll(t.Unlabeled)}
	case TypeIs:
		return TypeIs{Base: f(t.Base), Type: f(t.Type), Exact: t.Exact}
	case GodType, PrimitiveType, PrimitiveValue, VariableTerm, Unique:
		return t
	default:
		panic("term.MapIDs: unknown term kind")
	}
}
