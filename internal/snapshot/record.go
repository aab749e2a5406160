package snapshot

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/termcore/internal/term"
)

// record is the YAML payload of one term row. Only the fields of the row's
// kind are set.
type record struct {
	Base         term.ID             `yaml:"base,omitempty"`
	Definitions  []definitionRecord  `yaml:"definitions,omitempty"`
	Vars         []term.VarID        `yaml:"vars,omitempty"`
	Name         string              `yaml:"name,omitempty"`
	Params       []term.ID           `yaml:"params,omitempty"`
	Variants     []variantRecord     `yaml:"variants,omitempty"`
	Type         term.ID             `yaml:"type,omitempty"`
	Variant      string              `yaml:"variant,omitempty"`
	Fields       []term.ID           `yaml:"fields,omitempty"`
	Left         term.ID             `yaml:"left,omitempty"`
	Right        term.ID             `yaml:"right,omitempty"`
	Clauses      []clauseRecord      `yaml:"clauses,omitempty"`
	Else         term.ID             `yaml:"else,omitempty"`
	Op           string              `yaml:"op,omitempty"`
	Args         []term.ID           `yaml:"args,omitempty"`
	Prim         string              `yaml:"prim,omitempty"`
	Value        *valueRecord        `yaml:"value,omitempty"`
	Replacements []replacementRecord `yaml:"replacements,omitempty"`
	Unlabeled    []term.ID           `yaml:"unlabeled,omitempty"`
	Exact        bool                `yaml:"exact,omitempty"`
	Var          term.VarID          `yaml:"var,omitempty"`
	Token        string              `yaml:"token,omitempty"`
}

type definitionRecord struct {
	Name  string  `yaml:"name"`
	Value term.ID `yaml:"value"`
}

type variantRecord struct {
	Tag    string    `yaml:"tag"`
	Fields []term.ID `yaml:"fields,omitempty"`
}

type clauseRecord struct {
	Cond  term.ID `yaml:"cond"`
	Value term.ID `yaml:"value"`
}

type replacementRecord struct {
	Target term.ID `yaml:"target"`
	Value  term.ID `yaml:"value"`
}

type valueRecord struct {
	Kind string `yaml:"kind"`
	Int  int64  `yaml:"int,omitempty"`
	Bool bool   `yaml:"bool,omitempty"`
}

func encode(t term.Term) ([]byte, error) {
	var r record
	switch t := t.(type) {
	case term.Defining:
		r.Base = t.Base
		for _, d := range t.Definitions {
			r.Definitions = append(r.Definitions, definitionRecord{Name: d.Name, Value: d.Value})
		}
	case term.FromType:
		r.Base, r.Vars = t.Base, t.Vars
	case term.GodType:
	case term.InductiveType:
		r.Name, r.Params = t.Name, t.Params
		for _, v := range t.Variants {
			r.Variants = append(r.Variants, variantRecord{Tag: v.Tag, Fields: v.Fields})
		}
	case term.InductiveValue:
		r.Type, r.Variant, r.Fields = t.Type, t.Variant, t.Fields
	case term.IsSameVariant:
		r.Left, r.Right = t.Left, t.Right
	case term.Member:
		r.Base, r.Name = t.Base, t.Name
	case term.Pick:
		for _, c := range t.Clauses {
			r.Clauses = append(r.Clauses, clauseRecord{Cond: c.Cond, Value: c.Value})
		}
		r.Else = t.Else
	case term.BuiltinOperation:
		r.Op, r.Args = t.Op.String(), t.Args
	case term.PrimitiveType:
		r.Prim = t.Prim.String()
	case term.PrimitiveValue:
		r.Value = &valueRecord{Kind: t.Value.Kind.String(), Int: t.Value.Int, Bool: t.Value.Bool}
	case term.Replacing:
		r.Base, r.Unlabeled = t.Base, t.Unlabeled
		for _, rep := range t.Replacements {
			r.Replacements = append(r.Replacements, replacementRecord{Target: rep.Target, Value: rep.Value})
		}
	case term.TypeIs:
		r.Base, r.Type, r.Exact = t.Base, t.Type, t.Exact
	case term.VariableTerm:
		r.Var = t.Var
	case term.Unique:
		r.Token = t.Token.String()
	default:
		return nil, fmt.Errorf("cannot encode %T", t)
	}
	return yaml.Marshal(&r)
}

func decode(kind term.Kind, payload []byte) (term.Term, error) {
	var r record
	if err := yaml.Unmarshal(payload, &r); err != nil {
		return nil, err
	}

	switch kind {
	case term.KindDefining:
		defs := make([]term.Definition, len(r.Definitions))
		for i, d := range r.Definitions {
			defs[i] = term.Definition{Name: d.Name, Value: d.Value}
		}
		return term.Defining{Base: r.Base, Definitions: defs}, nil
	case term.KindFromType:
		return term.FromType{Base: r.Base, Vars: r.Vars}, nil
	case term.KindGodType:
		return term.GodType{}, nil
	case term.KindInductiveType:
		variants := make([]term.Variant, len(r.Variants))
		for i, v := range r.Variants {
			variants[i] = term.Variant{Tag: v.Tag, Fields: v.Fields}
		}
		return term.InductiveType{Name: r.Name, Params: r.Params, Variants: variants}, nil
	case term.KindInductiveValue:
		return term.InductiveValue{Type: r.Type, Variant: r.Variant, Fields: r.Fields}, nil
	case term.KindIsSameVariant:
		return term.IsSameVariant{Left: r.Left, Right: r.Right}, nil
	case term.KindMember:
		return term.Member{Base: r.Base, Name: r.Name}, nil
	case term.KindPick:
		clauses := make([]term.Clause, len(r.Clauses))
		for i, c := range r.Clauses {
			clauses[i] = term.Clause{Cond: c.Cond, Value: c.Value}
		}
		return term.Pick{Clauses: clauses, Else: r.Else}, nil
	case term.KindBuiltinOperation:
		op, ok := term.OpByName(r.Op)
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", r.Op)
		}
		return term.BuiltinOperation{Op: op, Args: r.Args}, nil
	case term.KindPrimitiveType:
		prim, ok := term.PrimKindByName(r.Prim)
		if !ok {
			return nil, fmt.Errorf("unknown primitive type %q", r.Prim)
		}
		return term.PrimitiveType{Prim: prim}, nil
	case term.KindPrimitiveValue:
		if r.Value == nil {
			return nil, fmt.Errorf("primitive value without value")
		}
		prim, ok := term.PrimKindByName(r.Value.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown primitive type %q", r.Value.Kind)
		}
		return term.PrimitiveValue{Value: term.Value{Kind: prim, Int: r.Value.Int, Bool: r.Value.Bool}}, nil
	case term.KindReplacing:
		reps := make([]term.Replacement, len(r.Replacements))
		for i, rep := range r.Replacements {
			reps[i] = term.Replacement{Target: rep.Target, Value: rep.Value}
		}
		return term.Replacing{Base: r.Base, Replacements: reps, Unlabeled: r.Unlabeled}, nil
	case term.KindTypeIs:
		return term.TypeIs{Base: r.Base, Type: r.Type, Exact: r.Exact}, nil
	case term.KindVariable:
		return term.VariableTerm{Var: r.Var}, nil
	case term.KindUnique:
		token, err := uuid.Parse(r.Token)
		if err != nil {
			return nil, fmt.Errorf("unique token: %w", err)
		}
		return term.Unique{Token: token}, nil
	default:
		return nil, fmt.Errorf("unknown kind %s", kind)
	}
}
