package store

import (
	"fmt"
	"strings"

	"github.com/funvibe/termcore/internal/term"
)

// key encodes the structure of t. Two terms get the same key exactly when
// they are structurally equal, which is what Insert deduplicates on.
func key(t term.Term) string {
	var sb strings.Builder
	sb.WriteString(t.Kind().String())
	sb.WriteByte('(')

	ids := func(list []term.ID) {
		sb.WriteByte('[')
		for i, id := range list {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", uint32(id))
		}
		sb.WriteByte(']')
	}

	switch t := t.(type) {
	case term.Defining:
		fmt.Fprintf(&sb, "%d", uint32(t.Base))
		for _, d := range t.Definitions {
			fmt.Fprintf(&sb, ";%q=%d", d.Name, uint32(d.Value))
		}
	case term.FromType:
		fmt.Fprintf(&sb, "%d;", uint32(t.Base))
		for i, v := range t.Vars {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", uint32(v))
		}
	case term.GodType:
	case term.InductiveType:
		fmt.Fprintf(&sb, "%q;", t.Name)
		ids(t.Params)
		for _, v := range t.Variants {
			fmt.Fprintf(&sb, ";%q", v.Tag)
			ids(v.Fields)
		}
	case term.InductiveValue:
		fmt.Fprintf(&sb, "%d;%q;", uint32(t.Type), t.Variant)
		ids(t.Fields)
	case term.IsSameVariant:
		fmt.Fprintf(&sb, "%d,%d", uint32(t.Left), uint32(t.Right))
	case term.Member:
		fmt.Fprintf(&sb, "%d;%q", uint32(t.Base), t.Name)
	case term.Pick:
		for _, c := range t.Clauses {
			fmt.Fprintf(&sb, "%d?%d;", uint32(c.Cond), uint32(c.Value))
		}
		fmt.Fprintf(&sb, "else %d", uint32(t.Else))
	case term.BuiltinOperation:
		sb.WriteString(t.Op.String())
		ids(t.Args)
	case term.PrimitiveType:
		fmt.Fprintf(&sb, "%d", uint8(t.Prim))
	case term.PrimitiveValue:
		fmt.Fprintf(&sb, "%d;%d;%t", uint8(t.Value.Kind), t.Value.Int, t.Value.Bool)
	case term.Replacing:
		fmt.Fprintf(&sb, "%d;", uint32(t.Base))
		for _, r := range t.Replacements {
			fmt.Fprintf(&sb, "%d=%d;", uint32(r.Target), uint32(r.Value))
		}
		ids(t.Unlabeled)
	case term.TypeIs:
		fmt.Fprintf(&sb, "%d;%d;%t", uint32(t.Base), uint32(t.Type), t.Exact)
	case term.VariableTerm:
		fmt.Fprintf(&sb, "%d", uint32(t.Var))
	case term.Unique:
		sb.WriteString(t.Token.String())
	default:
		panic(fmt.Sprintf("store.key: unknown term kind %T", t))
	}

	sb.WriteByte(')')
	return sb.String()
}
