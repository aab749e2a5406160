// Package term defines the semantic representation shared by the store and
// the semantics engine: a closed set of term kinds addressed by ID, free
// variables, dependency sets and substitution maps.
package term

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/funvibe/termcore/internal/config"
)

// ID is an opaque handle into a store. Equal ids imply identical terms.
type ID uint32

// NoID is the invalid id. Valid ids start at 1.
const NoID ID = 0

func (id ID) IsValid() bool { return id != NoID }

func (id ID) String() string { return fmt.Sprintf("#%d", uint32(id)) }

// Kind identifies the case of the Term sum type.
type Kind uint8

const (
	KindDefining Kind = iota + 1
	KindFromType
	KindGodType
	KindInductiveType
	KindInductiveValue
	KindIsSameVariant
	KindMember
	KindPick
	KindBuiltinOperation
	KindPrimitiveType
	KindPrimitiveValue
	KindReplacing
	KindTypeIs
	KindVariable
	KindUnique
)

var kindNames = map[Kind]string{
	KindDefining:         "Defining",
	KindFromType:         "FromType",
	KindGodType:          "GodType",
	KindInductiveType:    "InductiveType",
	KindInductiveValue:   "InductiveValue",
	KindIsSameVariant:    "IsSameVariant",
	KindMember:           "Member",
	KindPick:             "Pick",
	KindBuiltinOperation: "BuiltinOperation",
	KindPrimitiveType:    "PrimitiveType",
	KindPrimitiveValue:   "PrimitiveValue",
	KindReplacing:        "Replacing",
	KindTypeIs:           "TypeIs",
	KindVariable:         "Variable",
	KindUnique:           "Unique",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KindByName is the inverse of Kind.String.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Term is a node of the semantic representation. The set of implementations
// is closed; components switch over it exhaustively.
type Term interface {
	Kind() Kind
	String() string
	isTerm()
}

// Definition is a named sub-definition of a Defining term.
type Definition struct {
	Name  string
	Value ID
}

// Defining is a base value with named sub-definitions. Transparent to value.
type Defining struct {
	Base        ID
	Definitions []Definition
}

// FromType marks which free variables the values of Base still vary with.
type FromType struct {
	Base ID
	Vars []VarID
}

// GodType is the universe: the type of every type.
type GodType struct{}

// Variant is one constructor of an inductive type.
type Variant struct {
	Tag    string
	Fields []ID
}

// InductiveType is a (possibly self-referential) tagged union type.
// Field types of its variants may reference the type's own id.
type InductiveType struct {
	Name     string
	Params   []ID
	Variants []Variant
}

// InductiveValue is a constructor application of an inductive type.
type InductiveValue struct {
	Type    ID
	Variant string
	Fields  []ID
}

// IsSameVariant tests whether two inductive values carry the same tag.
type IsSameVariant struct {
	Left, Right ID
}

// Member is an unresolved name projection. Only present before resolution.
type Member struct {
	Base ID
	Name string
}

// Clause is one if/elif arm of a Pick.
type Clause struct {
	Cond, Value ID
}

// Pick is an ordered if/elif/else.
type Pick struct {
	Clauses []Clause
	Else    ID
}

// BuiltinOperation applies a primitive operator to its arguments.
type BuiltinOperation struct {
	Op   Op
	Args []ID
}

// PrimitiveType is one of the builtin scalar types.
type PrimitiveType struct {
	Prim PrimKind
}

// PrimitiveValue is a literal of a builtin scalar type.
type PrimitiveValue struct {
	Value Value
}

// Replacement is a named replacement: Target must resolve to a Variable.
type Replacement struct {
	Target ID
	Value  ID
}

// Replacing is Base with some variables substituted. Unlabeled values are
// positional and bind to the next not-yet-targeted variable.
type Replacing struct {
	Base         ID
	Replacements []Replacement
	Unlabeled    []ID
}

// TypeIs ascribes Type to Base. Exact ascriptions require definitional
// equality; coercive ones only reject proven mismatches.
type TypeIs struct {
	Base  ID
	Type  ID
	Exact bool
}

// VariableTerm binds a Variable identity at a point in the graph.
type VariableTerm struct {
	Var VarID
}

// Unique is an identity token, equal only to itself.
type Unique struct {
	Token uuid.UUID
}

func (Defining) Kind() Kind         { return KindDefining }
func (FromType) Kind() Kind         { return KindFromType }
func (GodType) Kind() Kind          { return KindGodType }
func (InductiveType) Kind() Kind    { return KindInductiveType }
func (InductiveValue) Kind() Kind   { return KindInductiveValue }
func (IsSameVariant) Kind() Kind    { return KindIsSameVariant }
func (Member) Kind() Kind           { return KindMember }
func (Pick) Kind() Kind             { return KindPick }
func (BuiltinOperation) Kind() Kind { return KindBuiltinOperation }
func (PrimitiveType) Kind() Kind    { return KindPrimitiveType }
func (PrimitiveValue) Kind() Kind   { return KindPrimitiveValue }
func (Replacing) Kind() Kind        { return KindReplacing }
func (TypeIs) Kind() Kind           { return KindTypeIs }
func (VariableTerm) Kind() Kind     { return KindVariable }
func (Unique) Kind() Kind           { return KindUnique }

func (Defining) isTerm()         {}
func (FromType) isTerm()         {}
func (GodType) isTerm()          {}
func (InductiveType) isTerm()    {}
func (InductiveValue) isTerm()   {}
func (IsSameVariant) isTerm()    {}
func (Member) isTerm()           {}
func (Pick) isTerm()             {}
func (BuiltinOperation) isTerm() {}
func (PrimitiveType) isTerm()    {}
func (PrimitiveValue) isTerm()   {}
func (Replacing) isTerm()        {}
func (TypeIs) isTerm()           {}
func (VariableTerm) isTerm()     {}
func (Unique) isTerm()           {}

func (t Defining) String() string {
	defs := make([]string, len(t.Definitions))
	for i, d := range t.Definitions {
		defs[i] = fmt.Sprintf("%s = %s", d.Name, d.Value)
	}
	return fmt.Sprintf("Defining(%s; %s)", t.Base, strings.Join(defs, ", "))
}

func (t FromType) String() string {
	vars := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		vars[i] = v.String()
	}
	return fmt.Sprintf("FromType(%s; [%s])", t.Base, strings.Join(vars, ", "))
}

func (GodType) String() string { return config.GodTypeName }

func (t InductiveType) String() string {
	variants := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		variants[i] = v.Tag + idList(v.Fields)
	}
	return fmt.Sprintf("InductiveType %s%s { %s }", t.Name, idList(t.Params), strings.Join(variants, " | "))
}

func (t InductiveValue) String() string {
	return fmt.Sprintf("%s.%s%s", t.Type, t.Variant, idList(t.Fields))
}

func (t IsSameVariant) String() string {
	return fmt.Sprintf("IsSameVariant(%s, %s)", t.Left, t.Right)
}

func (t Member) String() string { return fmt.Sprintf("%s.%s", t.Base, t.Name) }

func (t Pick) String() string {
	var sb strings.Builder
	sb.WriteString("Pick(")
	for i, c := range t.Clauses {
		if i == 0 {
			sb.WriteString("if ")
		} else {
			sb.WriteString(" elif ")
		}
		fmt.Fprintf(&sb, "%s then %s", c.Cond, c.Value)
	}
	fmt.Fprintf(&sb, " else %s)", t.Else)
	return sb.String()
}

func (t BuiltinOperation) String() string { return t.Op.String() + idList(t.Args) }

func (t PrimitiveType) String() string { return t.Prim.String() }

func (t PrimitiveValue) String() string { return t.Value.String() }

func (t Replacing) String() string {
	parts := make([]string, 0, len(t.Replacements)+len(t.Unlabeled))
	for _, r := range t.Replacements {
		parts = append(parts, fmt.Sprintf("%s := %s", r.Target, r.Value))
	}
	for _, v := range t.Unlabeled {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s[%s]", t.Base, strings.Join(parts, ", "))
}

func (t TypeIs) String() string {
	op := ":"
	if t.Exact {
		op = "::"
	}
	return fmt.Sprintf("(%s %s %s)", t.Base, op, t.Type)
}

func (t VariableTerm) String() string { return "var " + t.Var.String() }

func (t Unique) String() string { return "unique " + t.Token.String() }

func idList(ids []ID) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
