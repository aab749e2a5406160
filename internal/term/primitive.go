package term

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/funvibe/termcore/internal/config"
)

// PrimKind is a builtin scalar type.
type PrimKind uint8

const (
	PrimBool PrimKind = iota + 1
	PrimInt32
	PrimInt64
	PrimUnique
)

func (k PrimKind) String() string {
	switch k {
	case PrimBool:
		return config.BoolTypeName
	case PrimInt32:
		return config.Int32TypeName
	case PrimInt64:
		return config.Int64TypeName
	case PrimUnique:
		return config.UniqueTypeName
	default:
		return fmt.Sprintf("PrimKind(%d)", uint8(k))
	}
}

// PrimKindByName is the inverse of PrimKind.String.
func PrimKindByName(name string) (PrimKind, bool) {
	for _, k := range []PrimKind{PrimBool, PrimInt32, PrimInt64, PrimUnique} {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// IsInteger reports whether k is one of the integer kinds.
func (k PrimKind) IsInteger() bool { return k == PrimInt32 || k == PrimInt64 }

// Value is a primitive literal. Int holds integers of every width; Int32
// values are kept in range by Eval.
type Value struct {
	Kind PrimKind
	Int  int64
	Bool bool
}

func BoolValue(b bool) Value   { return Value{Kind: PrimBool, Bool: b} }
func Int32Value(i int32) Value { return Value{Kind: PrimInt32, Int: int64(i)} }
func Int64Value(i int64) Value { return Value{Kind: PrimInt64, Int: i} }

func (v Value) String() string {
	switch v.Kind {
	case PrimBool:
		return strconv.FormatBool(v.Bool)
	case PrimInt32:
		return strconv.FormatInt(v.Int, 10) + "i32"
	case PrimInt64:
		return strconv.FormatInt(v.Int, 10) + "i64"
	default:
		return "<invalid>"
	}
}

// Op is a builtin operator.
type Op uint8

const (
	OpSum Op = iota + 1
	OpDifference
	OpProduct
	OpQuotient
	OpModulo
	OpNegate
	OpAnd
	OpOr
	OpNot
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

var opNames = map[Op]string{
	OpSum:          "Sum",
	OpDifference:   "Difference",
	OpProduct:      "Product",
	OpQuotient:     "Quotient",
	OpModulo:       "Modulo",
	OpNegate:       "Negate",
	OpAnd:          "And",
	OpOr:           "Or",
	OpNot:          "Not",
	OpEqual:        "Equal",
	OpNotEqual:     "NotEqual",
	OpLess:         "Less",
	OpLessEqual:    "LessEqual",
	OpGreater:      "Greater",
	OpGreaterEqual: "GreaterEqual",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// OpByName is the inverse of Op.String.
func OpByName(name string) (Op, bool) {
	for o, n := range opNames {
		if n == name {
			return o, true
		}
	}
	return 0, false
}

// Arity is the number of arguments o takes.
func (o Op) Arity() int {
	switch o {
	case OpNegate, OpNot:
		return 1
	default:
		return 2
	}
}

// IsArithmetic reports whether o yields a value of its operands' integer kind.
func (o Op) IsArithmetic() bool {
	switch o {
	case OpSum, OpDifference, OpProduct, OpQuotient, OpModulo, OpNegate:
		return true
	}
	return false
}

// Errors returned by Eval. A failed evaluation leaves the operation unfolded.
var (
	ErrArity          = errors.New("wrong number of operands")
	ErrOperandKind    = errors.New("operand kind mismatch")
	ErrDivisionByZero = errors.New("division by zero")
)

// Eval folds op over concrete operands.
func Eval(op Op, args []Value) (Value, error) {
	if len(args) != op.Arity() {
		return Value{}, fmt.Errorf("%s: %w: got %d, want %d", op, ErrArity, len(args), op.Arity())
	}

	switch op {
	case OpNot:
		if args[0].Kind != PrimBool {
			return Value{}, fmt.Errorf("%s: %w", op, ErrOperandKind)
		}
		return BoolValue(!args[0].Bool), nil
	case OpNegate:
		if !args[0].Kind.IsInteger() {
			return Value{}, fmt.Errorf("%s: %w", op, ErrOperandKind)
		}
		return wrap(args[0].Kind, -args[0].Int), nil
	case OpAnd, OpOr:
		if args[0].Kind != PrimBool || args[1].Kind != PrimBool {
			return Value{}, fmt.Errorf("%s: %w", op, ErrOperandKind)
		}
		if op == OpAnd {
			return BoolValue(args[0].Bool && args[1].Bool), nil
		}
		return BoolValue(args[0].Bool || args[1].Bool), nil
	case OpEqual, OpNotEqual:
		if args[0].Kind != args[1].Kind {
			return Value{}, fmt.Errorf("%s: %w", op, ErrOperandKind)
		}
		return BoolValue((args[0] == args[1]) == (op == OpEqual)), nil
	}

	a, b := args[0], args[1]
	if !a.Kind.IsInteger() || a.Kind != b.Kind {
		return Value{}, fmt.Errorf("%s: %w: %s vs %s", op, ErrOperandKind, a.Kind, b.Kind)
	}

	switch op {
	case OpSum:
		return wrap(a.Kind, a.Int+b.Int), nil
	case OpDifference:
		return wrap(a.Kind, a.Int-b.Int), nil
	case OpProduct:
		return wrap(a.Kind, a.Int*b.Int), nil
	case OpQuotient:
		if b.Int == 0 {
			return Value{}, fmt.Errorf("%s: %w", op, ErrDivisionByZero)
		}
		return wrap(a.Kind, a.Int/b.Int), nil
	case OpModulo:
		if b.Int == 0 {
			return Value{}, fmt.Errorf("%s: %w", op, ErrDivisionByZero)
		}
		return wrap(a.Kind, a.Int%b.Int), nil
	case OpLess:
		return BoolValue(a.Int < b.Int), nil
	case OpLessEqual:
		return BoolValue(a.Int <= b.Int), nil
	case OpGreater:
		return BoolValue(a.Int > b.Int), nil
	case OpGreaterEqual:
		return BoolValue(a.Int >= b.Int), nil
	}
	return Value{}, fmt.Errorf("unknown operator %s", op)
}

// wrap truncates to the width of k.
func wrap(k PrimKind, i int64) Value {
	if k == PrimInt32 {
		return Int32Value(int32(i))
	}
	return Int64Value(i)
}
