package store

import "github.com/funvibe/termcore/internal/term"

// Shorthands for the leaf terms every client builds.

func (s *Store) God() term.ID { return s.Insert(term.GodType{}) }

func (s *Store) PrimType(k term.PrimKind) term.ID {
	return s.Insert(term.PrimitiveType{Prim: k})
}

func (s *Store) Literal(v term.Value) term.ID {
	return s.Insert(term.PrimitiveValue{Value: v})
}

func (s *Store) Bool(b bool) term.ID { return s.Literal(term.BoolValue(b)) }

func (s *Store) Int32(i int32) term.ID { return s.Literal(term.Int32Value(i)) }

func (s *Store) Int64(i int64) term.ID { return s.Literal(term.Int64Value(i)) }

// Var creates a variable of the given declared type and returns it together
// with its Variable term.
func (s *Store) Var(name string, typ term.ID) (term.VarID, term.ID) {
	v := s.NewVariable(name, typ)
	return v, s.VariableTerm(v)
}

// Op inserts a builtin operation.
func (s *Store) Op(op term.Op, args ...term.ID) term.ID {
	return s.Insert(term.BuiltinOperation{Op: op, Args: args})
}
