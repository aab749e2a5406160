package term

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEval(t *testing.T) {
	tests := []struct {
		name    string
		op      Op
		args    []Value
		want    Value
		wantErr error
	}{
		{"sum", OpSum, []Value{Int32Value(3), Int32Value(4)}, Int32Value(7), nil},
		{"sum wraps int32", OpSum, []Value{Int32Value(2147483647), Int32Value(1)}, Int32Value(-2147483648), nil},
		{"difference", OpDifference, []Value{Int64Value(3), Int64Value(10)}, Int64Value(-7), nil},
		{"product", OpProduct, []Value{Int64Value(6), Int64Value(7)}, Int64Value(42), nil},
		{"quotient", OpQuotient, []Value{Int32Value(9), Int32Value(2)}, Int32Value(4), nil},
		{"modulo", OpModulo, []Value{Int32Value(9), Int32Value(4)}, Int32Value(1), nil},
		{"negate", OpNegate, []Value{Int32Value(5)}, Int32Value(-5), nil},
		{"and", OpAnd, []Value{BoolValue(true), BoolValue(false)}, BoolValue(false), nil},
		{"or", OpOr, []Value{BoolValue(true), BoolValue(false)}, BoolValue(true), nil},
		{"not", OpNot, []Value{BoolValue(true)}, BoolValue(false), nil},
		{"equal", OpEqual, []Value{Int32Value(1), Int32Value(1)}, BoolValue(true), nil},
		{"not equal", OpNotEqual, []Value{BoolValue(true), BoolValue(true)}, BoolValue(false), nil},
		{"less", OpLess, []Value{Int64Value(1), Int64Value(2)}, BoolValue(true), nil},
		{"greater equal", OpGreaterEqual, []Value{Int64Value(1), Int64Value(2)}, BoolValue(false), nil},
		{"division by zero", OpQuotient, []Value{Int32Value(1), Int32Value(0)}, Value{}, ErrDivisionByZero},
		{"modulo by zero", OpModulo, []Value{Int32Value(1), Int32Value(0)}, Value{}, ErrDivisionByZero},
		{"mixed widths", OpSum, []Value{Int32Value(1), Int64Value(1)}, Value{}, ErrOperandKind},
		{"bool arithmetic", OpSum, []Value{BoolValue(true), BoolValue(true)}, Value{}, ErrOperandKind},
		{"arity", OpSum, []Value{Int32Value(1)}, Value{}, ErrArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.op, tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Eval() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Eval() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDepSetKeepsInsertionOrder(t *testing.T) {
	d := NewDepSet(5, 2, 9, 2, 5)
	if diff := cmp.Diff([]VarID{5, 2, 9}, d.Vars()); diff != "" {
		t.Errorf("Vars() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]VarID{2, 5, 9}, d.Sorted()); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}

	var other DepSet
	other.Add(9)
	other.Add(1)
	d.Union(other)
	if diff := cmp.Diff([]VarID{5, 2, 9, 1}, d.Vars()); diff != "" {
		t.Errorf("Union() mismatch (-want +got):\n%s", diff)
	}

	if !other.Subset(d) || d.Subset(other) {
		t.Errorf("Subset() wrong for %s and %s", other, d)
	}
	if !NewDepSet(1, 2).Equal(NewDepSet(2, 1)) {
		t.Errorf("Equal() should ignore order")
	}
	without := d.Without(func(v VarID) bool { return v == 2 })
	if without.Contains(2) || !d.Contains(2) {
		t.Errorf("Without() must copy: got %s from %s", without, d)
	}

	d.Remove(9)
	d.Remove(42)
	if diff := cmp.Diff([]VarID{5, 2, 1}, d.Vars()); diff != "" || d.Contains(9) {
		t.Errorf("Remove() mismatch (-want +got):\n%s", diff)
	}

	var empty DepSet
	empty.Remove(1)
	if !empty.IsEmpty() || empty.Contains(1) || !empty.Subset(d) {
		t.Errorf("zero DepSet should be an empty set")
	}
}

func TestSubst(t *testing.T) {
	s, err := Subst{}.Bind(1, 10)
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.Bind(2, 20)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Bind(1, 30); !errors.Is(err, ErrDuplicateTarget) {
		t.Fatalf("Bind() of a bound target: err = %v", err)
	}

	later := Subst{{Target: 2, Value: 99}, {Target: 3, Value: 30}}
	got := s.Compose(later)
	want := Subst{{Target: 1, Value: 10}, {Target: 2, Value: 20}, {Target: 3, Value: 30}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compose() mismatch (-want +got):\n%s", diff)
	}

	if !got.Equal(Subst{{Target: 3, Value: 30}, {Target: 2, Value: 20}, {Target: 1, Value: 10}}) {
		t.Errorf("Equal() should ignore order")
	}
	if diff := cmp.Diff(Subst{{Target: 3, Value: 30}}, got.Without(NewDepSet(1, 2))); diff != "" {
		t.Errorf("Without() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapIDsCopies(t *testing.T) {
	orig := Pick{Clauses: []Clause{{Cond: 1, Value: 2}}, Else: 3}
	mapped := MapIDs(orig, func(id ID) ID { return id + 10 }).(Pick)

	if diff := cmp.Diff([]ID{11, 12, 13}, Children(mapped)); diff != "" {
		t.Errorf("Children(mapped) mismatch (-want +got):\n%s", diff)
	}
	if orig.Clauses[0].Cond != 1 {
		t.Errorf("MapIDs modified its input")
	}
}

func TestKindAndOpNamesRoundTrip(t *testing.T) {
	for k := KindDefining; k <= KindUnique; k++ {
		got, ok := KindByName(k.String())
		if !ok || got != k {
			t.Errorf("KindByName(%q) = %v, %v", k.String(), got, ok)
		}
	}
	for _, p := range []PrimKind{PrimBool, PrimInt32, PrimInt64, PrimUnique} {
		got, ok := PrimKindByName(p.String())
		if !ok || got != p {
			t.Errorf("PrimKindByName(%q) = %v, %v", p.String(), got, ok)
		}
	}
	for o := OpSum; o <= OpGreaterEqual; o++ {
		got, ok := OpByName(o.String())
		if !ok || got != o {
			t.Errorf("OpByName(%q) = %v, %v", o.String(), got, ok)
		}
	}
}
