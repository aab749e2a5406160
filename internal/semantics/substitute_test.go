package semantics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/termcore/internal/term"
)

func TestResolve(t *testing.T) {
	e, s := newEngine(t)
	xv, x := int32Var(s, "x")
	yv, y := int32Var(s, "y")
	zv, z := int32Var(s, "z")
	one, two, three := s.Int32(1), s.Int32(2), s.Int32(3)

	// Discovery order is z, y, x; positional values follow declaration order.
	base := s.Op(term.OpSum, z, s.Op(term.OpSum, y, x))

	tests := []struct {
		name      string
		replacing term.Replacing
		want      term.Subst
	}{
		{
			name:      "positional only",
			replacing: term.Replacing{Base: base, Unlabeled: []term.ID{one, two}},
			want:      term.Subst{{Target: xv, Value: one}, {Target: yv, Value: two}},
		},
		{
			name: "named first, positional skip targets",
			replacing: term.Replacing{
				Base:         base,
				Replacements: []term.Replacement{{Target: x, Value: three}},
				Unlabeled:    []term.ID{one, two},
			},
			want: term.Subst{{Target: xv, Value: three}, {Target: yv, Value: one}, {Target: zv, Value: two}},
		},
		{
			name: "target through transparent wrapper",
			replacing: term.Replacing{
				Base:         base,
				Replacements: []term.Replacement{{Target: s.Insert(term.TypeIs{Base: y, Type: s.PrimType(term.PrimInt32)}), Value: one}},
			},
			want: term.Subst{{Target: yv, Value: one}},
		},
		{
			name:      "nothing to substitute",
			replacing: term.Replacing{Base: base},
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Resolve(s.Insert(tt.replacing))
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(tt.want, got, cmpopts.EquateEmpty()), "Resolve() mismatch (-want +got)")
		})
	}
}

func TestResolveErrors(t *testing.T) {
	e, s := newEngine(t)
	_, x := int32Var(s, "x")
	one, two := s.Int32(1), s.Int32(2)

	tests := []struct {
		name      string
		replacing term.Replacing
		reason    string
		wrapped   error
	}{
		{
			name:      "target is not a variable",
			replacing: term.Replacing{Base: x, Replacements: []term.Replacement{{Target: one, Value: two}}},
			reason:    "target #",
		},
		{
			name: "duplicate target",
			replacing: term.Replacing{Base: x, Replacements: []term.Replacement{
				{Target: x, Value: one},
				{Target: x, Value: two},
			}},
			reason:  "duplicate target",
			wrapped: term.ErrDuplicateTarget,
		},
		{
			name:      "too many positional values",
			replacing: term.Replacing{Base: x, Unlabeled: []term.ID{one, two}},
			reason:    "too many positional values",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := s.Insert(tt.replacing)
			_, err := e.Resolve(id)

			var se *SubstitutionError
			require.ErrorAs(t, err, &se)
			require.Equal(t, id, se.Replacing)
			require.Contains(t, se.Reason, tt.reason)
			if tt.wrapped != nil {
				require.ErrorIs(t, err, tt.wrapped)
			}

			// The error is fatal for every operation on the term.
			_, err = e.Dependencies(id)
			require.ErrorAs(t, err, &se)
			_, err = e.Reduce(id)
			require.ErrorAs(t, err, &se)
		})
	}
}

func TestResolveRejectsOtherKinds(t *testing.T) {
	e, s := newEngine(t)
	_, err := e.Resolve(s.Int32(1))
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	e, s := newEngine(t)
	xv, x := int32Var(s, "x")
	yv, y := int32Var(s, "y")
	three := s.Int32(3)
	sum := s.Op(term.OpSum, x, y)

	t.Run("empty map is the identity", func(t *testing.T) {
		got, err := e.Apply(sum, nil)
		require.NoError(t, err)
		require.Equal(t, sum, got)
	})

	t.Run("untouched terms keep their id", func(t *testing.T) {
		other := s.Op(term.OpSum, x, three)
		got, err := e.Apply(other, term.Subst{{Target: yv, Value: three}})
		require.NoError(t, err)
		require.Equal(t, other, got)
	})

	t.Run("rewritten terms are hash-consed", func(t *testing.T) {
		got, err := e.Apply(sum, term.Subst{{Target: xv, Value: three}})
		require.NoError(t, err)
		require.Equal(t, s.Op(term.OpSum, three, y), got)
	})

	t.Run("from type propagates open values", func(t *testing.T) {
		zv, z := int32Var(s, "z")
		ft := s.Insert(term.FromType{Base: s.PrimType(term.PrimInt32), Vars: []term.VarID{xv, yv}})
		got, err := e.Apply(ft, term.Subst{{Target: xv, Value: s.Op(term.OpSum, z, three)}})
		require.NoError(t, err)
		want := s.Insert(term.FromType{Base: s.PrimType(term.PrimInt32), Vars: []term.VarID{zv, yv}})
		require.Equal(t, want, got)
	})

	t.Run("nested replacing shields its own targets", func(t *testing.T) {
		inner := s.Insert(term.Replacing{
			Base:         sum,
			Replacements: []term.Replacement{{Target: x, Value: y}},
		})
		got, err := e.Apply(inner, term.Subst{{Target: xv, Value: three}, {Target: yv, Value: s.Int32(4)}})
		require.NoError(t, err)

		// y in the base is replaced, x is the inner target and stays; the
		// inner value y gets the full map.
		want := s.Insert(term.Replacing{
			Base:         s.Op(term.OpSum, x, s.Int32(4)),
			Replacements: []term.Replacement{{Target: x, Value: s.Int32(4)}},
		})
		require.Equal(t, want, got)

		r, err := e.Reduce(got)
		require.NoError(t, err)
		require.Equal(t, s.Int32(8), r)
	})

	t.Run("self reference is left alone", func(t *testing.T) {
		loop := s.Reserve()
		require.NoError(t, s.Fill(loop, term.Pick{
			Clauses: []term.Clause{{Cond: s.Op(term.OpLess, x, three), Value: loop}},
			Else:    x,
		}))
		got, err := e.Apply(loop, term.Subst{{Target: xv, Value: s.Int32(1)}})
		require.NoError(t, err)

		want := s.Insert(term.Pick{
			Clauses: []term.Clause{{Cond: s.Op(term.OpLess, s.Int32(1), three), Value: loop}},
			Else:    s.Int32(1),
		})
		require.Equal(t, want, got)
	})
}

func TestApplyComposition(t *testing.T) {
	e, s := newEngine(t)
	xv, x := int32Var(s, "x")
	yv, y := int32Var(s, "y")
	body := s.Op(term.OpProduct, x, y)

	s1 := term.Subst{{Target: xv, Value: s.Int32(2)}}
	s2 := term.Subst{{Target: xv, Value: s.Int32(9)}, {Target: yv, Value: s.Int32(5)}}

	step, err := e.Apply(body, s1)
	require.NoError(t, err)
	twice, err := e.Apply(step, s2)
	require.NoError(t, err)
	merged, err := e.Apply(body, s1.Compose(s2))
	require.NoError(t, err)

	require.Equal(t, merged, twice)
	r, err := e.Reduce(merged)
	require.NoError(t, err)
	require.Equal(t, s.Int32(10), r)
}

func TestApplyToType(t *testing.T) {
	e, s := newEngine(t)
	xv, x := int32Var(s, "x")
	sum := s.Op(term.OpSum, x, s.Int32(1))

	got, err := e.ApplyToType(sum, term.Subst{{Target: xv, Value: s.Int32(10)}})
	require.NoError(t, err)
	r, err := e.Reduce(got)
	require.NoError(t, err)
	require.Equal(t, s.PrimType(term.PrimInt32), r)
}
