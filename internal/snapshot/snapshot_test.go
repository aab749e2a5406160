package snapshot

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/termcore/internal/semantics"
	"github.com/funvibe/termcore/internal/store"
	"github.com/funvibe/termcore/internal/term"
)

// sample builds a store touching every term kind, a self-referential type,
// cached types and scopes.
func sample(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	i32 := s.PrimType(term.PrimInt32)
	xv, x := s.Var("x", i32)
	_, b := s.Var("b", s.PrimType(term.PrimBool))

	list := s.Reserve()
	require.NoError(t, s.Fill(list, term.InductiveType{
		Name:     "List",
		Params:   []term.ID{i32},
		Variants: []term.Variant{{Tag: "Nil"}, {Tag: "Cons", Fields: []term.ID{i32, list}}},
	}))
	empty := s.Insert(term.InductiveValue{Type: list, Variant: "Nil"})
	cons := s.Insert(term.InductiveValue{Type: list, Variant: "Cons", Fields: []term.ID{x, empty}})
	sum := s.Op(term.OpSum, x, s.Int32(-4))
	def := s.Insert(term.Defining{Base: sum, Definitions: []term.Definition{{Name: "head", Value: cons}}})
	require.NoError(t, s.SetScope(cons, def))

	ids := []term.ID{
		s.God(),
		s.Int64(1 << 40),
		s.Bool(true),
		s.NewUnique(),
		s.NewUnique(),
		s.Insert(term.FromType{Base: i32, Vars: []term.VarID{xv}}),
		s.Insert(term.IsSameVariant{Left: cons, Right: empty}),
		s.Insert(term.Member{Base: def, Name: "head"}),
		s.Insert(term.Pick{Clauses: []term.Clause{{Cond: b, Value: x}}, Else: s.Int32(0)}),
		s.Insert(term.Replacing{
			Base:         sum,
			Replacements: []term.Replacement{{Target: x, Value: s.Int32(2)}},
		}),
		s.Insert(term.Replacing{Base: sum, Unlabeled: []term.ID{s.Int32(3)}}),
		s.Insert(term.TypeIs{Base: sum, Type: i32, Exact: true}),
	}

	e := semantics.New(s)
	for _, id := range append(ids, sum, cons) {
		_, err := e.ComputeType(id)
		require.NoError(t, err, "type of %s", id)
	}
	s.Reserve() // trailing id that is never filled
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")
	orig := sample(t)

	require.NoError(t, Save(ctx, path, orig))
	got, err := Load(ctx, path)
	require.NoError(t, err)

	require.Equal(t, orig.ID(), got.ID())
	require.Equal(t, orig.Len(), got.Len())
	require.Equal(t, orig.UniqueSeq(), got.UniqueSeq())
	require.Empty(t, cmp.Diff(orig.Variables(), got.Variables()), "variables mismatch (-want +got)")

	orig.Each(func(id term.ID, want term.Term) bool {
		have, err := got.Get(id)
		require.NoError(t, err)
		require.Equal(t, want.String(), have.String(), "term %s", id)

		same, ok := got.Lookup(want)
		require.True(t, ok, "term %s is indexed", id)
		require.Equal(t, id, same)

		wantType, wantOK := orig.CachedType(id)
		haveType, haveOK := got.CachedType(id)
		require.Equal(t, wantOK, haveOK)
		require.Equal(t, wantType, haveType)
		require.Equal(t, orig.Scope(id), got.Scope(id))
		return true
	})

	_, err = got.Get(term.ID(got.Len()))
	require.ErrorIs(t, err, store.ErrUnfilled)

	// Fresh tokens continue after the restored sequence.
	require.Equal(t, orig.NewUnique(), got.NewUnique())
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	require.NoError(t, Save(ctx, path, sample(t)))
	small := store.New()
	small.Int32(1)
	require.NoError(t, Save(ctx, path, small))

	got, err := Load(ctx, path)
	require.NoError(t, err)
	require.Equal(t, small.ID(), got.ID())
	require.Equal(t, 1, got.Len())
	require.Empty(t, got.Variables())
}

func TestLoadRejectsOtherVersions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")
	require.NoError(t, Save(ctx, path, sample(t)))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "UPDATE meta SET value = '99' WHERE key = ?", metaVersion)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Load(ctx, path)
	require.ErrorIs(t, err, ErrFormatVersion)
}

func TestRecordRoundTrip(t *testing.T) {
	tests := []term.Term{
		term.GodType{},
		term.PrimitiveValue{Value: term.Int32Value(-7)},
		term.PrimitiveValue{Value: term.BoolValue(false)},
		term.BuiltinOperation{Op: term.OpGreaterEqual, Args: []term.ID{1, 2}},
		term.TypeIs{Base: 3, Type: 4},
		term.VariableTerm{Var: 9},
	}
	for _, want := range tests {
		t.Run(want.Kind().String(), func(t *testing.T) {
			payload, err := encode(want)
			require.NoError(t, err)
			got, err := decode(want.Kind(), payload)
			require.NoError(t, err)
			require.Equal(t, want.String(), got.String())
		})
	}

	_, err := decode(term.KindBuiltinOperation, []byte("op: Frobnicate\n"))
	require.Error(t, err)
}
