// Package store is the append-only term pool. Every term gets a stable id;
// structurally equal terms inserted through Insert share one id.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/termcore/internal/term"
)

var (
	ErrUnknownID       = errors.New("unknown term id")
	ErrUnfilled        = errors.New("term reserved but not filled")
	ErrAlreadyFilled   = errors.New("term already filled")
	ErrTypeAlreadySet  = errors.New("cached type already set")
	ErrUnknownVariable = errors.New("unknown variable")
)

// uniqueNamespace seeds the tokens of Unique terms. Tokens are derived from
// it and a per-store sequence, so a store built the same way twice holds
// the same tokens.
var uniqueNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("termcore/unique"))

type entry struct {
	term  term.Term // nil while reserved
	typ   term.ID
	scope term.ID
}

// Store holds terms and variables. Not safe for concurrent use.
type Store struct {
	id        uuid.UUID
	entries   []entry // index 0 is NoID
	index     map[string]term.ID
	vars      []term.Variable // index 0 is unused
	uniqueSeq uint64
}

type Option func(*Store)

// WithID fixes the store identity (used when restoring a snapshot).
func WithID(id uuid.UUID) Option {
	return func(s *Store) { s.id = id }
}

func New(opts ...Option) *Store {
	s := &Store{
		id:      uuid.New(),
		entries: make([]entry, 1, 64),
		index:   make(map[string]term.ID),
		vars:    make([]term.Variable, 1, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the store across snapshots.
func (s *Store) ID() uuid.UUID { return s.id }

// Len is the number of allocated ids, reserved ones included.
func (s *Store) Len() int { return len(s.entries) - 1 }

// Insert returns the id of a term structurally equal to t, adding t if
// there is none.
func (s *Store) Insert(t term.Term) term.ID {
	k := key(t)
	if id, ok := s.index[k]; ok {
		return id
	}
	id := term.ID(len(s.entries))
	s.entries = append(s.entries, entry{term: t})
	s.index[k] = id
	return id
}

// Reserve allocates an id whose payload is written later with Fill.
// This is how self-referential terms are built.
func (s *Store) Reserve() term.ID {
	id := term.ID(len(s.entries))
	s.entries = append(s.entries, entry{})
	return id
}

// Fill writes the payload of a reserved id. If a structurally equal term
// already exists both ids stay valid; Duplicates reports the pair.
func (s *Store) Fill(id term.ID, t term.Term) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	if e.term != nil {
		return fmt.Errorf("%s: %w", id, ErrAlreadyFilled)
	}
	e.term = t
	k := key(t)
	if _, ok := s.index[k]; !ok {
		s.index[k] = id
	}
	return nil
}

// Get returns the term stored at id.
func (s *Store) Get(id term.ID) (term.Term, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	if e.term == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrUnfilled)
	}
	return e.term, nil
}

// MustGet is Get for ids the caller obtained from this store. A failure is
// an implementation bug.
func (s *Store) MustGet(id term.ID) term.Term {
	t, err := s.Get(id)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the id of a term structurally equal to t, without inserting.
func (s *Store) Lookup(t term.Term) (term.ID, bool) {
	id, ok := s.index[key(t)]
	return id, ok
}

// CachedType returns the type recorded for id, if any.
func (s *Store) CachedType(id term.ID) (term.ID, bool) {
	e, err := s.entry(id)
	if err != nil || e.typ == term.NoID {
		return term.NoID, false
	}
	return e.typ, true
}

// SetCachedType records the type of id. The slot can be written once.
func (s *Store) SetCachedType(id, typ term.ID) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	if e.typ != term.NoID {
		return fmt.Errorf("%s: %w", id, ErrTypeAlreadySet)
	}
	e.typ = typ
	return nil
}

// Scope returns the Defining term that defines id, or NoID.
func (s *Store) Scope(id term.ID) term.ID {
	e, err := s.entry(id)
	if err != nil {
		return term.NoID
	}
	return e.scope
}

func (s *Store) SetScope(id, scope term.ID) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.scope = scope
	return nil
}

// Each calls fn for every filled term in ascending id order until fn
// returns false.
func (s *Store) Each(fn func(id term.ID, t term.Term) bool) {
	for i := 1; i < len(s.entries); i++ {
		if t := s.entries[i].term; t != nil {
			if !fn(term.ID(i), t) {
				return
			}
		}
	}
}

// NewVariable creates a variable. typ may be NoID and set later.
func (s *Store) NewVariable(name string, typ term.ID) term.VarID {
	v := term.VarID(len(s.vars))
	s.vars = append(s.vars, term.Variable{ID: v, Name: name, Type: typ})
	return v
}

// SetVariableType sets the declared type of v.
func (s *Store) SetVariableType(v term.VarID, typ term.ID) error {
	if int(v) <= 0 || int(v) >= len(s.vars) {
		return fmt.Errorf("%s: %w", v, ErrUnknownVariable)
	}
	s.vars[v].Type = typ
	return nil
}

func (s *Store) Variable(v term.VarID) (term.Variable, error) {
	if int(v) <= 0 || int(v) >= len(s.vars) {
		return term.Variable{}, fmt.Errorf("%s: %w", v, ErrUnknownVariable)
	}
	return s.vars[v], nil
}

// Variables returns every variable in declaration order.
func (s *Store) Variables() []term.Variable {
	return append([]term.Variable(nil), s.vars[1:]...)
}

// VariableTerm is the hash-consed Variable term for v.
func (s *Store) VariableTerm(v term.VarID) term.ID {
	return s.Insert(term.VariableTerm{Var: v})
}

// NewUnique inserts a fresh identity token.
func (s *Store) NewUnique() term.ID {
	s.uniqueSeq++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.uniqueSeq)
	return s.Insert(term.Unique{Token: uuid.NewSHA1(uniqueNamespace, buf[:])})
}

// UniqueSeq is the number of tokens issued so far.
func (s *Store) UniqueSeq() uint64 { return s.uniqueSeq }

// RestoreUniqueSeq continues token issue after a restored sequence.
func (s *Store) RestoreUniqueSeq(seq uint64) {
	if seq > s.uniqueSeq {
		s.uniqueSeq = seq
	}
}

func (s *Store) entry(id term.ID) (*entry, error) {
	if id == term.NoID || int(id) >= len(s.entries) {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownID)
	}
	return &s.entries[id], nil
}
