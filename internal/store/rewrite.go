package store

import (
	"github.com/samber/lo"

	"github.com/funvibe/termcore/internal/term"
)

// Duplicates maps every filled id whose payload is structurally equal to an
// earlier-indexed term onto that term's id. Only Reserve/Fill can create
// such pairs; an external simplification pass feeds the result to
// RewriteIDs.
func (s *Store) Duplicates() map[term.ID]term.ID {
	dups := make(map[term.ID]term.ID)
	s.Each(func(id term.ID, t term.Term) bool {
		if canon, ok := s.index[key(t)]; ok && canon != id {
			dups[id] = canon
		}
		return true
	})
	return dups
}

// RewriteIDs replaces every reference to a key of mapping with its value,
// across term payloads, cached types, scopes and variable types, then
// rebuilds the dedup index. Mapped-away terms stay allocated. Engines built
// on this store must be invalidated afterwards.
func (s *Store) RewriteIDs(mapping map[term.ID]term.ID) error {
	if len(mapping) == 0 {
		return nil
	}
	for from, to := range mapping {
		if _, err := s.entry(from); err != nil {
			return err
		}
		if _, err := s.entry(to); err != nil {
			return err
		}
	}

	remap := func(id term.ID) term.ID {
		if to, ok := mapping[id]; ok {
			return to
		}
		return id
	}

	for i := 1; i < len(s.entries); i++ {
		e := &s.entries[i]
		if e.term != nil {
			e.term = term.MapIDs(e.term, remap)
		}
		if e.typ != term.NoID {
			e.typ = remap(e.typ)
		}
		if e.scope != term.NoID {
			e.scope = remap(e.scope)
		}
	}
	s.vars = lo.Map(s.vars, func(v term.Variable, _ int) term.Variable {
		if v.Type != term.NoID {
			v.Type = remap(v.Type)
		}
		return v
	})

	s.index = make(map[string]term.ID, len(s.entries))
	for i := 1; i < len(s.entries); i++ {
		id := term.ID(i)
		if _, dead := mapping[id]; dead {
			continue
		}
		if t := s.entries[i].term; t != nil {
			k := key(t)
			if _, ok := s.index[k]; !ok {
				s.index[k] = id
			}
		}
	}
	return nil
}
