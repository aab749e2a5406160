// Package semantics implements the four operations every later stage relies
// on: dependency analysis, substitution, reduction to normal form and
// definitional equality, plus type computation built on top of them.
//
// The operations are mutually recursive, so they live in one package and
// share one Engine. An Engine memoizes against a single store and is not
// safe for concurrent use.
package semantics

import (
	"go.uber.org/zap"

	"github.com/funvibe/termcore/internal/config"
	"github.com/funvibe/termcore/internal/store"
	"github.com/funvibe/termcore/internal/term"
)

// Engine evaluates terms of one store.
type Engine struct {
	store *store.Store
	cfg   *config.Config
	log   *zap.Logger

	depCache map[term.ID]term.DepSet
	reduced  map[term.ID]term.ID
	reducing map[term.ID]bool
	typing   map[term.ID]bool
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// New creates an engine over s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		cfg:   config.Default(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("semantics")
	e.Invalidate()
	return e
}

func (e *Engine) Store() *store.Store { return e.store }

// Invalidate drops every memoized result. Required after the store's ids
// were rewritten.
func (e *Engine) Invalidate() {
	e.depCache = make(map[term.ID]term.DepSet)
	e.reduced = make(map[term.ID]term.ID)
	e.reducing = make(map[term.ID]bool)
	e.typing = make(map[term.ID]bool)
}
