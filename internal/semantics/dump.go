package semantics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/termcore/internal/term"
)

const (
	colorReset = "\033[0m"
	colorID    = "\033[36m"
	colorKind  = "\033[33m"
	colorDim   = "\033[90m"
)

// Dump writes one line per stored term: id, kind, payload, cached type and
// dependencies. Output is coloured only when w is a terminal.
func (e *Engine) Dump(w io.Writer) error {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + colorReset
	}

	var werr error
	e.store.Each(func(id term.ID, t term.Term) bool {
		line := fmt.Sprintf("%s %s %s", paint(colorID, id.String()), paint(colorKind, t.Kind().String()), t)
		if typ, ok := e.store.CachedType(id); ok {
			line += paint(colorDim, " : "+typ.String())
		}
		if deps, err := e.Dependencies(id); err == nil && !deps.IsEmpty() {
			line += paint(colorDim, " deps "+deps.String())
		}
		_, werr = fmt.Fprintln(w, line)
		return werr == nil
	})
	return werr
}
