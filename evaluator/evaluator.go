package evaluator

import (
	"context"
	"sync/atomic"

	"lispdoc/builtin"
)

// Evaluator creates evaluation sessions against the shared Lisp runtime.
// One evaluator may serve many sessions; fragments across all sessions
// evaluate one at a time.
type Evaluator struct {
	registry *builtin.Registry
	prelude  string
	seq      atomic.Int64
}

// Option configures an Evaluator at creation time.
type Option func(*Evaluator)

// WithPrelude sets source evaluated into every new session's environment
// before any fragment runs. Output printed by the prelude is discarded.
func WithPrelude(src string) Option {
	return func(e *Evaluator) {
		e.prelude = src
	}
}

// New creates an Evaluator with the given builtin registry. A nil registry
// means fragments have no call-go functions available.
func New(registry *builtin.Registry, opts ...Option) *Evaluator {
	installPrimitives()

	if registry == nil {
		registry = builtin.NewRegistry()
	}
	e := &Evaluator{registry: registry}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval evaluates src as a sequence of fragments (one per top-level form)
// in a throwaway session.
func (e *Evaluator) Eval(ctx context.Context, src string) ([]Result, error) {
	s, err := e.NewSession()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.RunAll(ctx, src)
}
