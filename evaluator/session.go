package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/steelseries/golisp"
)

var ErrSessionClosed = errors.New("session closed")

// Session evaluates an ordered sequence of fragments against a cumulative
// environment: each fragment observes bindings introduced by the fragments
// before it. The environment is a chain of frames below the interpreter's
// global frame; every fragment evaluates in a fresh frame that becomes the
// session frame only when the fragment completes, so a failing fragment's
// bindings never become visible to later fragments.
type Session struct {
	eval *Evaluator
	name string
	env  *golisp.SymbolTableFrame
	out  *captureBuffer

	mu      sync.Mutex
	closed  bool
	next    int
	history []Result
}

// Result pairs a fragment with its evaluation outcome.
type Result struct {
	Fragment Fragment
	Outcome  Outcome
	Duration time.Duration
}

// SessionOption configures a Session at creation time.
type SessionOption func(*Session)

// WithSessionName names the session. The name appears in environment frame
// names and diagnostics only.
func WithSessionName(name string) SessionOption {
	return func(s *Session) {
		s.name = name
	}
}

// NewSession creates a session with an empty environment (plus the
// evaluator's prelude, if any).
func (e *Evaluator) NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		eval: e,
		name: fmt.Sprintf("session-%d", e.seq.Add(1)),
		out:  &captureBuffer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.env = golisp.NewSymbolTableFrameBelow(golisp.Global, s.name)

	if e.prelude != "" {
		release := beginFragment(context.Background(), io.Discard, e.registry)
		_, err := golisp.ParseAndEvalAllInEnvironment(e.prelude, s.env)
		release()
		if err != nil {
			return nil, fmt.Errorf("prelude: %w", err)
		}
	}
	return s, nil
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// Run evaluates src as the session's next fragment. The returned error is
// non-nil only for infrastructure failures (closed session, cancelled
// context); errors raised by the fragment itself are reported in the
// outcome and do not poison the session.
func (s *Session) Run(ctx context.Context, src string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	frag := Fragment{Source: src, Index: s.next}
	s.next++

	res := Result{
		Fragment: frag,
		Outcome:  s.evalFragment(ctx, frag),
		Duration: time.Since(start),
	}
	s.history = append(s.history, res)
	return res, nil
}

// RunAll splits src into top-level forms and evaluates each as its own
// fragment. If src does not split cleanly, the whole chunk becomes a
// single fragment with a parse error outcome.
func (s *Session) RunAll(ctx context.Context, src string) ([]Result, error) {
	forms, err := SplitForms(src)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, ErrSessionClosed
		}
		frag := Fragment{Source: src, Index: s.next}
		s.next++
		res := Result{
			Fragment: frag,
			Outcome: Outcome{
				Kind: OutcomeError,
				Err:  &EvalError{Kind: ErrKindParse, Message: err.Error()},
			},
		}
		s.history = append(s.history, res)
		return []Result{res}, nil
	}

	var results []Result
	for _, form := range forms {
		res, err := s.Run(ctx, form)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// History returns the results of all fragments evaluated so far, in order.
func (s *Session) History() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Result(nil), s.history...)
}

// Close discards the session's environment. Further Run calls return
// ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.env = nil
	return nil
}

func (s *Session) evalFragment(ctx context.Context, frag Fragment) Outcome {
	forms, err := SplitForms(frag.Source)
	if err != nil {
		return Outcome{
			Kind: OutcomeError,
			Err:  &EvalError{Kind: ErrKindParse, Message: err.Error()},
		}
	}
	if len(forms) == 0 {
		return Outcome{Kind: OutcomeEffect}
	}

	scratch := golisp.NewSymbolTableFrameBelow(s.env, fmt.Sprintf("%s-frag-%d", s.name, frag.Index))

	s.out.Reset()
	release := beginFragment(ctx, s.out, s.eval.registry)
	defer release()

	last, evalErr := evalForms(forms, scratch)
	captured := s.out.String()

	if evalErr != nil {
		return Outcome{
			Kind:   OutcomeError,
			Output: captured,
			Err:    classifyError(evalErr),
		}
	}

	// Bindings become visible to later fragments only once the whole
	// fragment has completed.
	s.env = scratch

	if golisp.NilP(last) || isDefinition(forms[len(forms)-1]) {
		return Outcome{Kind: OutcomeEffect, Output: captured}
	}
	return Outcome{Kind: OutcomeValue, Value: last, Output: captured}
}

// evalForms evaluates forms in order, converting interpreter panics into
// errors so one broken fragment cannot take down the build.
func evalForms(forms []string, env *golisp.SymbolTableFrame) (last *golisp.Data, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	for _, form := range forms {
		// The interpreter evaluates an unbound bare symbol to nil without
		// raising; a fragment reading a binding that never took must fail.
		if sym, ok := bareSymbol(form); ok {
			if env.ValueOf(golisp.Intern(sym)) == nil {
				return nil, fmt.Errorf("symbol %s is not bound", sym)
			}
		}
		d, ferr := golisp.ParseAndEvalInEnvironment(form, env)
		if ferr != nil {
			return nil, ferr
		}
		last = d
	}
	return last, nil
}
