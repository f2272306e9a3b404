// Package evaluator runs Lisp documentation fragments in ordered sessions,
// capturing printed output and results for rendering.
//
// # Overview
//
// A Fragment is one unit of example source. A Session evaluates fragments
// strictly in order against a cumulative environment, mirroring a
// read-eval-print loop: later fragments see bindings introduced by earlier
// ones. Each fragment yields exactly one Outcome: a Value, an Effect
// (captured output only), or an Error.
//
// # Basic Usage
//
//	eval := evaluator.New(builtin.NewRegistry())
//
//	session, _ := eval.NewSession()
//	defer session.Close()
//
//	session.Run(ctx, `(define x 5)`) // Effect
//	session.Run(ctx, `(+ x 1)`)      // Value 6
//
// # Error Isolation
//
// An error in one fragment does not abort the session. The failing
// fragment's bindings are discarded, and subsequent fragments evaluate
// against the environment as it stood before the failure:
//
//	session.Run(ctx, `(/ 1 0)`)  // Error(div-by-zero)
//	session.Run(ctx, `(+ 1 1)`)  // Value 2
//
// # Output Capture
//
// The printing primitives (display, write, newline, print) are redirected
// into a per-fragment capture buffer. The capture sink is claimed for
// exactly one fragment at a time and released on every exit path, so
// evaluation is reproducible: the same fragment sequence always yields the
// same outcomes and the same captured text.
package evaluator
