// Package lispdoc evaluates Lisp examples embedded in documents.
//
// # Overview
//
// Marked code blocks in a document are split into fragments and evaluated
// in order against a persistent environment. Each fragment produces a
// value, an effect, or an error; a failed fragment's new bindings are
// discarded and evaluation continues with the next fragment. The blocks
// are then rewritten as transcripts, and the same document always renders
// to the same bytes.
//
// # Basic Usage
//
//	eval := evaluator.New(builtin.NewRegistry())
//
//	// One-shot evaluation
//	results, _ := eval.Eval(ctx, `(+ 1 2)`)
//
//	// Session with persistent state
//	session, _ := eval.NewSession()
//	session.Run(ctx, `(define x 42)`)
//	session.Run(ctx, `(display x)`)  // 42
//
//	// Document build
//	builder := document.NewBuilder(eval)
//	out, _ := builder.Build(ctx, source)
//
// See the [evaluator], [render], [document], and [config] packages for
// detailed API documentation.
package lispdoc
