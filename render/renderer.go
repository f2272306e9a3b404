// Package render formats evaluated fragments into display transcripts.
//
// A transcript echoes each fragment's source behind a prompt, then the
// text it printed, then its value or error:
//
//	> (define x 5)
//	> (display "hi")
//	hi
//	> (+ x 1)
//	6
//	> (/ 1 0)
//	error: div-by-zero: ...
//
// Rendering is deterministic: the same results always produce the same
// bytes. A value whose printed representation cannot reproduce across runs
// (it leaks a machine address) raises a [FormattingError], which is fatal
// to a document build.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/steelseries/golisp"

	"lispdoc/evaluator"
)

// Style controls transcript formatting.
type Style struct {
	Prompt       string // prefix for a fragment's first source line
	Continuation string // prefix for its remaining source lines
	ErrorPrefix  string // prefix for rendered error outcomes
}

func DefaultStyle() Style {
	return Style{
		Prompt:       "> ",
		Continuation: "  ",
		ErrorPrefix:  "error: ",
	}
}

// Renderer maps evaluation results to display text.
type Renderer struct {
	style Style
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyle replaces the default style.
func WithStyle(s Style) Option {
	return func(r *Renderer) {
		r.style = s
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{style: DefaultStyle()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the display transcript for results, preserving input
// order. It fails only with a *FormattingError.
func (r *Renderer) Render(results []evaluator.Result) (string, error) {
	var sb strings.Builder
	for _, res := range results {
		if err := r.renderResult(&sb, res); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (r *Renderer) renderResult(sb *strings.Builder, res evaluator.Result) error {
	for i, line := range strings.Split(res.Fragment.Source, "\n") {
		if i == 0 {
			sb.WriteString(r.style.Prompt)
		} else {
			sb.WriteString(r.style.Continuation)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if out := res.Outcome.Output; out != "" {
		sb.WriteString(out)
		if !strings.HasSuffix(out, "\n") {
			sb.WriteByte('\n')
		}
	}

	switch res.Outcome.Kind {
	case evaluator.OutcomeValue:
		repr := printRepr(res.Outcome.Value)
		if !deterministic(repr) {
			return &FormattingError{Fragment: res.Fragment, Repr: repr}
		}
		sb.WriteString(repr)
		sb.WriteByte('\n')
	case evaluator.OutcomeError:
		sb.WriteString(r.style.ErrorPrefix)
		sb.WriteString(res.Outcome.Err.Kind)
		sb.WriteString(": ")
		sb.WriteString(res.Outcome.Err.Message)
		sb.WriteByte('\n')
	}
	return nil
}

// printRepr yields the written representation of a value. A variable so
// tests can substitute representations the interpreter only produces for
// opaque values.
var printRepr = golisp.String

// FormatValue returns the printed representation of a value, rejecting
// representations that cannot reproduce across runs.
func FormatValue(d *golisp.Data) (string, error) {
	repr := printRepr(d)
	if !deterministic(repr) {
		return "", fmt.Errorf("value representation is not deterministic: %s", repr)
	}
	return repr, nil
}

var addrPattern = regexp.MustCompile(`0x[0-9a-fA-F]{4,}`)

// deterministic reports whether a printed representation is stable across
// runs. Opaque values (functions, host objects) print with their machine
// address, which changes per process.
func deterministic(repr string) bool {
	return !addrPattern.MatchString(repr)
}

// FormattingError reports a value whose printed representation is not
// reproducible. It aborts a document build; the fragment identifies where.
type FormattingError struct {
	Fragment evaluator.Fragment
	Repr     string
}

func (e *FormattingError) Error() string {
	if e.Fragment.Line > 0 {
		return fmt.Sprintf("fragment %d (line %d): value representation is not deterministic: %s",
			e.Fragment.Index, e.Fragment.Line, e.Repr)
	}
	return fmt.Sprintf("fragment %d: value representation is not deterministic: %s",
		e.Fragment.Index, e.Repr)
}
