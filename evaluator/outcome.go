package evaluator

import (
	"strings"

	"github.com/steelseries/golisp"
)

// Fragment is one unit of source text evaluated within a session.
type Fragment struct {
	Source string
	Index  int // position within the session, starting at 0
	Line   int // 1-based line in the source document, 0 if unknown
}

// OutcomeKind tags the result of evaluating one fragment. Exactly one tag
// holds per fragment.
type OutcomeKind int

const (
	// OutcomeValue: evaluation completed and produced a value.
	OutcomeValue OutcomeKind = iota
	// OutcomeEffect: evaluation completed with no meaningful value, only
	// side effects (captured output, new bindings).
	OutcomeEffect
	// OutcomeError: evaluation raised.
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValue:
		return "value"
	case OutcomeEffect:
		return "effect"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of evaluating one fragment. Output holds
// the text captured from the printing primitives regardless of kind.
// Outcomes are immutable once produced.
type Outcome struct {
	Kind   OutcomeKind
	Value  *golisp.Data // set when Kind == OutcomeValue
	Output string
	Err    *EvalError // set when Kind == OutcomeError
}

// EvalError describes an error raised while evaluating a fragment. Kind is
// a stable classification string; Message is the interpreter's text.
type EvalError struct {
	Kind    string
	Message string
}

func (e *EvalError) Error() string {
	return e.Kind + ": " + e.Message
}

// Error kinds.
const (
	ErrKindParse     = "parse"
	ErrKindDivByZero = "div-by-zero"
	ErrKindUnbound   = "unbound"
	ErrKindArity     = "arity"
	ErrKindType      = "type"
	ErrKindEval      = "eval"
)

// classifyError maps interpreter error text onto a stable error kind.
// The interpreter reports everything as formatted strings, so kinds are
// recovered from message patterns.
func classifyError(err error) *EvalError {
	// The interpreter formats errors with a leading newline; trim so
	// transcripts do not carry a dangling prefix line.
	msg := strings.TrimSpace(err.Error())
	lower := strings.ToLower(msg)

	kind := ErrKindEval
	switch {
	case strings.Contains(lower, "divide by zero"),
		strings.Contains(lower, "division by zero"):
		kind = ErrKindDivByZero
	case strings.Contains(lower, "not bound"),
		strings.Contains(lower, "undefined"),
		strings.Contains(lower, "void:"),
		strings.Contains(lower, "function or macro expected"):
		kind = ErrKindUnbound
	case strings.Contains(lower, "parameters"):
		kind = ErrKindArity
	case strings.Contains(lower, "expected") && strings.Contains(lower, "received"),
		strings.Contains(lower, "wrong type"):
		kind = ErrKindType
	}

	return &EvalError{Kind: kind, Message: msg}
}
