package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/steelseries/golisp"

	"lispdoc/evaluator"
)

func TestRenderValue(t *testing.T) {
	r := New()
	out, err := r.Render([]evaluator.Result{{
		Fragment: evaluator.Fragment{Source: "(+ 1 2)"},
		Outcome:  evaluator.Outcome{Kind: evaluator.OutcomeValue, Value: golisp.IntegerWithValue(3)},
	}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "> (+ 1 2)\n3\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderEffectWithOutput(t *testing.T) {
	r := New()
	out, err := r.Render([]evaluator.Result{{
		Fragment: evaluator.Fragment{Source: `(display "hi")`},
		Outcome:  evaluator.Outcome{Kind: evaluator.OutcomeEffect, Output: "hi"},
	}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "> (display \"hi\")\nhi\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderEffectNoOutput(t *testing.T) {
	r := New()
	out, err := r.Render([]evaluator.Result{{
		Fragment: evaluator.Fragment{Source: "(define x 5)"},
		Outcome:  evaluator.Outcome{Kind: evaluator.OutcomeEffect},
	}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "> (define x 5)\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderOutputBeforeValue(t *testing.T) {
	r := New()
	out, err := r.Render([]evaluator.Result{{
		Fragment: evaluator.Fragment{Source: `(begin (display "side") 9)`},
		Outcome: evaluator.Outcome{
			Kind:   evaluator.OutcomeValue,
			Value:  golisp.IntegerWithValue(9),
			Output: "side",
		},
	}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "> (begin (display \"side\") 9)\nside\n9\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderError(t *testing.T) {
	r := New()
	out, err := r.Render([]evaluator.Result{{
		Fragment: evaluator.Fragment{Source: "(/ 1 0)"},
		Outcome: evaluator.Outcome{
			Kind: evaluator.OutcomeError,
			Err:  &evaluator.EvalError{Kind: evaluator.ErrKindDivByZero, Message: "integer divide by zero"},
		},
	}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "> (/ 1 0)\nerror: div-by-zero: integer divide by zero\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderMultilineFragment(t *testing.T) {
	r := New()
	out, err := r.Render([]evaluator.Result{{
		Fragment: evaluator.Fragment{Source: "(define (square n)\n  (* n n))"},
		Outcome:  evaluator.Outcome{Kind: evaluator.OutcomeEffect},
	}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "> (define (square n)\n    (* n n))\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderCustomStyle(t *testing.T) {
	r := New(WithStyle(Style{Prompt: ">>> ", Continuation: "... ", ErrorPrefix: "!! "}))
	out, err := r.Render([]evaluator.Result{{
		Fragment: evaluator.Fragment{Source: "(oops)"},
		Outcome: evaluator.Outcome{
			Kind: evaluator.OutcomeError,
			Err:  &evaluator.EvalError{Kind: evaluator.ErrKindUnbound, Message: "oops is not bound"},
		},
	}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.HasPrefix(out, ">>> (oops)\n!! unbound") {
		t.Errorf("custom style ignored: %q", out)
	}
}

func TestRenderFormattingError(t *testing.T) {
	orig := printRepr
	printRepr = func(*golisp.Data) string { return "<function: 0xc000123456>" }
	defer func() { printRepr = orig }()

	r := New()
	res := evaluator.Result{
		Fragment: evaluator.Fragment{Source: "(make-handle)", Index: 3, Line: 12},
		Outcome:  evaluator.Outcome{Kind: evaluator.OutcomeValue, Value: golisp.IntegerWithValue(1)},
	}

	_, err := r.Render([]evaluator.Result{res})
	var ferr *FormattingError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FormattingError, got %v", err)
	}
	if ferr.Repr != "<function: 0xc000123456>" {
		t.Errorf("unexpected repr: %q", ferr.Repr)
	}
	if ferr.Fragment.Index != 3 {
		t.Errorf("unexpected fragment index: %d", ferr.Fragment.Index)
	}
	if !strings.Contains(ferr.Error(), "line 12") {
		t.Errorf("formatting error should carry location: %v", ferr)
	}

	if _, err := FormatValue(golisp.IntegerWithValue(1)); err == nil {
		t.Error("FormatValue should reject a nondeterministic representation")
	}
}

func TestDeterministic(t *testing.T) {
	if deterministic("<function: 0xc000123456>") {
		t.Error("address-bearing representation should be nondeterministic")
	}
	if !deterministic("(1 2 3)") {
		t.Error("plain representation should be deterministic")
	}
}

func TestFormatValue(t *testing.T) {
	repr, err := FormatValue(golisp.StringWithValue("hello"))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if repr != `"hello"` {
		t.Errorf("got %q", repr)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := New()
	results := []evaluator.Result{
		{
			Fragment: evaluator.Fragment{Source: "(define x 5)"},
			Outcome:  evaluator.Outcome{Kind: evaluator.OutcomeEffect},
		},
		{
			Fragment: evaluator.Fragment{Source: "(+ x 1)"},
			Outcome:  evaluator.Outcome{Kind: evaluator.OutcomeValue, Value: golisp.IntegerWithValue(6)},
		},
	}
	first, err := r.Render(results)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	second, err := r.Render(results)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if first != second {
		t.Error("rendering is not byte-identical across runs")
	}
}
