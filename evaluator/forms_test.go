package evaluator

import "testing"

func TestSplitFormsBasic(t *testing.T) {
	forms, err := SplitForms("(define x 5)\n(+ x 1)")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d: %v", len(forms), forms)
	}
	if forms[0] != "(define x 5)" || forms[1] != "(+ x 1)" {
		t.Errorf("unexpected forms: %v", forms)
	}
}

func TestSplitFormsStringsAndComments(t *testing.T) {
	src := `
; leading comment with (parens
(display "a (string) with ; semicolon")
(+ 1 2) ; trailing comment
`
	forms, err := SplitForms(src)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d: %v", len(forms), forms)
	}
	if forms[0] != `(display "a (string) with ; semicolon")` {
		t.Errorf("string form mangled: %q", forms[0])
	}
}

func TestSplitFormsEscapedQuote(t *testing.T) {
	forms, err := SplitForms(`(display "say \"hi\"")`)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("expected 1 form, got %d: %v", len(forms), forms)
	}
}

func TestSplitFormsAtomsAndQuotes(t *testing.T) {
	forms, err := SplitForms("x 'sym `(a ,b) 42")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	want := []string{"x", "'sym", "`(a ,b)", "42"}
	if len(forms) != len(want) {
		t.Fatalf("expected %d forms, got %d: %v", len(want), len(forms), forms)
	}
	for i := range want {
		if forms[i] != want[i] {
			t.Errorf("forms[%d] = %q, want %q", i, forms[i], want[i])
		}
	}
}

func TestSplitFormsMultiline(t *testing.T) {
	src := "(define (square n)\n  (* n n))"
	forms, err := SplitForms(src)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("expected 1 form, got %d: %v", len(forms), forms)
	}
	if forms[0] != src {
		t.Errorf("multiline form mangled: %q", forms[0])
	}
}

func TestSplitFormsUnbalanced(t *testing.T) {
	if _, err := SplitForms("(define x"); err == nil {
		t.Error("expected error for unclosed form")
	}
	if _, err := SplitForms("(+ 1 2))"); err == nil {
		t.Error("expected error for extra close paren")
	}
	if _, err := SplitForms(`(display "oops`); err == nil {
		t.Error("expected error for unterminated string")
	}
}

func TestSplitFormsEmpty(t *testing.T) {
	forms, err := SplitForms("  ; only a comment\n\n")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(forms) != 0 {
		t.Errorf("expected no forms, got %v", forms)
	}
}

func TestComplete(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"(+ 1 2)", true},
		{"(define (f x)", false},
		{`(display "unclosed`, false},
		{"(+ 1 2))", true}, // hard error: submit and report
		{"", true},
	}
	for _, tc := range cases {
		if got := Complete(tc.src); got != tc.want {
			t.Errorf("Complete(%q) = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestIsDefinition(t *testing.T) {
	cases := []struct {
		form string
		want bool
	}{
		{"(define x 5)", true},
		{"(define (f x) x)", true},
		{"(defmacro (when c . body) ...)", true},
		{"(set! x 10)", true},
		{"(+ 1 2)", false},
		{"x", false},
		{`"define"`, false},
	}
	for _, tc := range cases {
		if got := isDefinition(tc.form); got != tc.want {
			t.Errorf("isDefinition(%q) = %v, want %v", tc.form, got, tc.want)
		}
	}
}

func TestBareSymbol(t *testing.T) {
	cases := []struct {
		form string
		sym  string
		want bool
	}{
		{"x", "x", true},
		{"  answer  ", "answer", true},
		{"list->vector", "list->vector", true},
		{"(+ 1 2)", "", false},
		{"42", "", false},
		{"-17", "", false},
		{"3.14", "", false},
		{`"x"`, "", false},
		{"'x", "", false},
		{"nil", "", false},
		{"true", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		sym, ok := bareSymbol(tc.form)
		if ok != tc.want || sym != tc.sym {
			t.Errorf("bareSymbol(%q) = (%q, %v), want (%q, %v)", tc.form, sym, ok, tc.sym, tc.want)
		}
	}
}
