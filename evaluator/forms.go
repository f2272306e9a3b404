package evaluator

import (
	"fmt"
	"strings"
)

// SplitForms splits source text into its top-level forms. Comments and
// whitespace between forms are dropped; strings, bracket lists, and reader
// prefixes (quote, quasiquote, unquote) are respected. An unbalanced or
// unterminated form yields an error.
func SplitForms(src string) ([]string, error) {
	var forms []string
	i := 0
	for {
		i = skipBlank(src, i)
		if i >= len(src) {
			break
		}
		end, err := scanForm(src, i)
		if err != nil {
			return nil, err
		}
		forms = append(forms, strings.TrimSpace(src[i:end]))
		i = end
	}
	return forms, nil
}

// Complete reports whether src holds only syntactically complete forms.
// Input with an unclosed paren or string is incomplete; anything else,
// including hard syntax errors, counts as complete so that evaluation can
// surface the error.
func Complete(src string) bool {
	_, err := SplitForms(src)
	if err == nil {
		return true
	}
	msg := err.Error()
	return !strings.Contains(msg, "unexpected end of input") &&
		!strings.Contains(msg, "unterminated")
}

func skipBlank(src string, i int) int {
	for i < len(src) {
		switch src[i] {
		case ';':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// scanForm returns the offset just past the form starting at i.
func scanForm(src string, i int) (int, error) {
	n := len(src)

	// Reader prefixes attach to the following form.
	for i < n && (src[i] == '\'' || src[i] == '`' || src[i] == ',') {
		i++
		if i < n && src[i] == '@' {
			i++
		}
	}
	i = skipBlank(src, i)
	if i >= n {
		return 0, fmt.Errorf("unexpected end of input after reader prefix")
	}

	switch src[i] {
	case '(', '[':
		depth := 0
		for i < n {
			switch src[i] {
			case '"':
				end, err := scanString(src, i)
				if err != nil {
					return 0, err
				}
				i = end
				continue
			case ';':
				for i < n && src[i] != '\n' {
					i++
				}
				continue
			case '(', '[':
				depth++
			case ')', ']':
				depth--
				if depth == 0 {
					return i + 1, nil
				}
				if depth < 0 {
					return 0, fmt.Errorf("unbalanced %q at offset %d", src[i], i)
				}
			}
			i++
		}
		return 0, fmt.Errorf("unexpected end of input: %d unclosed list(s)", depth)
	case ')', ']':
		return 0, fmt.Errorf("unbalanced %q at offset %d", src[i], i)
	case '"':
		return scanString(src, i)
	default:
		for i < n && !isDelimiter(src[i]) {
			i++
		}
		return i, nil
	}
}

func scanString(src string, i int) (int, error) {
	i++ // opening quote
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1, nil
		}
		i++
	}
	return 0, fmt.Errorf("unterminated string literal")
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', '"', ';':
		return true
	}
	return false
}

// definers are head symbols whose forms introduce or mutate bindings
// rather than produce a value worth echoing.
var definers = map[string]bool{
	"define":       true,
	"define-macro": true,
	"defmacro":     true,
	"defun":        true,
	"defvar":       true,
	"set!":         true,
	"setq":         true,
	"set-car!":     true,
	"set-cdr!":     true,
}

// bareSymbol reports whether form is a single symbol reference (not a
// list, literal, or reader form) and returns the symbol name.
func bareSymbol(form string) (string, bool) {
	s := strings.TrimSpace(form)
	if s == "" {
		return "", false
	}
	switch s[0] {
	case '(', '[', '"', '\'', '`', ',', '#', ':':
		return "", false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "", false
	}
	if (s[0] == '-' || s[0] == '+' || s[0] == '.') && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if isDelimiter(s[i]) {
			return "", false
		}
	}
	// Self-evaluating constants.
	switch s {
	case "nil", "t", "true", "false":
		return "", false
	}
	return s, true
}

// isDefinition reports whether the form's head symbol is a definer.
func isDefinition(form string) bool {
	i := skipBlank(form, 0)
	if i >= len(form) || (form[i] != '(' && form[i] != '[') {
		return false
	}
	i = skipBlank(form, i+1)
	start := i
	for i < len(form) && !isDelimiter(form[i]) {
		i++
	}
	return definers[form[start:i]]
}
