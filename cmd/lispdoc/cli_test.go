package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	resetHelpFlags(root)
	return buf.String(), err
}

// resetHelpFlags clears cobra's parsed help flags so one execution's
// --help does not leak into the next on the shared command tree.
func resetHelpFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("help"); f != nil {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, sub := range cmd.Commands() {
		resetHelpFlags(sub)
	}
}

func TestCLIHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedPhrases := []string{
		"lispdoc",
		"render",
		"eval",
		"repl",
		"serve",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("help output should contain %q", phrase)
		}
	}
}

func TestCLIRenderHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "render", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"session=NAME", "--output", "--fence"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("render help should contain %q", phrase)
		}
	}
}

func TestCLIEvalHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "eval", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"--code", "fragment"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("eval help should contain %q", phrase)
		}
	}
}

func TestCLIServeHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "serve", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"/evaluate", "/sessions", "/health", "--port"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("serve help should contain %q", phrase)
		}
	}
}

func TestCLIUnknownCommand(t *testing.T) {
	_, err := executeCommand(rootCmd, "bogus", "extra")
	if err == nil {
		t.Fatal("expected error for unknown command with extra args")
	}
}

func TestCLIHelpDoesNotStick(t *testing.T) {
	if _, err := executeCommand(rootCmd, "--help"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The next execution must validate its own args, not replay help.
	_, err := executeCommand(rootCmd, "bogus", "extra")
	if err == nil {
		t.Fatal("expected args error after a --help execution")
	}
	if !strings.Contains(err.Error(), "arg") {
		t.Errorf("unexpected error: %v", err)
	}
}
