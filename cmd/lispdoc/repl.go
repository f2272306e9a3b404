package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"lispdoc/evaluator"
	"lispdoc/render"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive REPL with persistent state",
	Long: `Start an interactive REPL (Read-Eval-Print Loop) session.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (open parens continue on the next line)

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Run: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.lispdoc_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	historyFile, _ := cmd.Flags().GetString("history")

	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".lispdoc_history")
	}

	session, err := newEvaluator(cfg).NewSession(evaluator.WithSessionName("repl"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting session: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cfg.Style.Prompt,
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "lispdoc REPL (type 'exit' to quit, Ctrl+D to exit)")

	var pending strings.Builder

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				pending.Reset()
				rl.SetPrompt(cfg.Style.Prompt)
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			break
		}

		if pending.Len() > 0 {
			pending.WriteString("\n")
		}
		pending.WriteString(line)
		source := pending.String()

		// Keep reading until the parens balance.
		if !evaluator.Complete(source) {
			rl.SetPrompt(cfg.Style.Continuation)
			continue
		}
		pending.Reset()
		rl.SetPrompt(cfg.Style.Prompt)

		trimmed := strings.TrimSpace(source)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			break
		}

		results, err := session.RunAll(context.Background(), source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		for _, res := range results {
			if out := res.Outcome.Output; out != "" {
				fmt.Print(out)
				if !strings.HasSuffix(out, "\n") {
					fmt.Println()
				}
			}
			switch res.Outcome.Kind {
			case evaluator.OutcomeValue:
				repr, err := render.FormatValue(res.Outcome.Value)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				fmt.Println(repr)
			case evaluator.OutcomeError:
				fmt.Fprintf(os.Stderr, "%s%s\n", cfg.Style.ErrorPrefix, res.Outcome.Err)
			}
		}
	}
}
