package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lispdoc/evaluator"
	"lispdoc/render"
)

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate Lisp source and print the transcript",
	Long: `Evaluate Lisp source fragment by fragment and print the transcript.

Source can be provided via:
  - File argument: lispdoc eval examples.lisp
  - Inline flag: lispdoc eval -c '(+ 1 2)'
  - Stdin: echo '(+ 1 2)' | lispdoc eval

Exits nonzero if any fragment errored.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEval,
}

func init() {
	evalCmd.Flags().StringP("code", "c", "", "Source to evaluate")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	log := cfg.Logger()
	defer log.Sync()

	code, _ := cmd.Flags().GetString("code")

	var source string
	switch {
	case code != "":
		source = code
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	default:
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			cmd.Help()
			return
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
		if source == "" {
			cmd.Help()
			return
		}
	}

	results, err := newEvaluator(cfg).Eval(context.Background(), source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	text, err := render.New(render.WithStyle(cfg.RenderStyle())).Render(results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(text)

	for _, res := range results {
		if res.Outcome.Kind == evaluator.OutcomeError {
			os.Exit(1)
		}
	}
}
