package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lispdoc/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Evaluate a document's code blocks and rewrite them",
	Long: `Evaluate every marked code block in a document and replace each
with its transcript.

The document can be provided via:
  - File argument: lispdoc render guide.md
  - Stdin: cat guide.md | lispdoc render

Blocks with session=NAME share one environment in document order;
unnamed blocks each evaluate in a fresh one.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRender,
}

func init() {
	addRenderFlags(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().String("fence", "", "Fence info string marking evaluatable blocks (overrides config)")
}

func runRender(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	log := cfg.Logger()
	defer log.Sync()

	var source []byte
	var err error
	if len(args) > 0 {
		source, err = os.ReadFile(args[0])
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			// No piped input, show help
			cmd.Help()
			return
		}
		source, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fence, _ := cmd.Flags().GetString("fence")
	builder := newBuilder(cfg, log, fence)

	out, err := builder.Build(context.Background(), string(source))
	if err != nil {
		var ferr *render.FormattingError
		if errors.As(err, &ferr) {
			fmt.Fprintf(os.Stderr, "Error: nondeterministic value: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Print(out)
		return
	}
	if err := os.WriteFile(output, []byte(out), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
