package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lispdoc/builtin"
	"lispdoc/config"
	"lispdoc/document"
	"lispdoc/evaluator"
	"lispdoc/render"
)

var rootCmd = &cobra.Command{
	Use:   "lispdoc [file]",
	Short: "Evaluate Lisp examples embedded in documents",
	Long: `lispdoc - Evaluate Lisp code blocks in markdown documents.

Marked code blocks are evaluated in order against a persistent
environment and rewritten with their transcripts: source, printed
output, and values or errors. The same document always renders to
the same bytes.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRender, // Default to render command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "lispdoc.yaml", "Config file path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: none, normal, debug (overrides config)")

	// Add render-specific flags to root (for default command)
	addRenderFlags(rootCmd)
}

// loadConfig reads the configured file and applies flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if level, _ := cmd.Root().PersistentFlags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	return cfg
}

func newEvaluator(cfg *config.Config) *evaluator.Evaluator {
	var opts []evaluator.Option
	if cfg.Prelude != "" {
		opts = append(opts, evaluator.WithPrelude(cfg.Prelude))
	}
	return evaluator.New(builtin.NewRegistry(), opts...)
}

func newBuilder(cfg *config.Config, log *zap.Logger, fence string) *document.Builder {
	if fence == "" {
		fence = cfg.Fence
	}
	return document.NewBuilder(newEvaluator(cfg),
		document.WithFenceTag(fence),
		document.WithRenderer(render.New(render.WithStyle(cfg.RenderStyle()))),
		document.WithLogger(log))
}
