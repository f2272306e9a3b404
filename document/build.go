package document

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lispdoc/evaluator"
	"lispdoc/render"
)

// Builder evaluates a document's code blocks and splices their transcripts
// back into the text. Blocks sharing a session name share one persistent
// environment; blocks without a name each get a fresh one.
type Builder struct {
	eval     *evaluator.Evaluator
	renderer *render.Renderer
	log      *zap.Logger
	fenceTag string
	outTag   string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used during builds.
func WithLogger(log *zap.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = log
	}
}

// WithFenceTag sets the info string that marks evaluatable blocks.
func WithFenceTag(tag string) BuilderOption {
	return func(b *Builder) {
		b.fenceTag = tag
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) BuilderOption {
	return func(b *Builder) {
		b.renderer = r
	}
}

func NewBuilder(eval *evaluator.Evaluator, opts ...BuilderOption) *Builder {
	b := &Builder{
		eval:     eval,
		renderer: render.New(),
		log:      zap.NewNop(),
		fenceTag: DefaultFenceTag,
		outTag:   "lisp",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build evaluates every marked code block in src, in document order, and
// returns the document with each block replaced by its transcript. Builds
// are deterministic: the same input produces the same bytes. A value whose
// representation cannot reproduce aborts the build with the renderer's
// *render.FormattingError wrapped with the block's location.
func (b *Builder) Build(ctx context.Context, src string) (string, error) {
	blocks, err := Parse(src, b.fenceTag)
	if err != nil {
		return "", err
	}
	if len(blocks) == 0 {
		return src, nil
	}

	sessions := make(map[string]*evaluator.Session)
	defer func() {
		for _, s := range sessions {
			s.Close()
		}
	}()

	transcripts := make([]string, len(blocks))
	for i, blk := range blocks {
		sess, err := b.sessionFor(blk, sessions)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", blk.Line, err)
		}

		results, err := sess.RunAll(ctx, blk.Source)
		if blk.Session == "" {
			sess.Close()
		}
		if err != nil {
			return "", fmt.Errorf("line %d: %w", blk.Line, err)
		}

		text, err := b.renderer.Render(results)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", blk.Line, err)
		}
		transcripts[i] = text

		b.log.Debug("evaluated block",
			zap.Int("line", blk.Line),
			zap.String("session", blk.Session),
			zap.Int("fragments", len(results)))
	}

	out := b.splice(src, blocks, transcripts)
	b.log.Info("built document",
		zap.Int("blocks", len(blocks)),
		zap.Int("sessions", len(sessions)))
	return out, nil
}

func (b *Builder) sessionFor(blk Block, sessions map[string]*evaluator.Session) (*evaluator.Session, error) {
	if blk.Session == "" {
		return b.eval.NewSession()
	}
	if s, ok := sessions[blk.Session]; ok {
		return s, nil
	}
	s, err := b.eval.NewSession(evaluator.WithSessionName(blk.Session))
	if err != nil {
		return nil, err
	}
	sessions[blk.Session] = s
	return s, nil
}

// splice rebuilds the document with each block's fenced source replaced by
// a fenced transcript.
func (b *Builder) splice(src string, blocks []Block, transcripts []string) string {
	lines := strings.Split(src, "\n")

	var sb strings.Builder
	cursor := 0
	for i, blk := range blocks {
		for ; cursor < blk.startLine; cursor++ {
			sb.WriteString(lines[cursor])
			sb.WriteByte('\n')
		}
		sb.WriteString("```")
		sb.WriteString(b.outTag)
		sb.WriteByte('\n')
		sb.WriteString(transcripts[i])
		sb.WriteString("```")
		sb.WriteByte('\n')
		cursor = blk.endLine + 1
	}
	for ; cursor < len(lines); cursor++ {
		sb.WriteString(lines[cursor])
		if cursor < len(lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
