// Package document builds evaluated documents: markdown files whose
// fenced code blocks are executed in order and rewritten with their
// evaluation transcripts.
package document

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// DefaultFenceTag is the info string that marks a fenced code block for
// evaluation.
const DefaultFenceTag = "lisp eval"

// Block is one evaluatable fenced code block found in a document.
type Block struct {
	// Session names the persistent session this block evaluates in.
	// Empty means the block runs in its own throwaway session.
	Session string
	// Source is the block's code, without the fence lines.
	Source string
	// Info is the fence's full info string.
	Info string
	// Line is the 1-based line of the block's opening fence.
	Line int

	startLine int // opening fence, 0-based
	endLine   int // closing fence, 0-based
}

// Parse scans src for fenced code blocks whose info string starts with
// fenceTag and returns them in document order. Other fenced blocks are
// skipped whole, so evaluatable-looking text inside them is ignored.
func Parse(src, fenceTag string) ([]Block, error) {
	lines := strings.Split(src, "\n")

	var blocks []Block
	var errs error
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		info := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		open := i

		// Find the closing fence.
		closed := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				closed = j
				break
			}
		}
		if closed < 0 {
			errs = multierr.Append(errs, fmt.Errorf("line %d: unclosed code fence", open+1))
			break
		}
		i = closed

		session, ok, err := matchInfo(info, fenceTag)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", open+1, err))
			continue
		}
		if !ok {
			continue
		}

		blocks = append(blocks, Block{
			Session:   session,
			Source:    strings.Join(lines[open+1:closed], "\n"),
			Info:      info,
			Line:      open + 1,
			startLine: open,
			endLine:   closed,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return blocks, nil
}

// matchInfo reports whether info marks an evaluatable block for fenceTag
// and extracts its session name, if any. The info string is the fence tag
// followed by optional key=value attributes.
func matchInfo(info, fenceTag string) (session string, ok bool, err error) {
	if info != fenceTag && !strings.HasPrefix(info, fenceTag+" ") {
		return "", false, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(info, fenceTag))
	for _, attr := range strings.Fields(rest) {
		key, val, found := strings.Cut(attr, "=")
		if !found {
			return "", false, fmt.Errorf("malformed attribute %q", attr)
		}
		switch key {
		case "session":
			if val == "" {
				return "", false, fmt.Errorf("empty session name")
			}
			session = val
		default:
			return "", false, fmt.Errorf("unknown attribute %q", key)
		}
	}
	return session, true, nil
}
