package format

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/javasrc"
)

// Normalizer rewrites a source file into the project's code style
type Normalizer interface {
	Normalize(ctx context.Context, path string, src []byte) ([]byte, error)
}

// Builtin is the always-available layout pass: trailing whitespace is
// trimmed, runs of blank lines collapse to one, duplicate imports are dropped
// and the file ends with exactly one line terminator. Lines that start inside
// a literal or comment are copied unchanged, and the file keeps its dominant
// line terminator.
type Builtin struct{}

// Normalize implements Normalizer
func (Builtin) Normalize(ctx context.Context, path string, src []byte) ([]byte, error) {
	parser := javasrc.NewParser()
	defer parser.Close()
	file, err := parser.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}

	imports := make(map[int]javasrc.Import, len(file.Imports))
	for _, imp := range file.Imports {
		imports[imp.Span.Start] = imp
	}

	var out []string
	seenImports := make(map[string]bool)
	blank := false
	offset := 0
	for _, raw := range strings.SplitAfter(string(src), "\n") {
		start := offset
		offset += len(raw)
		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")

		if file.InVerbatim(start) {
			blank = false
			out = append(out, line)
			continue
		}
		if !file.InVerbatim(start + len(line)) {
			line = strings.TrimRight(line, " \t")
		}
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, line)
			continue
		}

		lead := len(line) - len(strings.TrimLeft(line, " \t"))
		if imp, ok := imports[start+lead]; ok && imp.Span.End == start+len(line) {
			key := importKey(imp)
			if seenImports[key] {
				continue
			}
			seenImports[key] = true
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return []byte{}, nil
	}
	newline := javasrc.LineTerminator(src)
	return []byte(strings.Join(out, newline) + newline), nil
}

func importKey(imp javasrc.Import) string {
	key := imp.Path
	if imp.Wildcard {
		key += ".*"
	}
	if imp.Static {
		key = "static " + key
	}
	return key
}

// Command pipes the source through an external formatter on stdin and takes
// its stdout. The placeholder {file} in Args is replaced by the file path.
type Command struct {
	Args []string
}

// Normalize implements Normalizer
func (c Command) Normalize(ctx context.Context, path string, src []byte) ([]byte, error) {
	if len(c.Args) == 0 {
		return src, nil
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = strings.ReplaceAll(a, "{file}", path)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(errors.GenerationErrorCode, err, "formatter %s failed for %s", args[0], path).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 && len(src) > 0 {
		return nil, errors.Newf(errors.GenerationErrorCode, "formatter %s produced no output for %s", args[0], path)
	}
	return stdout.Bytes(), nil
}

// Chain runs normalizers in order. A failing step is logged and skipped so
// the file keeps the output of the previous steps.
type Chain struct {
	steps  []Normalizer
	logger *zap.Logger
}

// NewChain creates a chain of normalizers
func NewChain(logger *zap.Logger, steps ...Normalizer) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{steps: steps, logger: logger.Named("format")}
}

// New returns the configured pipeline: the builtin pass, then the external
// command when one is configured.
func New(command []string, logger *zap.Logger) *Chain {
	steps := []Normalizer{Builtin{}}
	if len(command) > 0 {
		steps = append(steps, Command{Args: command})
	}
	return NewChain(logger, steps...)
}

// Normalize implements Normalizer
func (c *Chain) Normalize(ctx context.Context, path string, src []byte) ([]byte, error) {
	current := src
	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := step.Normalize(ctx, path, current)
		if err != nil {
			c.logger.Warn("normalization step failed; keeping previous output",
				zap.String("path", path), zap.Error(err))
			continue
		}
		current = out
	}
	return current, nil
}
