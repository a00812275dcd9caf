package executor

import (
	"bytes"
	"strings"
	"sync"
)

// MaxLineBytes caps a single retained line; longer lines keep their last bytes.
const MaxLineBytes = 4096

// OutputBuffer is a thread-safe ring of the last lines a process wrote.
// It implements io.Writer so it can be attached to both stdout and stderr.
// Both \n and a bare \r end a line, so each progress redraw is its own line.
type OutputBuffer struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
	partial  []byte
}

// NewOutputBuffer creates a buffer that keeps at most max lines
func NewOutputBuffer(max int) *OutputBuffer {
	if max <= 0 {
		max = 1
	}
	return &OutputBuffer{
		lines:    make([]string, 0, max),
		maxLines: max,
	}
}

// Write appends output, splitting it into lines. An unterminated trailing line is
// held, capped to MaxLineBytes, until the next line break or until String is called.
func (b *OutputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text := p
	for {
		i := bytes.IndexAny(text, "\r\n")
		if i < 0 {
			b.appendPartial(text)
			break
		}
		b.appendPartial(text[:i])
		b.push(string(b.partial))
		b.partial = b.partial[:0]
		text = text[i+1:]
	}
	return len(p), nil
}

func (b *OutputBuffer) appendPartial(p []byte) {
	b.partial = append(b.partial, p...)
	if over := len(b.partial) - MaxLineBytes; over > 0 {
		b.partial = append(b.partial[:0], b.partial[over:]...)
	}
}

func (b *OutputBuffer) push(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if len(b.lines) >= b.maxLines {
		b.lines = b.lines[1:]
	}
	b.lines = append(b.lines, line)
}

// String returns the retained lines joined by newlines
func (b *OutputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := b.lines
	if tail := strings.TrimSpace(string(b.partial)); tail != "" {
		lines = append(append([]string(nil), lines...), tail)
		if len(lines) > b.maxLines {
			lines = lines[1:]
		}
	}
	return strings.Join(lines, "\n")
}
