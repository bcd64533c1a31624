package logstream

import "sync"

// Buffer holds received log lines in arrival order. With a limit of 0 it
// grows without bound; with a positive limit it keeps only the newest limit
// lines.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	limit int
}

// NewBuffer creates a buffer. limit <= 0 means unbounded.
func NewBuffer(limit int) *Buffer {
	if limit < 0 {
		limit = 0
	}
	return &Buffer{limit: limit}
}

// Append adds a line, evicting the oldest one when the buffer is full.
func (b *Buffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	if b.limit > 0 && len(b.lines) > b.limit {
		b.lines = b.lines[len(b.lines)-b.limit:]
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Limit returns the configured limit, 0 for unbounded.
func (b *Buffer) Limit() int {
	return b.limit
}
