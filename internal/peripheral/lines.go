package peripheral

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// ConsoleLines reads newline-terminated lines from a reader such as stdin.
// The reader is consumed on a background goroutine, so ReadLine can give up
// when its context ends. Close stops the goroutine once the current read
// returns.
type ConsoleLines struct {
	lines    chan string
	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	err      error
}

// NewConsoleLines starts reading r.
func NewConsoleLines(r io.Reader) *ConsoleLines {
	c := &ConsoleLines{
		lines: make(chan string),
		done:  make(chan struct{}),
		stop:  make(chan struct{}),
	}
	go c.scan(r)
	return c
}

func (c *ConsoleLines) scan(r io.Reader) {
	defer close(c.done)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case c.lines <- strings.TrimRight(scanner.Text(), "\r"):
		case <-c.stop:
			return
		}
	}
	c.err = scanner.Err()
}

// ReadLine implements LineSource. It returns io.EOF once the reader is
// exhausted.
func (c *ConsoleLines) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-c.lines:
		return line, nil
	case <-c.stop:
		return "", io.EOF
	case <-c.done:
		if c.err != nil {
			return "", deviceError("console", "read", c.err)
		}
		return "", io.EOF
	}
}

// Close stops delivering lines and makes ReadLine return io.EOF. A scan
// blocked inside the reader itself exits on its next line or at EOF.
func (c *ConsoleLines) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// LineFeed is a LineSource fed by Push, used for remote commands.
type LineFeed struct {
	lines chan string
}

// NewLineFeed creates a feed buffering up to size lines.
func NewLineFeed(size int) *LineFeed {
	if size < 1 {
		size = 1
	}
	return &LineFeed{lines: make(chan string, size)}
}

// Push queues a line without blocking. It reports false when the buffer is
// full and the line was dropped.
func (f *LineFeed) Push(line string) bool {
	select {
	case f.lines <- line:
		return true
	default:
		return false
	}
}

// ReadLine implements LineSource.
func (f *LineFeed) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-f.lines:
		return line, nil
	}
}
