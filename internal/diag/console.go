// Package diag provides the diagnostic console shared by all tasks.
//
// Every write goes through a single mutex so lines from concurrent tasks never
// interleave. Callers must not hold the console across slow work: format
// first, then write.
package diag

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Console is a line-oriented, append-only diagnostic sink.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	logger *log.Logger
}

// New creates a Console writing to out with the standard log timestamp flags.
func New(out io.Writer) *Console {
	return NewWithFlags(out, log.LstdFlags|log.Lmicroseconds)
}

// NewWithFlags creates a Console with explicit log flags (0 in tests).
func NewWithFlags(out io.Writer, flags int) *Console {
	return &Console{
		out:    out,
		logger: log.New(out, "", flags),
	}
}

// Printf writes one formatted line.
func (c *Console) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	c.mu.Lock()
	c.logger.Output(2, line)
	c.mu.Unlock()
}

// Lines writes several lines back to back with no other task's output
// between them.
func (c *Console) Lines(lines ...string) {
	c.mu.Lock()
	for _, l := range lines {
		c.logger.Output(2, l)
	}
	c.mu.Unlock()
}

// Write implements io.Writer so the standard logger can share the lock:
//
//	log.SetOutput(console)
//
// p is expected to hold whole lines, as written by log.Logger.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

// Tagged returns a printf-style function that prefixes every line with
// "[tag] ", matching the firmware's console convention.
func (c *Console) Tagged(tag string) func(format string, args ...any) {
	prefix := "[" + strings.ToUpper(tag) + "] "
	return func(format string, args ...any) {
		c.Printf(prefix+format, args...)
	}
}
