// Package ui implements the progress reporters: a plain console writer,
// an optional terminal status window, and a fan-out combining them.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/coreforge/enginesync/internal/domain"
)

// Console prints progress lines to a writer, one per line. It is always
// active; the status window only mirrors the same stream.
type Console struct {
	w io.Writer
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithWriter redirects output, primarily for tests.
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.w = w
	}
}

// NewConsole creates a Console writing to stdout.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		w: os.Stdout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Line prints one progress line.
func (c *Console) Line(text string) {
	fmt.Fprintln(c.w, text)
}

// Close is a no-op; the console has no surface to release.
func (c *Console) Close() error {
	return nil
}

// Ensure Console implements domain.Reporter.
var _ domain.Reporter = (*Console)(nil)
