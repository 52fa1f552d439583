// Package report prints human-readable progress lines.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	styleDim   = "\033[2m"
	styleReset = "\033[0m"
)

// Reporter receives progress lines from an archive run.
type Reporter interface {
	Info(text string)
	Detail(text string)
}

// Console writes Info lines as-is and Detail lines dimmed when color is on.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsole returns a reporter writing to out. Color is enabled when out is a terminal.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, color: IsTerminal(out)}
}

// WithColor forces color on or off.
func (c *Console) WithColor(on bool) *Console {
	c.color = on
	return c
}

func (c *Console) Info(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

func (c *Console) Detail(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color {
		fmt.Fprintln(c.out, styleDim+text+styleReset)
		return
	}
	fmt.Fprintln(c.out, text)
}

// IsTerminal reports whether w is a terminal file descriptor. NO_COLOR disables it.
func IsTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Discard drops every line.
type Discard struct{}

func (Discard) Info(string)   {}
func (Discard) Detail(string) {}

// Recorder keeps every line in memory.
type Recorder struct {
	mu    sync.Mutex
	Lines []Line
}

// Line is one recorded progress line.
type Line struct {
	Detail bool
	Text   string
}

func (r *Recorder) Info(text string) { r.add(false, text) }

func (r *Recorder) Detail(text string) { r.add(true, text) }

func (r *Recorder) add(detail bool, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, Line{Detail: detail, Text: text})
}

// Texts returns the recorded text in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Text
	}
	return out
}
