// Package gate reads operator answers from the console.
package gate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Prompter asks the operator a question and returns the trimmed answer.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Console is a Prompter backed by a reader and a writer, normally stdin and
// stdout. A single goroutine reads lines for the lifetime of the Console, so a
// cancelled Ask never leaves a second reader behind.
type Console struct {
	out io.Writer
	in  io.Reader

	once  sync.Once
	lines chan string
	err   error // set before lines is closed
}

// NewConsole returns a Console reading from in and printing questions to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

// Stdio returns a Console on the process stdin and stdout.
func Stdio() *Console {
	return NewConsole(os.Stdin, os.Stdout)
}

func (c *Console) start() {
	c.once.Do(func() {
		c.lines = make(chan string, 16)
		go c.readLoop()
	})
}

func (c *Console) readLoop() {
	r := bufio.NewReader(c.in)
	for {
		line, err := r.ReadString('\n')
		if line != "" || err == nil {
			c.lines <- strings.TrimSpace(line)
		}
		if err != nil {
			c.err = err
			close(c.lines)
			return
		}
	}
}

// Ask prints question and waits for one line of input. A cancelled context
// returns ctx.Err() even while the read is still blocked; a line typed
// afterwards goes to the next Ask.
func (c *Console) Ask(ctx context.Context, question string) (string, error) {
	c.start()
	fmt.Fprint(c.out, question)

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", c.err
		}
		return line, nil
	}
}

// Confirm asks a y/n question. Only "y" or "yes" approve.
func Confirm(ctx context.Context, p Prompter, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" (y/n): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Interactive reports whether stdin is attached to a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
