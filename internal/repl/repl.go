// Package repl provides the line-based command loop used when input is not
// an interactive terminal.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/altin/linesearch/internal/session"
)

const DefaultPrompt = ">>> "

// REPL reads one command per line. Input lines and interrupt signals are
// both consumed on the goroutine that calls Run, so the session is never
// touched concurrently.
type REPL struct {
	input      io.Reader
	output     io.Writer
	session    *session.Session
	prompt     string
	interrupts <-chan os.Signal
}

type Option func(*REPL)

func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		if prompt != "" {
			r.prompt = prompt
		}
	}
}

func WithInterrupts(ch <-chan os.Signal) Option {
	return func(r *REPL) { r.interrupts = ch }
}

func New(input io.Reader, output io.Writer, s *session.Session, opts ...Option) *REPL {
	r := &REPL{
		input:   input,
		output:  output,
		session: s,
		prompt:  DefaultPrompt,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run returns nil once the session printed its summary, either because of
// an exit command, an interrupt or the end of input.
func (r *REPL) Run(ctx context.Context) error {
	r.session.Welcome(r.output)

	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go r.readLines(lines, readErr, stop)

	for {
		fmt.Fprint(r.output, r.prompt)

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-r.interrupts:
			r.session.Interrupt(r.output)
			return nil

		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.output)
				r.session.Exit(r.output)
				return <-readErr
			}
			if r.session.Execute(r.output, line) {
				return nil
			}
		}
	}
}

func (r *REPL) readLines(lines chan<- string, readErr chan<- error, stop <-chan struct{}) {
	defer close(lines)
	reader := bufio.NewReader(r.input)
	for {
		line, err := reader.ReadString('\n')
		if line != "" || err == nil {
			select {
			case lines <- strings.TrimRight(line, "\r\n"):
			case <-stop:
				readErr <- nil
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			readErr <- err
			return
		}
	}
}
