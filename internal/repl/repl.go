// Package repl implements the calculator's interactive loop.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Help describes the accepted syntax. It is printed for the help command.
const Help = `Enter an arithmetic expression, e.g. 2 * (3 + 4).
  numbers     42  1_000  0x2a  0o52  0b101010  3.5  .5  1e-3
  operators   + - * /  // (floor division)  % (modulo)  ** (power)
  unary       -x  +x
  grouping    ( )
Type 'quit' or 'exit' to stop.`

// Evaluator evaluates one line of input and formats the result.
type Evaluator interface {
	Eval(line string) (string, error)
}

// REPL reads expressions line by line and prints their results. Errors are
// printed and the loop continues.
type REPL struct {
	// Eval evaluates each line.
	Eval Evaluator
	// Prompt and Banner are used only on terminals.
	Prompt string
	Banner string
	// Log receives a record for each line evaluated. If nil, nothing is
	// logged.
	Log *slog.Logger
}

// Run reads lines from in until EOF or a quit command, writing results and
// errors to out. It prints no banner or prompts, so it suits piped input.
// Lines may be of any length.
func (r *REPL) Run(in io.Reader, out io.Writer) error {
	br := bufio.NewReader(in)
	for {
		line, err := br.ReadString('\n')
		if line != "" && r.line(line, out) {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// RunTerminal runs the loop on a terminal, with line editing and history.
// fd is the terminal's file descriptor, which is put into raw mode for the
// duration of the loop, and rw reads from and writes to the terminal.
func (r *REPL) RunTerminal(fd int, rw io.ReadWriter) error {
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("couldn't make terminal raw: %w", err)
	}
	defer term.Restore(fd, old)
	t := term.NewTerminal(rw, r.Prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}
	return r.runTerminal(t)
}

func (r *REPL) runTerminal(t *term.Terminal) error {
	if r.Banner != "" {
		fmt.Fprintln(t, r.Banner)
	}
	for {
		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if r.line(line, t) {
			return nil
		}
	}
}

// line handles one line of input. The result is true if the loop should stop.
func (r *REPL) line(line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(out, Help)
		return false
	}
	res, err := r.Eval.Eval(line)
	if err != nil {
		r.log().Debug("evaluation failed", slog.String("input", line), slog.Any("err", err))
		fmt.Fprintln(out, color.RedString("Error:"), err)
		return false
	}
	r.log().Debug("evaluated", slog.String("input", line), slog.String("result", res))
	fmt.Fprintln(out, res)
	return false
}

func (r *REPL) log() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}
