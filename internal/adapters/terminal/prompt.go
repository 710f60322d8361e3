// Package terminal reads interactive answers for the CLI and the REPL.
// Secrets are read without echo when the input is a terminal.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads one answer per line from its input.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // -1 unless in is a terminal
}

// New wraps in. When in is an *os.File attached to a terminal, Secret turns
// echo off while the user types.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// IsTerminal reports whether secrets are read without echo.
func (p *Prompter) IsTerminal() bool {
	return p.fd >= 0
}

// ReadLine prints label and returns the next line, trimmed.
func (p *Prompter) ReadLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	return strings.TrimSpace(s), err
}

// Line is ReadLine for callers that treat EOF as an empty answer.
func (p *Prompter) Line(label string) string {
	s, _ := p.ReadLine(label)
	return s
}

// Secret prints label and reads a password. Typed-ahead input already
// buffered is consumed as a normal line.
func (p *Prompter) Secret(label string) string {
	if !p.IsTerminal() || p.in.Buffered() > 0 {
		return p.Line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
