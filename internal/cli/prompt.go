package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from the terminal (or a test reader).
type prompter struct {
	raw io.Reader
	r   *bufio.Reader
	w   io.Writer
}

func newPrompter(in io.Reader, w io.Writer) *prompter {
	return &prompter{raw: in, r: bufio.NewReader(in), w: w}
}

func (p *prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.w, prompt)
	s, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Password hides input on a real terminal.
func (p *prompter) Password(prompt string) (string, error) {
	if f, ok := p.raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.w, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.w)
		return string(b), err
	}
	return p.Line(prompt)
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *prompter) Confirm(prompt string) bool {
	ans, err := p.Line(prompt + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "y", "yes":
		return true
	}
	return false
}

// yes always confirms (-y).
type yes struct{}

func (yes) Confirm(string) bool { return true }
