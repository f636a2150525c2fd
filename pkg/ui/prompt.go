package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads menu choices and confirmations from one input stream.
type Prompter struct {
	in   *bufio.Reader
	out  io.Writer
	file *os.File
}

// NewPrompter wraps in and out. When in is a terminal, Confirm reads a single
// key in raw mode.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.file = f
	}
	return p
}

// Out returns the writer prompts are printed to.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// ReadLine prints prompt and returns the trimmed next line. A final line
// without a newline is returned before io.EOF.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.out, prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Anything but "y"/"yes" is a no.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	if p.file != nil && p.in.Buffered() == 0 {
		return p.confirmRaw(prompt)
	}
	answer, err := p.ReadLine(prompt + " (y/n): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (p *Prompter) confirmRaw(prompt string) (bool, error) {
	fd := int(p.file.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return false, err
	}
	defer term.Restore(fd, oldState)

	fmt.Fprint(p.out, prompt+" (y/n): ")
	b := make([]byte, 1)
	for {
		if _, err := p.file.Read(b); err != nil {
			return false, err
		}
		switch strings.ToLower(string(b[0])) {
		case "\x03":
			fmt.Fprint(p.out, "^C\r\n")
			return false, fmt.Errorf("cancelled")
		case "y":
			fmt.Fprint(p.out, "y\r\n")
			return true, nil
		case "n", "\r", "\n":
			fmt.Fprint(p.out, "n\r\n")
			return false, nil
		}
	}
}
