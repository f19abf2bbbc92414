// Package prompter asks the user for input on the terminal.
package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from in and writes questions to out
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal used for hidden input, or -1 when in is not a terminal
	fd int
}

// New creates a prompter over arbitrary streams. Passwords are read as plain lines.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
}

// Stdio prompts on the process terminal
func Stdio() *Prompter {
	p := New(os.Stdin, os.Stdout)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		p.fd = fd
	}
	return p
}

func (p *Prompter) line() (string, error) {
	input, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimRight(input, "\r\n"), nil
}

// String prompts for one line, trimmed. An empty answer returns def.
func (p *Prompter) String(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	input, err := p.line()
	if err != nil {
		return "", err
	}
	if input = strings.TrimSpace(input); input == "" {
		return def, nil
	}
	return input, nil
}

// Password prompts without echo when attached to a terminal
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.fd < 0 {
		return p.line()
	}
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Confirm prompts for yes/no
func (p *Prompter) Confirm(label string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/n) ", label)
	input, err := p.line()
	if err != nil {
		return false, err
	}
	response := strings.TrimSpace(strings.ToLower(input))
	return response == "y" || response == "yes", nil
}

// Select prompts for one of options and returns its index
func (p *Prompter) Select(label string, options []string) (int, error) {
	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "%d) %s\n", i+1, opt)
	}
	fmt.Fprint(p.out, "Select option: ")

	input, err := p.line()
	if err != nil {
		return -1, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(options) {
		return -1, fmt.Errorf("invalid selection %q", strings.TrimSpace(input))
	}
	return n - 1, nil
}

// MultiSelect prompts for several options as comma separated numbers. An empty
// answer keeps current.
func (p *Prompter) MultiSelect(label string, options []string, current []string) ([]string, error) {
	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		mark := " "
		for _, c := range current {
			if c == opt {
				mark = "x"
			}
		}
		fmt.Fprintf(p.out, "[%s] %d) %s\n", mark, i+1, opt)
	}
	fmt.Fprint(p.out, "Select options (e.g. 1,3): ")

	input, err := p.line()
	if err != nil {
		return nil, err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}

	var chosen []string
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("invalid selection %q", strings.TrimSpace(part))
		}
		if !seen[n] {
			seen[n] = true
			chosen = append(chosen, options[n-1])
		}
	}
	return chosen, nil
}

// Multiline prompts for text until an empty line or maxLines lines
func (p *Prompter) Multiline(label string, maxLines int) (string, error) {
	fmt.Fprintf(p.out, "%s (empty line to finish):\n", label)

	var lines []string
	for len(lines) < maxLines {
		line, err := p.line()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
