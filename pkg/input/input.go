// Package input provides interactive terminal prompts.
//
// A Prompter reads answers from any reader and writes questions to any
// writer; commands build one over their own stdin and stdout.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Prompter asks questions on out and reads answers from in
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter over the given streams.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (p *Prompter) readLine() (string, bool) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// Prompt asks for text input. An empty answer or a read failure returns
// defaultValue.
func (p *Prompter) Prompt(message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprint(p.out, promptStyle.Render(message)+" "+
			hintStyle.Render(fmt.Sprintf("(%s)", defaultValue))+": ")
	} else {
		fmt.Fprint(p.out, promptStyle.Render(message)+": ")
	}

	answer, ok := p.readLine()
	if !ok || answer == "" {
		return defaultValue
	}
	return answer
}

// Confirm asks a yes/no question. Enter or a read failure returns
// defaultYes; otherwise only y/yes count as yes.
//
// Example:
//
//	if p.Confirm("Remove version attributes from project files?", true) {
//	    // strip
//	}
//	// Displays: Remove version attributes from project files? [Y/n]: _
func (p *Prompter) Confirm(message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprint(p.out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	answer, ok := p.readLine()
	answer = strings.ToLower(answer)
	if !ok || answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}

// Select lists options and returns the index of the chosen one. Answers may
// be a 1-based number or the option text itself. It re-asks on an invalid
// answer and fails once input is exhausted.
func (p *Prompter) Select(message string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to choose from")
	}

	fmt.Fprintln(p.out, promptStyle.Render(message))
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %s %s\n", hintStyle.Render(fmt.Sprintf("%d)", i+1)), opt)
	}

	for {
		fmt.Fprint(p.out, promptStyle.Render("Choice")+" "+hintStyle.Render(fmt.Sprintf("[1-%d]", len(options)))+": ")
		answer, ok := p.readLine()
		if !ok {
			return 0, fmt.Errorf("no selection made for %q", message)
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		for i, opt := range options {
			if answer == opt {
				return i, nil
			}
		}
		fmt.Fprintln(p.out, hintStyle.Render("Invalid choice, try again."))
	}
}
