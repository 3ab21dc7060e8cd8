package generator

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// maxDiffLines bounds the quadratic line matching.
const maxDiffLines = 5000

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("green"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("red"))
)

// DiffOptions configures Diff. The zero value is usable.
type DiffOptions struct {
	// ContextLines around each change. Default: 3
	ContextLines int
	// Width truncates long lines. Default: terminal width, 0 if unknown.
	Width int
}

type editKind int

const (
	keep editKind = iota
	insert
	remove
)

type edit struct {
	kind     editKind
	text     string
	oldIndex int
	newIndex int
}

// Diff returns a unified diff of old and newer, or "" when they match.
func Diff(path string, old, newer []byte, opts DiffOptions) string {
	if opts.ContextLines <= 0 {
		opts.ContextLines = 3
	}
	if opts.Width == 0 {
		opts.Width = terminalWidth()
	}

	a, b := lines(old), lines(newer)
	if slicesEqual(a, b) {
		return ""
	}
	if len(a) > maxDiffLines || len(b) > maxDiffLines {
		return fmt.Sprintf("%s: too large to diff (%d and %d lines)\n", path, len(a), len(b))
	}

	var out strings.Builder
	out.WriteString(headerStyle.Render("--- "+path+" (current)") + "\n")
	out.WriteString(headerStyle.Render("+++ "+path+" (generated)") + "\n")
	for _, h := range hunks(editScript(a, b), opts.ContextLines) {
		writeHunk(&out, h, opts.Width)
	}
	return out.String()
}

func lines(data []byte) []string {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// editScript matches lines by longest common subsequence.
func editScript(a, b []string) []edit {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var script []edit
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			script = append(script, edit{keep, a[i], i, j})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			script = append(script, edit{remove, a[i], i, j})
			i++
		default:
			script = append(script, edit{insert, b[j], i, j})
			j++
		}
	}
	return script
}

type hunk struct {
	edits []edit
}

// hunks groups changes that lie within 2*context lines of each other.
func hunks(script []edit, context int) []hunk {
	var result []hunk
	i := 0
	for i < len(script) {
		for i < len(script) && script[i].kind == keep {
			i++
		}
		if i == len(script) {
			break
		}

		start := max(0, i-context)
		end := i
		for end < len(script) {
			if script[end].kind != keep {
				end++
				continue
			}
			run := end
			for run < len(script) && script[run].kind == keep {
				run++
			}
			if run == len(script) || run-end > 2*context {
				end = min(run, end+context)
				break
			}
			end = run
		}
		result = append(result, hunk{edits: script[start:end]})
		i = end
	}
	return result
}

func writeHunk(out *strings.Builder, h hunk, width int) {
	first := h.edits[0]
	var oldCount, newCount int
	for _, e := range h.edits {
		if e.kind != insert {
			oldCount++
		}
		if e.kind != remove {
			newCount++
		}
	}
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", first.oldIndex+1, oldCount, first.newIndex+1, newCount)
	out.WriteString(hunkStyle.Render(header) + "\n")

	for _, e := range h.edits {
		text := truncate(e.text, width-2)
		switch e.kind {
		case insert:
			out.WriteString(addedStyle.Render("+ "+text) + "\n")
		case remove:
			out.WriteString(removedStyle.Render("- "+text) + "\n")
		default:
			out.WriteString("  " + text + "\n")
		}
	}
}

func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
