package generator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConflictResolution is the decision for a target that already exists
type ConflictResolution int

const (
	Skip ConflictResolution = iota
	Overwrite
	ShowDiff
	Cancel
)

func (c ConflictResolution) String() string {
	switch c {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	case ShowDiff:
		return "diff"
	default:
		return "cancel"
	}
}

// ConflictStrategy decides what happens to an existing file
type ConflictStrategy interface {
	Resolve(path string, existing, newer []byte) (ConflictResolution, error)
}

// Resolver applies a ConflictStrategy. When the strategy asks for a diff,
// the Resolver shows it and asks again.
type Resolver struct {
	strategy    ConflictStrategy
	out         io.Writer
	interactive bool
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	frameStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// NewResolver picks a strategy from the command flags. force (--overwrite)
// cannot be combined with skip or diff. Without flags the user is asked
// when interactive is set; otherwise existing files are kept.
func NewResolver(force, skip, diff, interactive bool, out io.Writer) (*Resolver, error) {
	if force && (skip || diff) {
		return nil, fmt.Errorf("--overwrite cannot be combined with --skip or --diff")
	}
	if out == nil {
		out = os.Stdout
	}
	return &Resolver{
		strategy:    selectStrategy(force, skip, diff, interactive, out),
		out:         out,
		interactive: interactive,
	}, nil
}

// NewResolverWithStrategy wraps an explicit strategy.
func NewResolverWithStrategy(s ConflictStrategy, out io.Writer) *Resolver {
	if out == nil {
		out = os.Stdout
	}
	return &Resolver{strategy: s, out: out}
}

// ResolveConflict decides what to do with an existing file. Identical
// content is always skipped.
func (r *Resolver) ResolveConflict(path string, existing, newer []byte) (ConflictResolution, error) {
	if bytes.Equal(existing, newer) {
		return Skip, nil
	}
	for {
		res, err := r.strategy.Resolve(path, existing, newer)
		if err != nil || res != ShowDiff {
			return res, err
		}
		if err := r.showDiff(path, existing, newer); err != nil {
			return Cancel, err
		}
	}
}

func (r *Resolver) showDiff(path string, existing, newer []byte) error {
	d := Diff(path, existing, newer, DiffOptions{})
	if r.interactive && strings.Count(d, "\n") > 30 {
		_, err := tea.NewProgram(newDiffViewer(path, d), tea.WithAltScreen()).Run()
		if err != nil {
			return fmt.Errorf("failed to show diff: %w", err)
		}
		return nil
	}
	fmt.Fprint(r.out, d)
	return nil
}

func selectStrategy(force, skip, diff, interactive bool, out io.Writer) ConflictStrategy {
	switch {
	case force:
		return &ForceStrategy{}
	case skip:
		return &SkipStrategy{}
	case diff:
		return &DiffStrategy{Out: out, Interactive: interactive}
	case interactive:
		return &InteractiveStrategy{}
	default:
		return &SkipStrategy{}
	}
}

// ForceStrategy always overwrites
type ForceStrategy struct{}

func (s *ForceStrategy) Resolve(string, []byte, []byte) (ConflictResolution, error) {
	return Overwrite, nil
}

// SkipStrategy always keeps the existing file
type SkipStrategy struct{}

func (s *SkipStrategy) Resolve(string, []byte, []byte) (ConflictResolution, error) {
	return Skip, nil
}

// DiffStrategy prints the diff, then asks when interactive and keeps the
// existing file otherwise.
type DiffStrategy struct {
	Out         io.Writer
	Interactive bool
}

func (s *DiffStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	fmt.Fprint(s.Out, Diff(path, existing, newer, DiffOptions{}))
	if !s.Interactive {
		return Skip, nil
	}
	return (&InteractiveStrategy{}).Resolve(path, existing, newer)
}

// InteractiveStrategy shows a keyboard-driven menu
type InteractiveStrategy struct{}

func (s *InteractiveStrategy) Resolve(path string, _, _ []byte) (ConflictResolution, error) {
	info, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return Cancel, fmt.Errorf("failed to stat file: %w", err)
	}

	final, err := tea.NewProgram(newConflictMenu(path, info)).Run()
	if err != nil {
		return Cancel, fmt.Errorf("failed to show menu: %w", err)
	}
	menu := final.(conflictMenu)
	if menu.selected == nil {
		return Cancel, nil
	}
	return *menu.selected, nil
}

var menuChoices = []struct {
	label      string
	resolution ConflictResolution
}{
	{"Show diff", ShowDiff},
	{"Keep existing file", Skip},
	{"Replace with generated file", Overwrite},
	{"Cancel", Cancel},
}

type conflictMenu struct {
	path     string
	info     os.FileInfo
	cursor   int
	selected *ConflictResolution
}

func newConflictMenu(path string, info os.FileInfo) conflictMenu {
	return conflictMenu{path: path, info: info}
}

func (m conflictMenu) Init() tea.Cmd {
	return nil
}

func (m conflictMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(menuChoices)-1, m.cursor+1)
	case "enter":
		res := menuChoices[m.cursor].resolution
		m.selected = &res
		return m, tea.Quit
	}
	return m, nil
}

func (m conflictMenu) View() string {
	var b strings.Builder
	b.WriteString(warningStyle.Render("⚠️  "+m.path+" already exists") + "\n")
	if m.info != nil {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("    %s, modified %s",
			formatFileSize(m.info.Size()), m.info.ModTime().Format("2006-01-02 15:04"))) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("    [↑/↓] move  [enter] choose  [q] cancel") + "\n\n")

	for i, c := range menuChoices {
		if i == m.cursor {
			b.WriteString("    " + selectedStyle.Render("> "+c.label) + "\n")
		} else {
			b.WriteString("      " + c.label + "\n")
		}
	}
	return b.String()
}

// diffViewer pages through a long diff in the alternate screen
type diffViewer struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func newDiffViewer(path, content string) diffViewer {
	return diffViewer{title: "Diff: " + path, content: content}
}

func (m diffViewer) Init() tea.Cmd {
	return nil
}

func (m diffViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width, height := max(10, msg.Width-4), max(3, msg.Height-4)
		if !m.ready {
			m.viewport = viewport.New(width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width, m.viewport.Height = width, height
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewer) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	footer := mutedStyle.Render(fmt.Sprintf("%s  %3.f%%  [↑/↓/pgup/pgdn] scroll  [q] back",
		m.title, m.viewport.ScrollPercent()*100))
	return frameStyle.Render(m.viewport.View()) + "\n" + footer
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
