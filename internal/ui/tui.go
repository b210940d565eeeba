// Package ui provides the interactive terminal board.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prodman/internal/board"
)

// Run starts the TUI over a loaded board. The board has already been loaded
// by the caller; every mutation made here persists through the board's own
// write-through saver.
func Run(ctx context.Context, b *board.Board, exportDir string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	m := newModel(b, exportDir)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// IsTTY returns true if the file is a terminal.
func IsTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

type inputMode int

const (
	modeView inputMode = iota
	modeAddTitle
	modeAddComment
	modeEditTitle
	modeEditComment
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle       = lipgloss.NewStyle().Faint(true)
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	commentStyle   = lipgloss.NewStyle().Faint(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

type model struct {
	b         *board.Board
	exportDir string

	catIdx int
	cursor int

	mode         inputMode
	input        textinput.Model
	pendingTitle string
	editID       string

	status   string
	statusOK bool
	showHelp bool
}

func newModel(b *board.Board, exportDir string) *model {
	input := textinput.New()
	input.CharLimit = 0
	return &model{
		b:         b,
		exportDir: exportDir,
		input:     input,
		statusOK:  true,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) category() board.Category {
	return board.Categories()[m.catIdx]
}

func (m *model) clampCursor() {
	n := m.b.Len(m.category())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) selected() (board.Item, bool) {
	items := m.b.Items(m.category())
	if m.cursor < 0 || m.cursor >= len(items) {
		return board.Item{}, false
	}
	return items[m.cursor], true
}

func (m *model) say(msg string) {
	m.status = msg
	m.statusOK = true
}

func (m *model) fail(err error) {
	m.status = err.Error()
	m.statusOK = false
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.mode != modeView {
			return m.updateInput(key)
		}
		return m.updateView(key)
	}
	return m, nil
}

func (m *model) updateView(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "tab", "right", "l":
		m.catIdx = (m.catIdx + 1) % len(board.Categories())
		m.clampCursor()
	case "shift+tab", "left", "h":
		m.catIdx = (m.catIdx + len(board.Categories()) - 1) % len(board.Categories())
		m.clampCursor()
	case "1":
		m.catIdx = 0
		m.clampCursor()
	case "2":
		m.catIdx = 1
		m.clampCursor()
	case "3":
		m.catIdx = 2
		m.clampCursor()
	case "down", "j":
		if m.cursor < m.b.Len(m.category())-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "J":
		if m.cursor < m.b.Len(m.category())-1 {
			if err := m.b.Move(m.category(), m.cursor, m.cursor+1); err != nil {
				m.fail(err)
			} else {
				m.cursor++
				m.say("Moved down")
			}
		}
	case "K":
		if m.cursor > 0 {
			if err := m.b.Move(m.category(), m.cursor, m.cursor-1); err != nil {
				m.fail(err)
			} else {
				m.cursor--
				m.say("Moved up")
			}
		}
	case "a":
		m.mode = modeAddTitle
		m.input.Placeholder = "Title"
		m.input.SetValue("")
		m.input.Focus()
	case "e":
		if it, ok := m.selected(); ok {
			m.mode = modeEditTitle
			m.editID = it.ID
			m.input.Placeholder = "Title"
			m.input.SetValue(it.Title)
			m.input.Focus()
		}
	case "d":
		if it, ok := m.selected(); ok {
			if err := m.b.Delete(it.ID); err != nil {
				m.fail(err)
			} else {
				m.clampCursor()
				m.say("Deleted " + it.Title)
			}
		}
	case "s":
		m.sort(board.SortTitleAsc)
	case "S":
		m.sort(board.SortTitleDesc)
	case "o":
		m.sort(board.SortDateAsc)
	case "O":
		m.sort(board.SortDateDesc)
	case "x":
		m.export()
	}
	return m, nil
}

func (m *model) sort(mode board.SortMode) {
	if err := m.b.Sort(m.category(), mode); err != nil {
		m.fail(err)
		return
	}
	m.say(fmt.Sprintf("Sorted %s (%s)", m.category(), mode))
}

func (m *model) export() {
	cat := m.category()
	md, err := m.b.ExportMarkdown(cat)
	if err != nil {
		m.fail(err)
		return
	}
	path := filepath.Join(m.exportDir, string(cat)+".md")
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		m.fail(fmt.Errorf("write export: %w", err))
		return
	}
	m.say("Exported to " + path)
}

func (m *model) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", "ctrl+c":
		m.mode = modeView
		m.input.Blur()
		return m, nil
	case "enter":
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeAddTitle:
		if value == "" {
			// Keep prompting until a title is given or the user cancels.
			return m, nil
		}
		m.pendingTitle = value
		m.mode = modeAddComment
		m.input.Placeholder = "Comment (optional)"
		m.input.SetValue("")
	case modeAddComment:
		it, err := m.b.Add(m.category(), m.pendingTitle, value)
		m.mode = modeView
		m.input.Blur()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.cursor = m.b.Len(m.category()) - 1
		m.say("Added " + it.Title)
	case modeEditTitle:
		if value == "" {
			return m, nil
		}
		m.pendingTitle = value
		m.mode = modeEditComment
		it, _, _ := m.b.Find(m.editID)
		m.input.Placeholder = "Comment (optional)"
		m.input.SetValue(it.Comment)
	case modeEditComment:
		err := m.b.Update(m.editID, m.pendingTitle, value)
		m.mode = modeView
		m.input.Blur()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.say("Saved " + m.pendingTitle)
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Production Manager") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	writeTabs(&b, m.b, m.catIdx)
	b.WriteString("\n")

	items := m.b.Items(m.category())
	if len(items) == 0 {
		b.WriteString(commentStyle.Render("  (no items)") + "\n")
	}
	for i, it := range items {
		marker := "  "
		line := fmt.Sprintf("%s%s", marker, it.Title)
		if i == m.cursor && m.mode == modeView {
			line = cursorStyle.Render(fmt.Sprintf("> %s", it.Title))
		}
		b.WriteString(line + "\n")
		if it.Comment != "" {
			b.WriteString(commentStyle.Render("    "+firstLine(it.Comment)) + "\n")
		}
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAddTitle, modeEditTitle:
		b.WriteString("Title: " + m.input.View() + "\n")
	case modeAddComment, modeEditComment:
		b.WriteString("Comment: " + m.input.View() + "\n")
	default:
		if m.status != "" {
			style := statusStyle
			if !m.statusOK {
				style = errorStyle
			}
			b.WriteString(style.Render(m.status) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a add · e edit · d delete · J/K move · s/S/o/O sort · x export · ? help · q quit") + "\n")
	return b.String()
}

func writeTabs(b *strings.Builder, brd *board.Board, active int) {
	var tabs []string
	for i, cat := range board.Categories() {
		label := fmt.Sprintf("%s (%d)", cat, brd.Len(cat))
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "  |  ") + "\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keys\n\n")
	b.WriteString("  tab / 1-3     switch category\n")
	b.WriteString("  j / k         move cursor\n")
	b.WriteString("  a             add item (title, then comment)\n")
	b.WriteString("  e             edit selected item\n")
	b.WriteString("  d             delete selected item\n")
	b.WriteString("  J / K         move selected item down / up\n")
	b.WriteString("  s / S         sort by title A-Z / Z-A\n")
	b.WriteString("  o / O         sort by date oldest / newest first\n")
	b.WriteString("  x             export category to markdown\n")
	b.WriteString("  ?             toggle this help\n")
	b.WriteString("  q             quit\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
