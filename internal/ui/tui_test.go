package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"prodman/internal/board"
)

type nopSaver struct{}

func (nopSaver) Save(board.Snapshot) error { return nil }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeString(m *model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestViewShowsCategoriesAndItems(t *testing.T) {
	b := board.New(nopSaver{})
	if _, err := b.Add(board.CategoryExtension, "My Item", "a comment"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	m := newModel(b, t.TempDir())

	view := m.View()
	for _, cat := range board.Categories() {
		if !strings.Contains(view, string(cat)) {
			t.Errorf("view missing category %s:\n%s", cat, view)
		}
	}
	if !strings.Contains(view, "My Item") {
		t.Errorf("view missing item title:\n%s", view)
	}
	if !strings.Contains(view, "a comment") {
		t.Errorf("view missing item comment:\n%s", view)
	}
}

func TestAddFlow(t *testing.T) {
	b := board.New(nopSaver{})
	m := newModel(b, t.TempDir())

	m.Update(key("a"))
	typeString(m, "New Thing")
	m.Update(key("enter"))
	typeString(m, "with comment")
	m.Update(key("enter"))

	items := b.Items(board.CategoryExtension)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Title != "New Thing" || items[0].Comment != "with comment" {
		t.Errorf("got %+v", items[0])
	}
}

func TestAddCancelled(t *testing.T) {
	b := board.New(nopSaver{})
	m := newModel(b, t.TempDir())

	m.Update(key("a"))
	typeString(m, "abandoned")
	m.Update(key("esc"))

	if b.Len(board.CategoryExtension) != 0 {
		t.Error("cancelled add created an item")
	}
}

func TestDeleteSelected(t *testing.T) {
	b := board.New(nopSaver{})
	b.Add(board.CategoryExtension, "doomed", "")
	m := newModel(b, t.TempDir())

	m.Update(key("d"))
	if b.Len(board.CategoryExtension) != 0 {
		t.Error("delete key did not remove the selected item")
	}
	// Deleting with nothing selected is a no-op.
	m.Update(key("d"))
}

func TestCategorySwitch(t *testing.T) {
	b := board.New(nopSaver{})
	m := newModel(b, t.TempDir())

	m.Update(key("tab"))
	if m.category() != board.CategoryWebApp {
		t.Errorf("after tab: %s, want WebApp", m.category())
	}
	m.Update(key("3"))
	if m.category() != board.CategoryWindowsApp {
		t.Errorf("after 3: %s, want WindowsApp", m.category())
	}
	m.Update(key("tab"))
	if m.category() != board.CategoryExtension {
		t.Errorf("tab must wrap around, got %s", m.category())
	}
}

func TestMoveKeys(t *testing.T) {
	b := board.New(nopSaver{})
	b.Add(board.CategoryExtension, "first", "")
	b.Add(board.CategoryExtension, "second", "")
	m := newModel(b, t.TempDir())

	m.Update(key("J"))
	items := b.Items(board.CategoryExtension)
	if items[0].Title != "second" || items[1].Title != "first" {
		t.Errorf("J did not move item down: %v", []string{items[0].Title, items[1].Title})
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (follows the moved item)", m.cursor)
	}
}
