package board

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Category is one of the three fixed board columns.
type Category string

const (
	CategoryExtension  Category = "Extension"
	CategoryWebApp     Category = "WebApp"
	CategoryWindowsApp Category = "WindowsApp"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{CategoryExtension, CategoryWebApp, CategoryWindowsApp}
}

// ParseCategory parses a category name. Unknown names are an error, not a
// new bucket.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryExtension, CategoryWebApp, CategoryWindowsApp:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q, must be one of: Extension, WebApp, WindowsApp", s)
}

func validCategory(c Category) bool {
	switch c {
	case CategoryExtension, CategoryWebApp, CategoryWindowsApp:
		return true
	}
	return false
}

// SortMode selects the ordering for Sort.
type SortMode string

const (
	SortTitleAsc  SortMode = "az"
	SortTitleDesc SortMode = "za"
	SortDateAsc   SortMode = "date-asc"
	SortDateDesc  SortMode = "date-desc"
)

// ParseSortMode parses a sort mode name.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case SortTitleAsc, SortTitleDesc, SortDateAsc, SortDateDesc:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("unknown sort mode %q, must be one of: az, za, date-asc, date-desc", s)
}

// Item is a single tracked unit of work.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when an operation addresses an item id that does
// not exist on the board.
var ErrNotFound = errors.New("item not found")

// Snapshot is a full copy of the board state, keyed by category. The slice
// order is the display order.
type Snapshot map[Category][]Item

// Saver persists a full board snapshot. Every mutating Board operation calls
// Save before returning; if Save fails the in-memory change is rolled back.
type Saver interface {
	Save(Snapshot) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(Snapshot) error

// Save calls f.
func (f SaverFunc) Save(snap Snapshot) error {
	return f(snap)
}

// Board is the aggregate of all categories and their ordered item
// sequences. It is not safe for concurrent use; all operations run on one
// logical thread of control.
type Board struct {
	items map[Category][]Item
	saver Saver
	now   func() time.Time
	newID func() string
}

// Option configures a Board.
type Option func(*Board)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// WithIDFunc overrides the item id generator.
func WithIDFunc(newID func() string) Option {
	return func(b *Board) {
		b.newID = newID
	}
}

// New creates an empty board with all three categories present.
func New(saver Saver, opts ...Option) *Board {
	b := &Board{
		items: make(map[Category][]Item, 3),
		saver: saver,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, cat := range Categories() {
		b.items[cat] = nil
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromSnapshot creates a board from a previously persisted snapshot.
// Categories missing from the snapshot are initialized empty; a duplicate
// item id anywhere in the snapshot is an error.
func FromSnapshot(snap Snapshot, saver Saver, opts ...Option) (*Board, error) {
	b := New(saver, opts...)
	seen := make(map[string]bool)
	for _, cat := range Categories() {
		items := snap[cat]
		for _, it := range items {
			if it.ID == "" {
				return nil, fmt.Errorf("category %s: item %q has no id", cat, it.Title)
			}
			if seen[it.ID] {
				return nil, fmt.Errorf("duplicate item id %q", it.ID)
			}
			seen[it.ID] = true
		}
		b.items[cat] = append([]Item(nil), items...)
	}
	return b, nil
}

// Snapshot returns a deep copy of the current board state.
func (b *Board) Snapshot() Snapshot {
	snap := make(Snapshot, len(b.items))
	for cat, items := range b.items {
		snap[cat] = append([]Item(nil), items...)
	}
	return snap
}

// Items returns a copy of one category's items in display order.
func (b *Board) Items(cat Category) []Item {
	return append([]Item(nil), b.items[cat]...)
}

// Len returns the number of items in a category.
func (b *Board) Len(cat Category) int {
	return len(b.items[cat])
}

// Find returns the item with the given id and the category containing it.
func (b *Board) Find(id string) (Item, Category, bool) {
	for _, cat := range Categories() {
		for _, it := range b.items[cat] {
			if it.ID == id {
				return it, cat, true
			}
		}
	}
	return Item{}, "", false
}

// Add creates a new item at the end of the category, persists, and returns
// the created item.
func (b *Board) Add(cat Category, title, comment string) (Item, error) {
	if !validCategory(cat) {
		return Item{}, fmt.Errorf("unknown category %q", cat)
	}
	it := Item{
		ID:        b.newID(),
		Title:     title,
		Comment:   comment,
		CreatedAt: b.now(),
	}
	b.items[cat] = append(b.items[cat], it)
	if err := b.persist(); err != nil {
		b.items[cat] = b.items[cat][:len(b.items[cat])-1]
		return Item{}, err
	}
	return it, nil
}

// Update replaces the title and comment of the item with the given id,
// preserving its id, creation time, and position. The lookup is board-wide.
func (b *Board) Update(id, title, comment string) error {
	cat, idx, ok := b.locate(id)
	if !ok {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	prev := b.items[cat][idx]
	b.items[cat][idx].Title = title
	b.items[cat][idx].Comment = comment
	if err := b.persist(); err != nil {
		b.items[cat][idx] = prev
		return err
	}
	return nil
}

// Delete removes the item with the given id from whichever category
// contains it. Deleted ids are never reused.
func (b *Board) Delete(id string) error {
	cat, idx, ok := b.locate(id)
	if !ok {
		return fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	prev := b.items[cat]
	next := make([]Item, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	b.items[cat] = next
	if err := b.persist(); err != nil {
		b.items[cat] = prev
		return err
	}
	return nil
}

// Move reorders one category's sequence, removing the item at from and
// reinserting it at to. Both indexes address the current display order.
func (b *Board) Move(cat Category, from, to int) error {
	if !validCategory(cat) {
		return fmt.Errorf("unknown category %q", cat)
	}
	n := len(b.items[cat])
	if from < 0 || from >= n {
		return fmt.Errorf("move: index %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("move: index %d out of range [0,%d)", to, n)
	}
	if from == to {
		return nil
	}
	prev := append([]Item(nil), b.items[cat]...)
	it := b.items[cat][from]
	rest := append(b.items[cat][:from:from], b.items[cat][from+1:]...)
	next := make([]Item, 0, n)
	next = append(next, rest[:to]...)
	next = append(next, it)
	next = append(next, rest[to:]...)
	b.items[cat] = next
	if err := b.persist(); err != nil {
		b.items[cat] = prev
		return err
	}
	return nil
}

// Sort rewrites one category's display order. Sorting is stable: items with
// equal keys keep their prior relative order. Membership and counts are
// unchanged.
func (b *Board) Sort(cat Category, mode SortMode) error {
	if !validCategory(cat) {
		return fmt.Errorf("unknown category %q", cat)
	}
	var less func(a, c Item) bool
	switch mode {
	case SortTitleAsc:
		less = func(a, c Item) bool { return a.Title < c.Title }
	case SortTitleDesc:
		less = func(a, c Item) bool { return a.Title > c.Title }
	case SortDateAsc:
		less = func(a, c Item) bool { return a.CreatedAt.Before(c.CreatedAt) }
	case SortDateDesc:
		less = func(a, c Item) bool { return a.CreatedAt.After(c.CreatedAt) }
	default:
		return fmt.Errorf("unknown sort mode %q", mode)
	}
	prev := append([]Item(nil), b.items[cat]...)
	items := b.items[cat]
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
	if err := b.persist(); err != nil {
		b.items[cat] = prev
		return err
	}
	return nil
}

func (b *Board) persist() error {
	if b.saver == nil {
		return nil
	}
	if err := b.saver.Save(b.Snapshot()); err != nil {
		return fmt.Errorf("persist board: %w", err)
	}
	return nil
}

func (b *Board) locate(id string) (Category, int, bool) {
	for _, cat := range Categories() {
		for i, it := range b.items[cat] {
			if it.ID == id {
				return cat, i, true
			}
		}
	}
	return "", 0, false
}
