// Package store persists the full board state to a single JSON file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"prodman/internal/board"
)

// CorruptDataError reports a data file that exists but cannot be parsed or
// fails validation. It is distinct from "no file present", which is a normal
// first-run state. The store never overwrites a corrupt file with defaults.
type CorruptDataError struct {
	Path string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

// Store is the durable mapping between board state and a file on disk.
type Store struct {
	path string
}

// New creates a store backed by the given file path. The file and its
// directory may not exist yet; Save creates them.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// boardFile is the on-disk shape: one object with exactly the three category
// keys, arrays in display order. An unknown key is a decode error.
type boardFile struct {
	Extension  []board.Item `json:"Extension"`
	WebApp     []board.Item `json:"WebApp"`
	WindowsApp []board.Item `json:"WindowsApp"`
}

// Load reads the persisted board and returns it wired to this store for
// write-through saves. A missing file yields an empty board, not an error.
// A file that fails to parse or validate yields a CorruptDataError.
func (s *Store) Load(opts ...board.Option) (*board.Board, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return board.New(s, opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	snap, err := decodeBoardFile(data)
	if err != nil {
		return nil, &CorruptDataError{Path: s.path, Err: err}
	}
	b, err := board.FromSnapshot(snap, s, opts...)
	if err != nil {
		return nil, &CorruptDataError{Path: s.path, Err: err}
	}
	return b, nil
}

// Save serializes the snapshot and replaces the data file atomically: the
// bytes go to a temp file in the same directory, are synced, then renamed
// over the final path. No observable state of the file is ever a partial
// write. Save implements board.Saver.
func (s *Store) Save(snap board.Snapshot) error {
	f := boardFile{
		Extension:  nonNil(snap[board.CategoryExtension]),
		WebApp:     nonNil(snap[board.CategoryWebApp]),
		WindowsApp: nonNil(snap[board.CategoryWindowsApp]),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	data = append(data, '\n')

	if err := atomicWriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

func decodeBoardFile(data []byte) (board.Snapshot, error) {
	// Surface syntax errors before schema errors; both mean corrupt.
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	if err := validateBoardDoc(doc); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f boardFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	return board.Snapshot{
		board.CategoryExtension:  f.Extension,
		board.CategoryWebApp:     f.WebApp,
		board.CategoryWindowsApp: f.WindowsApp,
	}, nil
}

// nonNil keeps empty categories as [] rather than null on disk.
func nonNil(items []board.Item) []board.Item {
	if items == nil {
		return []board.Item{}
	}
	return items
}

// atomicWriteFile writes data to path via a temp file in the same directory,
// an fsync, and a rename. The parent directory is created if absent.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
