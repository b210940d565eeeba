package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prodman/internal/board"
	"prodman/internal/store"
)

// chdir switches to dir for the test, restoring the old working
// directory on cleanup (stand-in for t.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

// testEnv points the CLI at a throwaway data file and neutral config.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "data.json")
	t.Setenv("PRODMAN_DATA_FILE", path)
	t.Setenv("PRODMAN_EXPORT_DIR", dir)
	t.Setenv("PRODMAN_LOG_LEVEL", "error")
	t.Setenv("PRODMAN_LOG_FORMAT", "text")
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := Run(context.Background(), args)
	os.Stdout = old
	_ = w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return string(out), runErr
}

func TestVersionCommand(t *testing.T) {
	testEnv(t)
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "prodman") {
		t.Errorf("version output %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	testEnv(t)
	_, err := run(t, "frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("got %v, want unknown command error", err)
	}
}

func TestAddSortExportScenario(t *testing.T) {
	testEnv(t)

	if _, err := run(t, "add", "-cat", "Extension", "Zeta"); err != nil {
		t.Fatalf("add Zeta failed: %v", err)
	}
	if _, err := run(t, "add", "-cat", "Extension", "Alpha"); err != nil {
		t.Fatalf("add Alpha failed: %v", err)
	}
	if _, err := run(t, "sort", "-cat", "Extension", "-by", "az"); err != nil {
		t.Fatalf("sort failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "extension.md")
	if _, err := run(t, "export", "-cat", "Extension", "-o", out); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	md := string(data)
	if !strings.HasPrefix(md, "# Extension\n\n") {
		t.Errorf("export heading missing:\n%s", md)
	}
	alpha := strings.Index(md, "Alpha")
	zeta := strings.Index(md, "Zeta")
	if alpha < 0 || zeta < 0 || alpha > zeta {
		t.Errorf("Alpha must precede Zeta after az sort:\n%s", md)
	}
}

func TestEditAndRemove(t *testing.T) {
	path := testEnv(t)

	out, err := run(t, "add", "-cat", "WebApp", "-comment", "c1", "X")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("add printed no id")
	}

	if _, err := run(t, "edit", "-id", id, "-title", "Renamed"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	b, err := store.New(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	it, _, ok := b.Find(id)
	if !ok {
		t.Fatal("item missing after edit")
	}
	if it.Title != "Renamed" || it.Comment != "c1" {
		t.Errorf("got title=%q comment=%q, want Renamed/c1 (comment untouched)", it.Title, it.Comment)
	}

	if _, err := run(t, "rm", "-id", id); err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	_, err = run(t, "rm", "-id", id)
	if !errors.Is(err, board.ErrNotFound) {
		t.Fatalf("second rm: got %v, want ErrNotFound", err)
	}
}

func TestLsOutput(t *testing.T) {
	testEnv(t)
	if _, err := run(t, "add", "-cat", "WindowsApp", "-comment", "a note", "Tool"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	out, err := run(t, "ls", "-cat", "WindowsApp")
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(out, "WindowsApp (1 items)") {
		t.Errorf("ls header missing:\n%s", out)
	}
	if !strings.Contains(out, "Tool") || !strings.Contains(out, "a note") {
		t.Errorf("ls row missing:\n%s", out)
	}
}

func TestCorruptDataIsFatal(t *testing.T) {
	path := testEnv(t)
	if err := os.WriteFile(path, []byte("{definitely not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := run(t, "ls")
	if err == nil {
		t.Fatal("ls over corrupt data succeeded, want error")
	}
	var corrupt *store.CorruptDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("got %v, want CorruptDataError", err)
	}

	// The corrupt file must not have been replaced with an empty board.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{definitely not json" {
		t.Error("corrupt file was modified")
	}
}

func TestAddRequiresCategoryAndTitle(t *testing.T) {
	testEnv(t)
	if _, err := run(t, "add", "Title only"); err == nil {
		t.Error("add without -cat succeeded, want error")
	}
	if _, err := run(t, "add", "-cat", "Extension"); err == nil {
		t.Error("add without title succeeded, want error")
	}
	if _, err := run(t, "add", "-cat", "Nope", "Title"); err == nil {
		t.Error("add with unknown category succeeded, want error")
	}
}
