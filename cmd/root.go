// Package cmd implements the CLI command structure for prodman.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"prodman/internal/board"
	"prodman/internal/config"
	"prodman/internal/logging"
	"prodman/internal/store"
	"prodman/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the prodman CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("prodman", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	// The TUI is the default when no subcommand is given.
	subcommand := "tui"
	remaining := fs.Args()
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, logger)
	case "add":
		return addCommand(cfg, logger, remaining)
	case "ls":
		return lsCommand(cfg, remaining)
	case "edit":
		return editCommand(cfg, logger, remaining)
	case "rm":
		return rmCommand(cfg, logger, remaining)
	case "sort":
		return sortCommand(cfg, logger, remaining)
	case "export":
		return exportCommand(cfg, logger, remaining)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	formatter, err := logging.ParseFormatter(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	opts := logging.DefaultOptions()
	opts.Level = level
	opts.Formatter = formatter
	return logging.New(os.Stderr, opts), nil
}

// loadBoard opens the store and loads the board. A corrupt data file is
// fatal and reported as such; it is never replaced with an empty board.
func loadBoard(cfg *config.Config) (*board.Board, *store.Store, error) {
	st := store.New(cfg.DataFile)
	b, err := st.Load()
	if err != nil {
		var corrupt *store.CorruptDataError
		if errors.As(err, &corrupt) {
			return nil, nil, fmt.Errorf("%w (the file was left untouched; repair or move it to continue)", corrupt)
		}
		return nil, nil, err
	}
	return b, st, nil
}

// tuiCommand starts the interactive board.
func tuiCommand(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	b, st, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	logger.Debug("board loaded", "path", st.Path())
	return ui.Run(ctx, b, cfg.ExportDir)
}

// addCommand creates a new item: prodman add -cat <c> [-comment <s>] <title>
func addCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("prodman add", flag.ContinueOnError)
	catName := fs.String("cat", "", "Category (Extension|WebApp|WindowsApp)")
	comment := fs.String("comment", "", "Item comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cat, err := board.ParseCategory(*catName)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("add: missing title")
	}

	b, _, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	it, err := b.Add(cat, title, *comment)
	if err != nil {
		return err
	}
	logger.Info("added item", "id", it.ID, "category", cat, "title", it.Title)
	fmt.Println(it.ID)
	return nil
}

// lsCommand lists items: prodman ls [-cat <c>]
func lsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("prodman ls", flag.ContinueOnError)
	catName := fs.String("cat", "", "Limit to one category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cats := board.Categories()
	if *catName != "" {
		cat, err := board.ParseCategory(*catName)
		if err != nil {
			return err
		}
		cats = []board.Category{cat}
	}

	b, _, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	for _, cat := range cats {
		fmt.Printf("%s (%d items)\n", cat, b.Len(cat))
		for i, it := range b.Items(cat) {
			line := fmt.Sprintf("  %2d. %s  [%s]", i+1, it.Title, it.ID)
			if it.Comment != "" {
				line += "  — " + firstLine(it.Comment)
			}
			fmt.Println(line)
		}
	}
	return nil
}

// editCommand updates title/comment: prodman edit -id <id> [-title <s>] [-comment <s>]
func editCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("prodman edit", flag.ContinueOnError)
	id := fs.String("id", "", "Item id")
	title := fs.String("title", "", "New title (unchanged if omitted)")
	comment := fs.String("comment", "", "New comment (unchanged if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("edit: missing -id")
	}

	b, _, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	it, _, ok := b.Find(*id)
	if !ok {
		return fmt.Errorf("item %q: %w", *id, board.ErrNotFound)
	}
	newTitle := it.Title
	newComment := it.Comment
	if flagWasSet(fs, "title") {
		newTitle = *title
	}
	if flagWasSet(fs, "comment") {
		newComment = *comment
	}
	if err := b.Update(*id, newTitle, newComment); err != nil {
		return err
	}
	logger.Info("updated item", "id", *id)
	return nil
}

// rmCommand deletes an item: prodman rm -id <id>
func rmCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("prodman rm", flag.ContinueOnError)
	id := fs.String("id", "", "Item id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("rm: missing -id")
	}

	b, _, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	if err := b.Delete(*id); err != nil {
		return err
	}
	logger.Info("deleted item", "id", *id)
	return nil
}

// sortCommand reorders a category: prodman sort -cat <c> -by <mode>
func sortCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("prodman sort", flag.ContinueOnError)
	catName := fs.String("cat", "", "Category (Extension|WebApp|WindowsApp)")
	by := fs.String("by", "az", "Sort mode (az|za|date-asc|date-desc)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cat, err := board.ParseCategory(*catName)
	if err != nil {
		return err
	}
	mode, err := board.ParseSortMode(*by)
	if err != nil {
		return err
	}

	b, _, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	if err := b.Sort(cat, mode); err != nil {
		return err
	}
	logger.Info("sorted category", "category", cat, "mode", mode)
	return nil
}

// exportCommand renders a category to markdown:
// prodman export -cat <c> [-o <file>]
func exportCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("prodman export", flag.ContinueOnError)
	catName := fs.String("cat", "", "Category (Extension|WebApp|WindowsApp)")
	out := fs.String("o", "", "Output file (stdout if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cat, err := board.ParseCategory(*catName)
	if err != nil {
		return err
	}

	b, _, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	md, err := b.ExportMarkdown(cat)
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Print(md)
		return nil
	}
	path := *out
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ExportDir, path)
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	logger.Info("exported category", "category", cat, "path", path)
	return nil
}

func versionCommand() error {
	fmt.Printf("prodman %s\n", Version)
	return nil
}

// flagWasSet reports whether the named flag was given explicitly.
func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `prodman - project board for in-progress work

Usage:
  prodman [flags] [command]

Commands:
  tui       Interactive board (default)
  add       Add an item: add -cat <c> [-comment <s>] <title>
  ls        List items: ls [-cat <c>]
  edit      Edit an item: edit -id <id> [-title <s>] [-comment <s>]
  rm        Delete an item: rm -id <id>
  sort      Sort a category: sort -cat <c> -by <az|za|date-asc|date-desc>
  export    Export a category to markdown: export -cat <c> [-o <file>]
  version   Show version

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
