package board

import (
	"bytes"
	"fmt"
	"time"
)

// exportTimeLayout is the timestamp format used in markdown exports.
const exportTimeLayout = "2006-01-02 15:04"

// ExportMarkdown renders one category as a markdown document in the
// category's current display order. It never mutates board state and never
// triggers a save; given unchanged state the output is byte-identical.
//
// The template is a fixed contract:
//
//	# <category>
//
//	## <title>
//
//	<comment>            (omitted when empty)
//
//	*Created: 2006-01-02 15:04*
//
//	---
func (b *Board) ExportMarkdown(cat Category) (string, error) {
	if !validCategory(cat) {
		return "", fmt.Errorf("unknown category %q", cat)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", cat)
	for _, it := range b.items[cat] {
		fmt.Fprintf(&buf, "## %s\n\n", it.Title)
		if it.Comment != "" {
			buf.WriteString(it.Comment)
			buf.WriteString("\n\n")
		}
		fmt.Fprintf(&buf, "*Created: %s*\n\n---\n\n", formatExportTime(it.CreatedAt))
	}
	return buf.String(), nil
}

func formatExportTime(t time.Time) string {
	return t.UTC().Format(exportTimeLayout)
}
