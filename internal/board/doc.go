// Package board owns the in-memory project board and its operations.
//
// The board maps each of three fixed categories (Extension, WebApp,
// WindowsApp) to an ordered sequence of items. The slice order is the
// persisted display order. Item ids are unique across the whole board and
// are never reused after deletion.
//
// Every mutating operation (Add, Update, Delete, Move, Sort) hands the full
// board snapshot to a Saver before returning, so the on-disk state never
// lags the in-memory state. If the Saver fails, the in-memory change is
// rolled back and the operation returns the error: from the caller's point
// of view the operation did not happen.
//
// The persisted shape (written by the store package) is one JSON object:
//
//	{
//	  "Extension": [
//	    {
//	      "id": "7f9c24e5-2b8a-4d7e-9c1a-3f6b8d0e4a21",
//	      "title": "Item title",
//	      "comment": "Free-text annotation",
//	      "created_at": "2024-01-01T00:00:00Z"
//	    }
//	  ],
//	  "WebApp": [],
//	  "WindowsApp": []
//	}
//
// # Sorting
//
// Sort modes are "az" and "za" (lexicographic by title, byte order) and
// "date-asc" / "date-desc" (by creation time). All sorts are stable: items
// with equal keys keep their prior relative order.
//
// # Markdown export
//
// ExportMarkdown is a pure function of the current display order; see its
// doc comment for the exact template.
package board
