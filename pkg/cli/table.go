// Package cli provides shared output formatting for brightwire CLI tools.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes column-aligned output through text/tabwriter. Headers and a
// dash divider are emitted lazily on the first Row(), so an empty table
// produces no output at all.
type Table struct {
	w       *tabwriter.Writer
	headers []string
	written bool
}

// NewTable creates a table with the given column headers, writing to w.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:       tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// Row writes a tab-separated row. On the first call, headers and divider
// are emitted before the row.
func (t *Table) Row(values ...string) {
	if !t.written {
		t.written = true
		fmt.Fprintln(t.w, strings.Join(t.headers, "\t"))
		dividers := make([]string, len(t.headers))
		for i, h := range t.headers {
			dividers[i] = strings.Repeat("-", len(h))
		}
		fmt.Fprintln(t.w, strings.Join(dividers, "\t"))
	}
	fmt.Fprintln(t.w, strings.Join(values, "\t"))
}

// Flush writes any buffered output. If no rows were written, nothing is
// printed.
func (t *Table) Flush() {
	if !t.written {
		return
	}
	t.w.Flush()
}
