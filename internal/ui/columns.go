package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// Column describes one field of a record table. The CLI and the TUI share
// the same column sets.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Cells renders one record.
func Cells[T any](cols []Column[T], rec T) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Value(rec)
	}
	return out
}

// Table writes a plain fixed-width table. Empty input prints the "no
// records" line instead of a bare header.
func Table[T any](w io.Writer, cols []Column[T], recs []T) {
	head := make([]string, len(cols))
	widths := make([]int, len(cols))
	for i, c := range cols {
		head[i], widths[i] = c.Title, c.Width
	}
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = Cells(cols, r)
	}
	Grid(w, head, widths, rows)
}

// Grid is Table for rows that are already rendered.
func Grid(w io.Writer, head []string, widths []int, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, C(Current().Muted, "no records"))
		return
	}
	width := func(i int) int {
		if i < len(widths) {
			return widths[i]
		}
		return 0
	}
	h := make([]string, len(head))
	for i, t := range head {
		h[i] = C(Current().Title, fit(t, width(i)))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(h, "  "), " "))
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = fit(c, width(i))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	vis := visibleWidth(s)
	if vis > width {
		return runewidth.Truncate(stripANSI(s), width, "…")
	}
	return s + strings.Repeat(" ", width-vis)
}

// ID formats a record id.
func ID(id int64) string { return strconv.FormatInt(id, 10) }

// Money formats a won amount with thousands separators.
func Money(v float64) string { return humanize.Commaf(float64(int64(v))) }

// Bytes formats a file size (backup listing).
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"}

// ParseTime accepts the timestamp shapes the backend emits.
func ParseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Ago renders a backend timestamp relative to now, or the raw text when it
// does not parse.
func Ago(s string) string {
	if t, ok := ParseTime(s); ok {
		return humanize.Time(t)
	}
	return s
}

// Date trims a timestamp to its calendar date.
func Date(s string) string {
	if t, ok := ParseTime(s); ok {
		return t.Format("2006-01-02")
	}
	return s
}
