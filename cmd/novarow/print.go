package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/heap"
)

// maxPrintRows caps how many records \show prints.
const maxPrintRows = 100

func display(c cell.Cell) string {
	switch {
	case c.IsNull():
		return "NULL"
	case c.Affinity() == cell.String:
		return c.Str()
	default:
		return c.String()
	}
}

func printResult(w io.Writer, res *heap.Result) {
	cols := res.Schema.Names()
	if len(cols) == 0 {
		fmt.Fprintf(w, "%s: (%d records, no columns)\n", res.Name, len(res.Records))
		return
	}

	shown := res.Records
	if len(shown) > maxPrintRows {
		shown = shown[:maxPrintRows]
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = utf8.RuneCountInString(c)
	}
	rows := make([][]string, len(shown))
	for r, rec := range shown {
		rows[r] = make([]string, len(cols))
		for i := range cols {
			s := "NULL"
			if i < rec.Len() {
				s = display(rec.At(i))
			}
			rows[r][i] = s
			widths[i] = max(widths[i], utf8.RuneCountInString(s))
		}
	}

	printRow := func(values []string) {
		for i := range cols {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, padRight(values[i], widths[i]))
		}
		fmt.Fprintln(w)
	}

	printRow(cols)
	for i := range cols {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		printRow(row)
	}

	if len(shown) < len(res.Records) {
		fmt.Fprintf(w, "(%d of %d records)\n", len(shown), len(res.Records))
		return
	}
	fmt.Fprintf(w, "(%d records)\n", len(res.Records))
}

func padRight(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
