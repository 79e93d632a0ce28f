package record

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/tuannm99/novarow/internal/cell"
)

// Record is an ordered, immutable row of cells. It carries no schema; callers line
// it up with one by position.
type Record struct {
	cells []cell.Cell
}

// Of builds a Record from cells directly.
func Of(cells ...cell.Cell) Record {
	return Record{cells: append([]cell.Cell(nil), cells...)}
}

func (r Record) Len() int { return len(r.cells) }

func (r Record) At(i int) cell.Cell { return r.cells[i] }

// Cells returns a copy of the cell slice.
func (r Record) Cells() []cell.Cell {
	return append([]cell.Cell(nil), r.cells...)
}

// Values returns each cell's Go value (nil for nulls).
func (r Record) Values() []any {
	out := make([]any, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.Value()
	}
	return out
}

func (r Record) Equal(o Record) bool {
	if len(r.cells) != len(o.cells) {
		return false
	}
	for i := range r.cells {
		if !r.cells[i].Equal(o.cells[i]) {
			return false
		}
	}
	return true
}

// Hash is the xxhash64 of the record's binary frame; equal records hash equal.
func (r Record) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.Write(EncodeRecord(r))
	return d.Sum64()
}

func (r Record) String() string {
	parts := make([]string, len(r.cells))
	for i, c := range r.cells {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
