package sortkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/record"
)

// Direction is the sort order applied to one key column.
type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Part is one (column, direction) pair of a Key.
type Part struct {
	Column    int
	Direction Direction
}

// Key is an ordered list of sort parts; the first part is the primary sort column.
// Duplicate columns are allowed.
type Key struct {
	parts []Part
}

func NewKey(parts ...Part) Key {
	return Key{parts: append([]Part(nil), parts...)}
}

func (k Key) Len() int      { return len(k.parts) }
func (k Key) At(i int) Part { return k.parts[i] }
func (k Key) Parts() []Part { return append([]Part(nil), k.parts...) }

func (k Key) Equal(o Key) bool {
	if len(k.parts) != len(o.parts) {
		return false
	}
	for i := range k.parts {
		if k.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}

// String renders the key as "0 asc,1 desc". The Default factory reads it back
// against a nil schema, or any schema without a column named like an index,
// since a name match wins over the index.
func (k Key) String() string {
	parts := make([]string, len(k.parts))
	for i, p := range k.parts {
		parts[i] = strconv.Itoa(p.Column) + " " + p.Direction.String()
	}
	return strings.Join(parts, ",")
}

// Validate checks that every key column exists in a record of the given width.
func (k Key) Validate(width int) error {
	for _, p := range k.parts {
		if p.Column < 0 || p.Column >= width {
			return errkind.DataFormat.New(fmt.Sprintf("sort column %d out of range for %d columns", p.Column, width))
		}
	}
	return nil
}

// Compare orders two records by the key. Both records must pass Validate.
func (k Key) Compare(a, b record.Record) int {
	for _, p := range k.parts {
		c := cell.Compare(a.At(p.Column), b.At(p.Column))
		if c == 0 {
			continue
		}
		if p.Direction == Descending {
			return -c
		}
		return c
	}
	return 0
}
