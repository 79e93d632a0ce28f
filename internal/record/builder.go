package record

import (
	"errors"

	"github.com/tuannm99/novarow/internal/cell"
)

var ErrBuilderFinished = errors.New("record: builder already finished")

// Builder accumulates cells for a single Record. Finish hands the cells over to the
// Record; the builder rejects every append afterwards. Allocate one per record.
type Builder struct {
	cells    []cell.Cell
	finished bool
}

func NewBuilder(capacity int) *Builder {
	return &Builder{cells: make([]cell.Cell, 0, capacity)}
}

func (b *Builder) Append(c cell.Cell) error {
	if b.finished {
		return ErrBuilderFinished
	}
	b.cells = append(b.cells, c)
	return nil
}

// Add appends v with an affinity inferred from its Go type.
func (b *Builder) Add(v any) error {
	if b.finished {
		return ErrBuilderFinished
	}
	c, err := cell.Of(v)
	if err != nil {
		return err
	}
	return b.Append(c)
}

// AddAs appends v converted to the given affinity; nil becomes a null cell.
func (b *Builder) AddAs(a cell.Affinity, v any) error {
	if b.finished {
		return ErrBuilderFinished
	}
	c, err := cell.As(a, v)
	if err != nil {
		return err
	}
	return b.Append(c)
}

func (b *Builder) AddNull(a cell.Affinity) error {
	return b.Append(cell.Null(a))
}

func (b *Builder) Len() int { return len(b.cells) }

// Finish returns the Record in insertion order.
func (b *Builder) Finish() Record {
	r := Record{cells: b.cells}
	b.cells = nil
	b.finished = true
	return r
}
