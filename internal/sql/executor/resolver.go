package executor

import (
	"fmt"

	"github.com/tuannm99/novarow/internal/heap"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/workspace"
)

// resolver adapts a workspace.Env to planner.Resolver.
type resolver struct {
	env workspace.Env
}

func (r resolver) TableSchema(database, table string) (*record.Schema, error) {
	tbl, err := r.env.Catalog.Lookup(database, table)
	if err != nil {
		return nil, err
	}
	return tbl.Schema(), nil
}

func (r resolver) ResultSchema(name string) (*record.Schema, error) {
	res, ok := r.env.Heap.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", heap.ErrNotFound, name)
	}
	return res.Schema, nil
}
