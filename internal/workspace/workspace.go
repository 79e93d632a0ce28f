// Package workspace binds a result heap, a catalog of persisted tables and a script
// executor into one session.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/novarow/internal/catalog"
	"github.com/tuannm99/novarow/internal/dsv"
	"github.com/tuannm99/novarow/internal/fetch"
	"github.com/tuannm99/novarow/internal/heap"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/sortkey"
)

// maxParallelLoads bounds concurrent table reads in Load.
const maxParallelLoads = 4

type Workspace struct {
	// execMu serialises script executions.
	execMu sync.Mutex

	heap    *heap.Heap
	catalog *catalog.Registry
	exec    Executor
	keys    sortkey.Factory
	fetcher *fetch.Client

	delim     rune
	nullToken string
}

type Option func(*Workspace)

func WithExecutor(e Executor) Option           { return func(w *Workspace) { w.exec = e } }
func WithSortFactory(f sortkey.Factory) Option { return func(w *Workspace) { w.keys = f } }
func WithFetcher(c *fetch.Client) Option       { return func(w *Workspace) { w.fetcher = c } }
func WithCatalog(r *catalog.Registry) Option   { return func(w *Workspace) { w.catalog = r } }

// WithTextFormat sets the delimiter and null token used by Import and Export.
func WithTextFormat(delim rune, nullToken string) Option {
	return func(w *Workspace) {
		w.delim = delim
		w.nullToken = nullToken
	}
}

func New(opts ...Option) *Workspace {
	w := &Workspace{
		heap:      heap.New(),
		catalog:   catalog.NewRegistry(),
		exec:      UnavailableExecutor{},
		keys:      sortkey.Default,
		fetcher:   &fetch.Client{},
		delim:     ',',
		nullToken: dsv.DefaultNullToken,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Workspace) Heap() *heap.Heap             { return w.heap }
func (w *Workspace) Catalog() *catalog.Registry   { return w.catalog }
func (w *Workspace) SortFactory() sortkey.Factory { return w.keys }

// Execute runs one script at a time. Executor errors come back unchanged.
func (w *Workspace) Execute(ctx context.Context, script string) error {
	w.execMu.Lock()
	defer w.execMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	before := w.heap.Len()
	if err := w.exec.Execute(ctx, Env{Heap: w.heap, Catalog: w.catalog, Keys: w.keys}, script); err != nil {
		return err
	}
	slog.Debug("workspace: script done", "results", w.heap.Len(), "new", w.heap.Len()-before)
	return nil
}

func (w *Workspace) Result(name string) (*heap.Result, bool) { return w.heap.Get(name) }
func (w *Workspace) ResultAt(i int) (*heap.Result, bool)     { return w.heap.At(i) }

// Deallocate removes a result from the heap and hands it to the caller.
func (w *Workspace) Deallocate(name string) (*heap.Result, error) { return w.heap.Take(name) }

// Load reads each "database.table" ref into the heap under the ref's own name.
// Tables are read concurrently; the first failure cancels the rest.
func (w *Workspace) Load(ctx context.Context, refs ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)

	for _, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			db, name, err := catalog.ParseQualified(ref)
			if err != nil {
				return err
			}
			tbl, err := w.catalog.Lookup(db, name)
			if err != nil {
				return err
			}
			recs, err := tbl.Records()
			if err != nil {
				return fmt.Errorf("load %s: %w", ref, err)
			}
			_, err = w.heap.Put(&heap.Result{Name: ref, Schema: tbl.Schema(), Records: recs})
			return err
		})
	}
	return g.Wait()
}

// Save persists a heap result into database.table, creating the table from the
// result's schema when it does not exist yet.
func (w *Workspace) Save(name, ref string) error {
	res, ok := w.heap.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", heap.ErrNotFound, name)
	}
	db, table, err := catalog.ParseQualified(ref)
	if err != nil {
		return err
	}
	tbl, err := w.catalog.Lookup(db, table)
	if errors.Is(err, catalog.ErrTableNotFound) {
		tbl, err = w.catalog.Create(db, table, res.Schema)
	}
	if err != nil {
		return err
	}
	return tbl.Append(res.Records...)
}

// Sort orders the named result by spec and stores the sorted copy as into. An
// empty into replaces the source result.
func (w *Workspace) Sort(name, spec, into string) (*heap.Result, error) {
	src, ok := w.heap.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", heap.ErrNotFound, name)
	}
	key, err := w.keys.Render(src.Schema, spec)
	if err != nil {
		return nil, err
	}

	recs := append([]record.Record(nil), src.Records...)
	if err := sortkey.Sort(recs, key); err != nil {
		return nil, err
	}
	if into == "" {
		into = name
	}
	out := &heap.Result{Name: into, Schema: src.Schema, Records: recs}
	if _, err := w.heap.Put(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Import renders delimited text into a new heap result.
func (w *Workspace) Import(name string, schema *record.Schema, r io.Reader) (*heap.Result, error) {
	recs, err := w.exchange(schema).RenderAll(r)
	if err != nil {
		return nil, err
	}
	res := &heap.Result{Name: name, Schema: schema, Records: recs}
	if _, err := w.heap.Put(res); err != nil {
		return nil, err
	}
	return res, nil
}

// ImportURL downloads delimited text and imports it like Import.
func (w *Workspace) ImportURL(ctx context.Context, name string, schema *record.Schema, url string) (*heap.Result, error) {
	pr, pw := io.Pipe()
	go func() {
		_, err := w.fetcher.Fetch(ctx, url, pw)
		_ = pw.CloseWithError(err)
	}()
	res, err := w.Import(name, schema, pr)
	_ = pr.Close()
	return res, err
}

// Export writes the named result as delimited text.
func (w *Workspace) Export(name string, out io.Writer) error {
	res, ok := w.heap.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", heap.ErrNotFound, name)
	}
	return w.exchange(res.Schema).RazeAll(out, res.Records)
}

func (w *Workspace) exchange(schema *record.Schema) *dsv.Exchange {
	return dsv.New(schema, w.delim, dsv.WithNullToken(w.nullToken))
}
