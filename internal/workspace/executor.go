package workspace

import (
	"context"

	"github.com/tuannm99/novarow/internal/catalog"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/heap"
	"github.com/tuannm99/novarow/internal/sortkey"
)

// Env is what a script sees while it runs: the heap it deposits results into, the
// catalog it addresses database.table through and the workspace's sort-spec parser.
type Env struct {
	Heap    *heap.Heap
	Catalog *catalog.Registry
	Keys    sortkey.Factory
}

// Executor runs script text. Compile and parse failures should be reported as
// errkind.ScriptCompile / errkind.ScriptParse; the workspace passes them through.
type Executor interface {
	Execute(ctx context.Context, env Env, script string) error
}

type ExecutorFunc func(ctx context.Context, env Env, script string) error

func (f ExecutorFunc) Execute(ctx context.Context, env Env, script string) error {
	return f(ctx, env, script)
}

// UnavailableExecutor rejects every script.
type UnavailableExecutor struct{}

func (UnavailableExecutor) Execute(context.Context, Env, string) error {
	return errkind.ScriptCompile.New("no script engine is configured")
}
