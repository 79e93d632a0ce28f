package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/catalog"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/heap"
	"github.com/tuannm99/novarow/internal/workspace"
)

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws := workspace.New(workspace.WithExecutor(New()))
	require.NoError(t, ws.Catalog().Allocate("main", t.TempDir()))
	return ws
}

const seed = `
CREATE TABLE main.people (name STRING, age INT, city STRING);
INSERT INTO main.people VALUES ('ann', 31, 'oslo'), ('bob', NULL, 'rome'), ('cy', 25, 'oslo');
`

func names(t *testing.T, res *heap.Result) []string {
	t.Helper()
	out := make([]string, len(res.Records))
	for i, r := range res.Records {
		out[i] = r.At(0).Str()
	}
	return out
}

func TestExecutor_CreateInsertSelect(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, ws.Execute(ctx, seed))

	require.NoError(t, ws.Execute(ctx, "SELECT * FROM main.people;"))
	res, ok := ws.Result("main.people")
	require.True(t, ok)
	require.Equal(t, []string{"ann", "bob", "cy"}, names(t, res))

	require.NoError(t, ws.Execute(ctx, "SELECT * FROM main.people WHERE city = 'oslo' ORDER BY age INTO young;"))
	res, ok = ws.Result("young")
	require.True(t, ok)
	require.Equal(t, []string{"cy", "ann"}, names(t, res))

	// heap results can be selected from again
	require.NoError(t, ws.Execute(ctx, "SELECT * FROM main.people ORDER BY age desc INTO by_age; SELECT * FROM by_age WHERE age = NULL INTO unknown;"))
	res, _ = ws.Result("by_age")
	require.Equal(t, []string{"ann", "cy", "bob"}, names(t, res))
	res, _ = ws.Result("unknown")
	require.Equal(t, []string{"bob"}, names(t, res))

	require.NoError(t, ws.Execute(ctx, "DROP RESULT unknown;"))
	_, ok = ws.Result("unknown")
	require.False(t, ok)
}

func TestExecutor_SortDoesNotReorderSource(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, ws.Execute(ctx, seed+"SELECT * FROM main.people INTO base;"))
	require.NoError(t, ws.Execute(ctx, "SELECT * FROM base ORDER BY name desc INTO rev;"))

	base, _ := ws.Result("base")
	rev, _ := ws.Result("rev")
	require.Equal(t, []string{"ann", "bob", "cy"}, names(t, base))
	require.Equal(t, []string{"cy", "bob", "ann"}, names(t, rev))
}

func TestExecutor_Errors(t *testing.T) {
	ws := newWorkspace(t)
	ctx := context.Background()

	err := ws.Execute(ctx, "SELECT name FROM main.people;")
	require.True(t, errkind.ScriptParse.Is(err))

	err = ws.Execute(ctx, "SELECT * FROM main.people;")
	require.True(t, errkind.ScriptCompile.Is(err))

	// parse errors stop the script before anything runs
	err = ws.Execute(ctx, "CREATE TABLE main.t (a INT); bogus;")
	require.True(t, errkind.ScriptParse.Is(err))
	_, err = ws.Catalog().Lookup("main", "t")
	require.ErrorIs(t, err, catalog.ErrTableNotFound)

	require.NoError(t, ws.Execute(ctx, seed))
	err = ws.Execute(ctx, "CREATE TABLE main.people (a INT);")
	require.ErrorIs(t, err, catalog.ErrTableExists)

	err = ws.Execute(ctx, "DROP RESULT ghost;")
	require.ErrorIs(t, err, heap.ErrNotFound)

	err = ws.Execute(ctx, "INSERT INTO main.people VALUES ('dan', 'old', 'x');")
	require.True(t, errkind.ScriptCompile.Is(err))
}

func TestExecutor_Cancelled(t *testing.T) {
	ws := newWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, ws.Execute(ctx, seed), context.Canceled)
}
