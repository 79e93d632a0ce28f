package workspace

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tuannm99/novarow/internal/catalog"
	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/fetch"
	"github.com/tuannm99/novarow/internal/heap"
	"github.com/tuannm99/novarow/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var people = record.MustSchema(
	record.Column{Name: "name", Affinity: cell.String},
	record.Column{Name: "age", Affinity: cell.Int},
)

const peopleText = "carl,40\nann,31\nbob,\\N\n"

func TestExecute(t *testing.T) {
	t.Run("unavailable executor", func(t *testing.T) {
		ws := New()
		err := ws.Execute(context.Background(), "select 1")
		require.True(t, errkind.ScriptCompile.Is(err))
	})

	t.Run("errors pass through unchanged", func(t *testing.T) {
		boom := errkind.ScriptParse.New("unexpected token at 1:7")
		ws := New(WithExecutor(ExecutorFunc(func(context.Context, Env, string) error { return boom })))
		require.Same(t, boom, ws.Execute(context.Background(), "x"))
	})

	t.Run("results land in the heap", func(t *testing.T) {
		ws := New(WithExecutor(ExecutorFunc(func(_ context.Context, env Env, script string) error {
			for _, name := range strings.Fields(script) {
				if _, err := env.Heap.Put(&heap.Result{Name: name, Schema: people}); err != nil {
					return err
				}
			}
			return nil
		})))
		require.NoError(t, ws.Execute(context.Background(), "first second"))

		res, ok := ws.ResultAt(1)
		require.True(t, ok)
		require.Equal(t, "second", res.Name)

		taken, err := ws.Deallocate("first")
		require.NoError(t, err)
		require.Equal(t, "first", taken.Name)
		_, ok = ws.Result("first")
		require.False(t, ok)
		_, err = ws.Deallocate("first")
		require.ErrorIs(t, err, heap.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ws := New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, ws.Execute(ctx, "x"), context.Canceled)
	})
}

func TestExecute_Serialised(t *testing.T) {
	var running, overlap atomic.Int32
	ws := New(WithExecutor(ExecutorFunc(func(context.Context, Env, string) error {
		if running.Add(1) > 1 {
			overlap.Add(1)
		}
		defer running.Add(-1)
		return nil
	})))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_ = ws.Execute(context.Background(), "x")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	require.Zero(t, overlap.Load())
}

func TestImportSortExport(t *testing.T) {
	ws := New()
	res, err := ws.Import("people", people, strings.NewReader(peopleText))
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	sorted, err := ws.Sort("people", "age desc", "by_age")
	require.NoError(t, err)
	require.Equal(t, "by_age", sorted.Name)

	var out bytes.Buffer
	require.NoError(t, ws.Export("by_age", &out))
	require.Equal(t, "carl,40\nann,31\nbob,\\N\n", out.String())

	// the source keeps its order
	out.Reset()
	require.NoError(t, ws.Export("people", &out))
	require.Equal(t, peopleText, out.String())

	_, err = ws.Sort("people", "zzz", "")
	require.True(t, errkind.Unresolved.Is(err))

	_, err = ws.Sort("ghost", "name", "")
	require.ErrorIs(t, err, heap.ErrNotFound)
}

func TestImport_BadLines(t *testing.T) {
	ws := New(WithTextFormat('|', "NULL"))
	_, err := ws.Import("p", people, strings.NewReader("ann|31\nbob|old\n"))
	require.ErrorContains(t, err, "line 2")
	_, ok := ws.Result("p")
	require.False(t, ok)
}

func TestSaveLoad(t *testing.T) {
	ws := New()
	require.NoError(t, ws.Catalog().Allocate("main", t.TempDir()))

	_, err := ws.Import("people", people, strings.NewReader(peopleText))
	require.NoError(t, err)
	require.NoError(t, ws.Save("people", "main.people"))
	require.NoError(t, ws.Save("people", "main.copy"))

	fresh := New(WithCatalog(ws.Catalog()))
	require.NoError(t, fresh.Load(context.Background(), "main.people", "main.copy"))

	for _, ref := range []string{"main.people", "main.copy"} {
		res, ok := fresh.Result(ref)
		require.True(t, ok, ref)
		require.Len(t, res.Records, 3)
		require.Equal(t, people.Names(), res.Schema.Names())
	}

	err = fresh.Load(context.Background(), "main.people", "main.ghost")
	require.ErrorIs(t, err, catalog.ErrTableNotFound)

	err = fresh.Load(context.Background(), "nodot")
	require.ErrorIs(t, err, catalog.ErrInvalidName)
}

func TestSave_CorruptMetaIsReported(t *testing.T) {
	dir := t.TempDir()
	ws := New()
	require.NoError(t, ws.Catalog().Allocate("db", dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.meta.json"), []byte("{not json"), 0o644))

	_, err := ws.Import("r", people, strings.NewReader(peopleText))
	require.NoError(t, err)

	err = ws.Save("r", "db.t")
	require.Error(t, err)
	require.NotErrorIs(t, err, catalog.ErrTableExists)
	require.NotErrorIs(t, err, catalog.ErrTableNotFound)
	require.Contains(t, err.Error(), "read meta")

	// the broken file is left as it was
	data, err := os.ReadFile(filepath.Join(dir, "t.meta.json"))
	require.NoError(t, err)
	require.Equal(t, "{not json", string(data))
}

func TestImportURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/people.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(peopleText))
	}))
	defer srv.Close()

	ws := New(WithFetcher(&fetch.Client{HTTP: srv.Client()}))
	res, err := ws.ImportURL(context.Background(), "remote", people, srv.URL+"/people.csv")
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	_, err = ws.ImportURL(context.Background(), "missing", people, srv.URL+"/nope")
	require.Error(t, err)
}
