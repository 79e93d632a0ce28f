package heap

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/record"
)

func newResult(name string, n int) *Result {
	recs := make([]record.Record, n)
	for i := range recs {
		recs[i] = record.Of(cell.NewInt(int64(i)))
	}
	return &Result{
		Name:    name,
		Schema:  record.MustSchema(record.Column{Name: "n", Affinity: cell.Int}),
		Records: recs,
	}
}

func TestHeap_PutGetAt(t *testing.T) {
	h := New()
	for _, n := range []string{"b", "a", "c"} {
		_, err := h.Put(newResult(n, 1))
		require.NoError(t, err)
	}

	require.Equal(t, 3, h.Len())
	require.Equal(t, []string{"b", "a", "c"}, h.Names())

	res, ok := h.At(1)
	require.True(t, ok)
	require.Equal(t, "a", res.Name)

	res, ok = h.Get("c")
	require.True(t, ok)
	require.Equal(t, "c", res.Name)

	_, ok = h.Get("zzz")
	require.False(t, ok)
	_, ok = h.At(3)
	require.False(t, ok)
	_, ok = h.At(-1)
	require.False(t, ok)
}

func TestHeap_PutReplacesInPlace(t *testing.T) {
	h := New()
	_, _ = h.Put(newResult("a", 1))
	_, _ = h.Put(newResult("b", 1))
	_, _ = h.Put(newResult("a", 5))

	require.Equal(t, []string{"a", "b"}, h.Names())
	res, _ := h.Get("a")
	require.Len(t, res.Records, 5)
}

func TestHeap_PutGeneratesName(t *testing.T) {
	h := New()
	name, err := h.Put(newResult("", 0))
	require.NoError(t, err)
	_, err = uuid.Parse(name)
	require.NoError(t, err)

	_, err = h.Put(nil)
	require.Error(t, err)
}

func TestHeap_TakeTransfersOwnership(t *testing.T) {
	h := New()
	_, _ = h.Put(newResult("a", 1))
	_, _ = h.Put(newResult("b", 2))
	_, _ = h.Put(newResult("c", 3))

	res, err := h.Take("b")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	_, ok := h.Get("b")
	require.False(t, ok, "a second reader does not see a taken result")
	require.Equal(t, []string{"a", "c"}, h.Names())

	_, err = h.Take("b")
	require.ErrorIs(t, err, ErrNotFound)

	res, err = h.TakeAt(1)
	require.NoError(t, err)
	require.Equal(t, "c", res.Name)
	require.Equal(t, 1, h.Len())

	_, err = h.TakeAt(7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHeap_Scan(t *testing.T) {
	h := New()
	_, _ = h.Put(newResult("a", 1))
	_, _ = h.Put(newResult("b", 1))

	var seen []string
	err := h.Scan(func(i int, res *Result) error {
		seen = append(seen, fmt.Sprintf("%d:%s", i, res.Name))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"0:a", "1:b"}, seen)

	stop := errors.New("stop")
	err = h.Scan(func(i int, res *Result) error {
		// taking inside Scan must not deadlock
		_, _ = h.Take(res.Name)
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, h.Len())
}

func TestHeap_ConcurrentUse(t *testing.T) {
	h := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("r%d", i)
			_, _ = h.Put(newResult(name, i))
			_, _ = h.Get(name)
			_ = h.Names()
		}(i)
	}
	wg.Wait()
	require.Equal(t, 16, h.Len())
}

func TestHeap_ConcurrentTakeAt(t *testing.T) {
	const n = 64
	h := New()
	for i := 0; i < n; i++ {
		_, err := h.Put(newResult(fmt.Sprintf("r%d", i), 1))
		require.NoError(t, err)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken = map[string]int{}
		errs  []error
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				res, err := h.TakeAt(0)
				if err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return
				}
				mu.Lock()
				taken[res.Name]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, taken, n)
	for name, c := range taken {
		require.Equal(t, 1, c, name)
	}
	require.Zero(t, h.Len())
	// a worker only stops once the heap is drained
	require.Len(t, errs, 8)
	for _, err := range errs {
		require.ErrorIs(t, err, ErrNotFound)
		require.Contains(t, err.Error(), "index 0")
	}
}
