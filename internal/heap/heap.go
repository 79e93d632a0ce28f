// Package heap is the workspace holding area for named result sets. Scripts deposit
// results; callers read them by name or by position and take them out when they
// want to own them.
package heap

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tuannm99/novarow/internal/record"
)

var ErrNotFound = errors.New("heap: no such result")

// Result is a named result set: a schema and the records that follow it.
type Result struct {
	Name    string
	Schema  *record.Schema
	Records []record.Record
}

// Heap maps names to exactly one pending Result each, remembering insertion
// order for positional access. It is safe for concurrent use.
type Heap struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*Result
}

func New() *Heap {
	return &Heap{entries: make(map[string]*Result)}
}

// Put stores res and returns its name. An empty name gets a generated one. A result
// with an existing name replaces the old one in place, keeping its position.
func (h *Heap) Put(res *Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("heap: nil result")
	}
	if res.Name == "" {
		res.Name = uuid.NewString()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.entries[res.Name]; ok {
		slog.Debug("heap: replacing result", "name", res.Name, "records", len(res.Records))
	} else {
		h.order = append(h.order, res.Name)
	}
	h.entries[res.Name] = res
	return res.Name, nil
}

func (h *Heap) Get(name string) (*Result, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	res, ok := h.entries[name]
	return res, ok
}

// At returns the i-th result in insertion order.
func (h *Heap) At(i int) (*Result, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.order) {
		return nil, false
	}
	return h.entries[h.order[i]], true
}

func (h *Heap) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

func (h *Heap) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.order)
}

// Take removes the named result and hands it to the caller.
func (h *Heap) Take(name string) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.takeLocked(name)
}

// TakeAt removes the i-th result and hands it to the caller.
func (h *Heap) TakeAt(i int) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.order) {
		return nil, fmt.Errorf("%w: index %d", ErrNotFound, i)
	}
	return h.takeLocked(h.order[i])
}

// takeLocked requires h.mu held for writing.
func (h *Heap) takeLocked(name string) (*Result, error) {
	res, ok := h.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(h.entries, name)
	h.order = slices.DeleteFunc(h.order, func(n string) bool { return n == name })
	return res, nil
}

// Scan visits results in insertion order over a snapshot; fn may use the heap.
func (h *Heap) Scan(fn func(i int, res *Result) error) error {
	h.mu.RLock()
	snapshot := make([]*Result, len(h.order))
	for i, n := range h.order {
		snapshot[i] = h.entries[n]
	}
	h.mu.RUnlock()

	for i, res := range snapshot {
		if err := fn(i, res); err != nil {
			return err
		}
	}
	return nil
}
