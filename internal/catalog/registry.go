// Package catalog maps connection aliases to storage directories and resolves
// "database.table" references to persisted tables.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tuannm99/novarow/internal/record"
)

var (
	ErrUnknownAlias  = errors.New("catalog: unknown database alias")
	ErrTableNotFound = errors.New("catalog: table not found")
	ErrTableExists   = errors.New("catalog: table already exists")
	ErrInvalidName   = errors.New("catalog: invalid identifier")
)

// Registry associates logical database aliases with directories. Aliases are
// case-insensitive. It is safe for concurrent use.
//
// Opened tables are cached so every caller shares one handle, and with it one
// write lock, per table.
type Registry struct {
	mu     sync.RWMutex
	dirs   map[string]string
	tables map[string]*Table // "alias.table"
}

func NewRegistry() *Registry {
	return &Registry{
		dirs:   make(map[string]string),
		tables: make(map[string]*Table),
	}
}

func tableKey(alias, table string) string {
	return strings.ToLower(alias) + "." + table
}

// Allocate binds alias to dir, creating the directory if needed. Re-allocating an
// alias moves it to the new directory.
func (r *Registry) Allocate(alias, dir string) error {
	if err := checkIdent(alias); err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("catalog: resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("catalog: create %q: %w", abs, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(alias)
	if old, ok := r.dirs[key]; ok && old != abs {
		for k := range r.tables {
			if strings.HasPrefix(k, key+".") {
				delete(r.tables, k)
			}
		}
	}
	r.dirs[key] = abs
	return nil
}

func (r *Registry) Directory(alias string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dir, ok := r.dirs[strings.ToLower(alias)]
	return dir, ok
}

// Aliases returns the registered aliases in sorted order.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.dirs))
	for a := range r.dirs {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Create makes an empty table under the alias's directory.
func (r *Registry) Create(database, table string, schema *record.Schema) (*Table, error) {
	dir, err := r.tableDir(database, table)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(metaPath(dir, table)); err == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableExists, database, table)
	}
	t, err := createTable(database, dir, table, schema)
	if err != nil {
		return nil, err
	}
	r.tables[tableKey(database, table)] = t
	return t, nil
}

// Lookup opens an existing table.
func (r *Registry) Lookup(database, table string) (*Table, error) {
	dir, err := r.tableDir(database, table)
	if err != nil {
		return nil, err
	}
	key := tableKey(database, table)

	r.mu.RLock()
	t, ok := r.tables[key]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[key]; ok {
		return t, nil
	}
	t, err = openTable(database, dir, table)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, database, table)
	}
	if err != nil {
		return nil, err
	}
	r.tables[key] = t
	return t, nil
}

func (r *Registry) tableDir(database, table string) (string, error) {
	if err := checkIdent(table); err != nil {
		return "", err
	}
	dir, ok := r.Directory(database)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlias, database)
	}
	return dir, nil
}

// ParseQualified splits "database.table".
func ParseQualified(ref string) (database, table string, err error) {
	database, table, ok := strings.Cut(strings.TrimSpace(ref), ".")
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not database.table", ErrInvalidName, ref)
	}
	if err := checkIdent(database); err != nil {
		return "", "", err
	}
	if err := checkIdent(table); err != nil {
		return "", "", err
	}
	return database, table, nil
}

// checkIdent: first char letter or '_', rest letter/digit/'_'.
func checkIdent(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	return nil
}
