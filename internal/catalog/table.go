package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4"

	"github.com/tuannm99/novarow/internal/alias/util"
	"github.com/tuannm99/novarow/internal/record"
)

// TableMeta is persisted as <table>.meta.json beside the row file.
type TableMeta struct {
	Name      string         `json:"name"`
	Schema    *record.Schema `json:"schema"`
	RowCount  int            `json:"row_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Table is a persisted table: JSON metadata plus an lz4-compressed stream of
// binary record frames (<table>.rows.lz4).
type Table struct {
	Database string

	mu   sync.Mutex
	dir  string
	meta TableMeta
}

func metaPath(dir, name string) string { return filepath.Join(dir, name+".meta.json") }
func rowsPath(dir, name string) string { return filepath.Join(dir, name+".rows.lz4") }

func createTable(database, dir, name string, schema *record.Schema) (*Table, error) {
	now := time.Now()
	t := &Table{
		Database: database,
		dir:      dir,
		meta: TableMeta{
			Name:      name,
			Schema:    schema,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := t.writeRows(nil); err != nil {
		return nil, err
	}
	if err := t.writeMeta(); err != nil {
		return nil, err
	}
	return t, nil
}

func openTable(database, dir, name string) (*Table, error) {
	data, err := os.ReadFile(metaPath(dir, name))
	if err != nil {
		return nil, err
	}
	var meta TableMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("catalog: read meta of %s.%s: %w", database, name, err)
	}
	return &Table{Database: database, dir: dir, meta: meta}, nil
}

func (t *Table) Name() string           { return t.meta.Name }
func (t *Table) Schema() *record.Schema { return t.meta.Schema }

func (t *Table) Meta() TableMeta {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta
}

// Records reads every row of the table.
func (t *Table) Records() ([]record.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readRows()
}

// Append adds rows after checking each against the table schema.
func (t *Table) Append(recs ...record.Record) error {
	for i, r := range recs {
		if err := t.meta.Schema.Conform(r); err != nil {
			return fmt.Errorf("catalog: row %d of %s.%s: %w", i, t.Database, t.meta.Name, err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	have, err := t.readRows()
	if err != nil {
		return err
	}
	all := append(have, recs...)
	if err := t.writeRows(all); err != nil {
		return err
	}
	t.meta.RowCount = len(all)
	return t.writeMeta()
}

func (t *Table) readRows() ([]record.Record, error) {
	f, err := os.Open(rowsPath(t.dir, t.meta.Name))
	if err != nil {
		return nil, err
	}
	defer util.CloseLogged(f, f.Name())

	buf, err := io.ReadAll(lz4.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("catalog: decompress %s: %w", t.meta.Name, err)
	}

	var out []record.Record
	for off := 0; off < len(buf); {
		r, n, err := record.DecodeRecord(buf[off:])
		if err != nil {
			return nil, fmt.Errorf("catalog: row %d of %s: %w", len(out), t.meta.Name, err)
		}
		out = append(out, r)
		off += n
	}
	return out, nil
}

func (t *Table) writeRows(recs []record.Record) error {
	var raw []byte
	for _, r := range recs {
		raw = record.AppendRecord(raw, r)
	}

	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(raw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if err := writeFileAtomic(rowsPath(t.dir, t.meta.Name), compressed.Bytes()); err != nil {
		return err
	}
	slog.Debug("catalog: wrote rows",
		"table", t.Database+"."+t.meta.Name,
		"rows", len(recs),
		"raw", humanize.Bytes(uint64(len(raw))),
		"stored", humanize.Bytes(uint64(compressed.Len())),
	)
	return nil
}

func (t *Table) writeMeta() error {
	t.meta.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(t.meta, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(metaPath(t.dir, t.meta.Name), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
