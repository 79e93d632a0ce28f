package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
)

var (
	ErrDuplicateColumn = errors.New("record: duplicate column name")
	ErrEmptyColumnName = errors.New("record: empty column name")
)

// NotFound is returned by ColumnIndex when no column matches.
const NotFound = -1

// Column describes one column of a Schema. Size bounds String (UTF-16 units) and
// Blob (bytes) values; 0 means unbounded. It is ignored for other affinities.
type Column struct {
	Name     string        `json:"name"`
	Affinity cell.Affinity `json:"affinity"`
	Size     int           `json:"size,omitempty"`
}

// Schema is an ordered, immutable column catalog. A nil *Schema is the empty schema.
type Schema struct {
	cols []Column
}

func NewSchema(cols ...Column) (*Schema, error) {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return nil, ErrEmptyColumnName
		}
		if !c.Affinity.Valid() {
			return nil, fmt.Errorf("record: column %q has %s", c.Name, c.Affinity)
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[key] = struct{}{}
	}
	return &Schema{cols: append([]Column(nil), cols...)}, nil
}

// MustSchema is NewSchema for statically known column lists.
func MustSchema(cols ...Column) *Schema {
	s, err := NewSchema(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchema reads the compact form "name:affinity[:size],...", e.g. "id:int,name:string:32".
func ParseSchema(text string) (*Schema, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewSchema()
	}
	var cols []Column
	for _, def := range strings.Split(text, ",") {
		parts := strings.Split(strings.TrimSpace(def), ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("record: invalid column definition %q", def)
		}
		aff, err := cell.ParseAffinity(parts[1])
		if err != nil {
			return nil, err
		}
		col := Column{Name: strings.TrimSpace(parts[0]), Affinity: aff}
		if len(parts) == 3 {
			col.Size, err = strconv.Atoi(strings.TrimSpace(parts[2]))
			if err != nil || col.Size < 0 {
				return nil, fmt.Errorf("record: invalid size in %q", def)
			}
		}
		cols = append(cols, col)
	}
	return NewSchema(cols...)
}

func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cols)
}

func (s *Schema) Column(i int) Column { return s.cols[i] }

// Columns returns a copy of the column list.
func (s *Schema) Columns() []Column {
	if s == nil {
		return nil
	}
	return append([]Column(nil), s.cols...)
}

func (s *Schema) Names() []string {
	names := make([]string, s.Len())
	for i := range names {
		names[i] = s.cols[i].Name
	}
	return names
}

// ColumnIndex finds a column by case-insensitive name. The first match wins;
// NotFound is returned otherwise.
func (s *Schema) ColumnIndex(name string) int {
	for i := 0; i < s.Len(); i++ {
		if strings.EqualFold(s.cols[i].Name, name) {
			return i
		}
	}
	return NotFound
}

// Conform checks that r lines up with s: same width, matching affinities for
// every cell (a null cell carries an affinity too) and String/Blob sizes within
// bounds.
func (s *Schema) Conform(r Record) error {
	if r.Len() != s.Len() {
		return errkind.DataFormat.New(fmt.Sprintf("record has %d cells, schema has %d columns", r.Len(), s.Len()))
	}
	for i, col := range s.Columns() {
		c := r.At(i)
		if c.Affinity() != col.Affinity {
			return errkind.DataFormat.New(fmt.Sprintf("column %q expects %s, got %s", col.Name, col.Affinity, c.Affinity()))
		}
		if c.IsNull() || col.Size <= 0 {
			continue
		}
		var n int
		switch col.Affinity {
		case cell.String:
			n = (cell.EncodedSize(c) - cell.HeaderSize) / 2
		case cell.Blob:
			n = len(c.Bytes())
		default:
			continue
		}
		if n > col.Size {
			return errkind.DataFormat.New(fmt.Sprintf("column %q value length %d exceeds size %d", col.Name, n, col.Size))
		}
	}
	return nil
}

func (s *Schema) String() string {
	defs := make([]string, s.Len())
	for i, c := range s.Columns() {
		defs[i] = c.Name + ":" + c.Affinity.String()
		if c.Size > 0 {
			defs[i] += ":" + strconv.Itoa(c.Size)
		}
	}
	return strings.Join(defs, ",")
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	cols := s.Columns()
	if cols == nil {
		cols = []Column{}
	}
	return json.Marshal(cols)
}

func (s *Schema) UnmarshalJSON(b []byte) error {
	var cols []Column
	if err := json.Unmarshal(b, &cols); err != nil {
		return err
	}
	ns, err := NewSchema(cols...)
	if err != nil {
		return err
	}
	s.cols = ns.cols
	return nil
}
