// Package dsv converts between delimiter-separated text lines and Records, using a
// Schema to pick each field's affinity. Fields are split on a single character with
// no quoting or escaping, so field values must not contain the delimiter.
package dsv

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/record"
)

// DefaultNullToken marks a null field.
const DefaultNullToken = `\N`

// Exchange renders text lines into Records and razes Records back into text.
// An Exchange is immutable and safe for concurrent use.
type Exchange struct {
	schema    *record.Schema
	delim     rune
	nullToken string
}

type Option func(*Exchange)

// WithNullToken changes the text that stands for a null cell.
func WithNullToken(tok string) Option {
	return func(x *Exchange) { x.nullToken = tok }
}

func New(schema *record.Schema, delim rune, opts ...Option) *Exchange {
	x := &Exchange{schema: schema, delim: delim, nullToken: DefaultNullToken}
	for _, o := range opts {
		o(x)
	}
	return x
}

func (x *Exchange) Schema() *record.Schema { return x.schema }
func (x *Exchange) Delimiter() rune        { return x.delim }

// Render splits text into at most Schema().Len() fields and parses each one with
// its column's affinity. The last field keeps any further delimiters.
func (x *Exchange) Render(text string) (record.Record, error) {
	n := x.schema.Len()
	var fields []string
	if n > 0 {
		fields = strings.SplitN(text, string(x.delim), n)
	}
	if len(fields) != n {
		return record.Record{}, errkind.DataFormat.New(fmt.Sprintf("got %d fields, schema has %d columns", len(fields), n))
	}

	b := record.NewBuilder(n)
	for i, f := range fields {
		col := x.schema.Column(i)
		c, err := x.parseField(col.Affinity, f)
		if err != nil {
			return record.Record{}, errkind.DataFormat.Wrap(err, fmt.Sprintf("column %q: cannot parse %q as %s", col.Name, f, col.Affinity))
		}
		if err := b.Append(c); err != nil {
			return record.Record{}, err
		}
	}
	return b.Finish(), nil
}

// Raze formats each cell in its canonical text form and joins them with the delimiter.
func (x *Exchange) Raze(r record.Record) (string, error) {
	if err := x.schema.Conform(r); err != nil {
		return "", err
	}
	parts := make([]string, r.Len())
	for i := range parts {
		parts[i] = x.formatCell(r.At(i))
	}
	return strings.Join(parts, string(x.delim)), nil
}

// RenderAll renders one record per line. Lines that fail are collected into a
// multierror; the records that did parse are still returned. Empty lines are skipped.
func (x *Exchange) RenderAll(r io.Reader) ([]record.Record, error) {
	var (
		out  []record.Record
		errs *multierror.Error
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" {
			continue
		}
		rec, err := x.Render(text)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		slog.Debug("dsv: render finished with errors", "records", len(out), "failed", len(errs.Errors))
	}
	return out, errs.ErrorOrNil()
}

// RazeAll writes one line per record.
func (x *Exchange) RazeAll(w io.Writer, recs []record.Record) error {
	bw := bufio.NewWriter(w)
	for i, r := range recs {
		line, err := x.Raze(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (x *Exchange) parseField(a cell.Affinity, f string) (cell.Cell, error) {
	if f == x.nullToken {
		return cell.Null(a), nil
	}
	return ParseCell(a, f)
}

// ParseCell reads the text form of one non-null value: strconv syntax for Bool, Int
// and Double, hex for Blob, RFC 3339 for Date, decimal text for Money and
// time.ParseDuration syntax for Span. String text is taken verbatim.
func ParseCell(a cell.Affinity, f string) (cell.Cell, error) {
	switch a {
	case cell.Bool:
		v, err := strconv.ParseBool(strings.TrimSpace(f))
		if err != nil {
			return cell.Cell{}, err
		}
		return cell.NewBool(v), nil
	case cell.String:
		return cell.NewString(f), nil
	case cell.Blob:
		v, err := hex.DecodeString(strings.TrimSpace(f))
		if err != nil {
			return cell.Cell{}, err
		}
		return cell.NewBlob(v), nil
	case cell.Int:
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return cell.Cell{}, err
		}
		return cell.NewInt(v), nil
	case cell.Double:
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return cell.Cell{}, err
		}
		return cell.NewDouble(v), nil
	case cell.Date:
		v, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(f))
		if err != nil {
			return cell.Cell{}, err
		}
		return cell.NewDate(v), nil
	case cell.Money:
		v, err := decimal.NewFromString(strings.TrimSpace(f))
		if err != nil {
			return cell.Cell{}, err
		}
		return cell.NewMoneyDecimal(v)
	case cell.Span:
		v, err := time.ParseDuration(strings.TrimSpace(f))
		if err != nil {
			return cell.Cell{}, err
		}
		return cell.NewSpan(v), nil
	}
	return cell.Cell{}, fmt.Errorf("unsupported affinity %s", a)
}

func (x *Exchange) formatCell(c cell.Cell) string {
	if c.IsNull() {
		return x.nullToken
	}
	switch c.Affinity() {
	case cell.Bool:
		return strconv.FormatBool(c.Bool())
	case cell.String:
		return c.Str()
	case cell.Blob:
		return hex.EncodeToString(c.Bytes())
	case cell.Int:
		return strconv.FormatInt(c.Int(), 10)
	case cell.Double:
		return strconv.FormatFloat(c.Double(), 'g', -1, 64)
	case cell.Date:
		return c.Time().Format(time.RFC3339Nano)
	case cell.Money:
		return c.Decimal().String()
	case cell.Span:
		return c.Duration().String()
	}
	return ""
}
