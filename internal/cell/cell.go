package cell

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places a Money cell keeps.
const MoneyScale = 4

// Cell is a nullable tagged scalar. The zero Cell is a null Bool.
//
// A Cell is immutable: constructors copy their input and accessors never hand out
// internal storage.
type Cell struct {
	aff   Affinity
	valid bool
	bits  uint64 // Bool (0/1) and every fixed-width affinity
	str   string
	blob  []byte
}

// Null returns a null cell of the given affinity.
func Null(a Affinity) Cell { return Cell{aff: a} }

func NewBool(v bool) Cell {
	c := Cell{aff: Bool, valid: true}
	if v {
		c.bits = 1
	}
	return c
}

// NewString builds a String cell. Invalid UTF-8 is replaced with U+FFFD so the
// value survives the UTF-16 wire form.
func NewString(v string) Cell {
	if !utf8.ValidString(v) {
		v = strings.ToValidUTF8(v, "\uFFFD")
	}
	return Cell{aff: String, valid: true, str: v}
}

func NewBlob(v []byte) Cell {
	return Cell{aff: Blob, valid: true, blob: bytes.Clone(v)}
}

func NewInt(v int64) Cell { return fixed(Int, uint64(v)) }

func NewDouble(v float64) Cell { return fixed(Double, math.Float64bits(v)) }

// NewDate keeps the instant at nanosecond precision; the location is dropped.
func NewDate(v time.Time) Cell { return fixed(Date, uint64(v.UnixNano())) }

func NewSpan(v time.Duration) Cell { return fixed(Span, uint64(v)) }

// NewMoney builds a Money cell from a count of 1/10000 units.
func NewMoney(units int64) Cell { return fixed(Money, uint64(units)) }

// NewMoneyDecimal converts d to a Money cell. It fails if d carries more than
// MoneyScale decimal places or does not fit an int64 of units.
func NewMoneyDecimal(d decimal.Decimal) (Cell, error) {
	scaled := d.Shift(MoneyScale)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Cell{}, fmt.Errorf("cell: %s has more than %d decimal places", d, MoneyScale)
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return Cell{}, fmt.Errorf("cell: %s is out of money range", d)
	}
	return NewMoney(scaled.IntPart()), nil
}

// FromBits builds a fixed-width cell from its raw 8-byte representation.
func FromBits(a Affinity, bits uint64) (Cell, error) {
	if !a.Fixed() {
		return Cell{}, fmt.Errorf("cell: %s is not a fixed-width affinity", a)
	}
	return fixed(a, bits), nil
}

func fixed(a Affinity, bits uint64) Cell {
	return Cell{aff: a, valid: true, bits: bits}
}

func (c Cell) Affinity() Affinity { return c.aff }
func (c Cell) IsNull() bool       { return !c.valid }

// Bits returns the raw payload of a Bool or fixed-width cell.
func (c Cell) Bits() uint64 { return c.bits }

// The typed accessors return the zero value for a null cell or a different affinity.

func (c Cell) Bool() bool {
	return c.valid && c.aff == Bool && c.bits != 0
}

func (c Cell) Str() string {
	if !c.valid || c.aff != String {
		return ""
	}
	return c.str
}

func (c Cell) Bytes() []byte {
	if !c.valid || c.aff != Blob {
		return nil
	}
	return bytes.Clone(c.blob)
}

func (c Cell) Int() int64 {
	if !c.valid || !c.aff.Fixed() || c.aff == Double {
		return 0
	}
	return int64(c.bits)
}

func (c Cell) Double() float64 {
	if !c.valid || c.aff != Double {
		return 0
	}
	return math.Float64frombits(c.bits)
}

func (c Cell) Time() time.Time {
	if !c.valid || c.aff != Date {
		return time.Time{}
	}
	return time.Unix(0, int64(c.bits)).UTC()
}

func (c Cell) Duration() time.Duration {
	if !c.valid || c.aff != Span {
		return 0
	}
	return time.Duration(int64(c.bits))
}

func (c Cell) Decimal() decimal.Decimal {
	if !c.valid || c.aff != Money {
		return decimal.Zero
	}
	return decimal.New(int64(c.bits), -MoneyScale)
}

// Value returns the cell as a plain Go value, or nil when null.
func (c Cell) Value() any {
	if !c.valid {
		return nil
	}
	switch c.aff {
	case Bool:
		return c.Bool()
	case String:
		return c.str
	case Blob:
		return c.Bytes()
	case Int:
		return int64(c.bits)
	case Double:
		return c.Double()
	case Date:
		return c.Time()
	case Money:
		return c.Decimal()
	case Span:
		return c.Duration()
	}
	return nil
}

// Equal compares affinity, nullness and payload. Doubles compare by bit pattern.
func (c Cell) Equal(o Cell) bool {
	if c.aff != o.aff || c.valid != o.valid {
		return false
	}
	if !c.valid {
		return true
	}
	switch c.aff {
	case String:
		return c.str == o.str
	case Blob:
		return bytes.Equal(c.blob, o.blob)
	default:
		return c.bits == o.bits
	}
}

// Hash is the xxhash64 of the encoded cell.
func (c Cell) Hash() uint64 {
	return xxhash.Sum64(Encode(c))
}

// String renders the cell for humans; see the dsv package for the exchange text form.
func (c Cell) String() string {
	if !c.valid {
		return "NULL"
	}
	switch c.aff {
	case Bool:
		return strconv.FormatBool(c.Bool())
	case String:
		return strconv.Quote(c.str)
	case Blob:
		return fmt.Sprintf("0x%x", c.blob)
	case Int:
		return strconv.FormatInt(int64(c.bits), 10)
	case Double:
		return strconv.FormatFloat(c.Double(), 'g', -1, 64)
	case Date:
		return c.Time().Format(time.RFC3339Nano)
	case Money:
		return c.Decimal().String()
	case Span:
		return c.Duration().String()
	}
	return c.aff.String()
}
