package cell

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNilValue = errors.New("cell: nil value has no affinity")

// Of wraps a Go value in a Cell, inferring the affinity from its type.
func Of(v any) (Cell, error) {
	switch x := v.(type) {
	case nil:
		return Cell{}, ErrNilValue
	case Cell:
		return x, nil
	case bool:
		return NewBool(x), nil
	case string:
		return NewString(x), nil
	case []byte:
		return NewBlob(x), nil
	case float32:
		return NewDouble(float64(x)), nil
	case float64:
		return NewDouble(x), nil
	case time.Time:
		return NewDate(x), nil
	case time.Duration:
		return NewSpan(x), nil
	case decimal.Decimal:
		return NewMoneyDecimal(x)
	}
	if i, ok := asInt64(v); ok {
		return NewInt(i), nil
	}
	return Cell{}, fmt.Errorf("cell: unsupported value type %T", v)
}

// As converts a Go value to a Cell of the given affinity. Numeric values widen or
// convert where that cannot silently lose the integer part.
func As(a Affinity, v any) (Cell, error) {
	if !a.Valid() {
		return Cell{}, fmt.Errorf("cell: invalid %s", a)
	}
	if v == nil {
		return Null(a), nil
	}
	if c, ok := v.(Cell); ok {
		if c.aff != a {
			return Cell{}, fmt.Errorf("cell: %s cell is not %s", c.aff, a)
		}
		return c, nil
	}

	switch a {
	case Bool:
		if x, ok := v.(bool); ok {
			return NewBool(x), nil
		}
	case String:
		switch x := v.(type) {
		case string:
			return NewString(x), nil
		case fmt.Stringer:
			return NewString(x.String()), nil
		}
	case Blob:
		switch x := v.(type) {
		case []byte:
			return NewBlob(x), nil
		case string:
			return NewBlob([]byte(x)), nil
		}
	case Int:
		if i, ok := asInt64(v); ok {
			return NewInt(i), nil
		}
	case Double:
		switch x := v.(type) {
		case float64:
			return NewDouble(x), nil
		case float32:
			return NewDouble(float64(x)), nil
		}
		if i, ok := asInt64(v); ok {
			return NewDouble(float64(i)), nil
		}
	case Date:
		if x, ok := v.(time.Time); ok {
			return NewDate(x), nil
		}
	case Money:
		switch x := v.(type) {
		case decimal.Decimal:
			return NewMoneyDecimal(x)
		case float64:
			return NewMoneyDecimal(decimal.NewFromFloat(x))
		}
		if i, ok := asInt64(v); ok {
			return NewMoneyDecimal(decimal.NewFromInt(i))
		}
	case Span:
		if x, ok := v.(time.Duration); ok {
			return NewSpan(x), nil
		}
		if i, ok := asInt64(v); ok {
			return NewSpan(time.Duration(i)), nil
		}
	}
	return Cell{}, fmt.Errorf("cell: cannot convert %T to %s", v, a)
}

// ---- small helper to accept every integer type ----
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}
