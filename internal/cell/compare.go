package cell

import (
	"bytes"
	"cmp"
	"math"
	"strings"
)

// Compare orders two cells: nulls first, then by affinity tag, then by value.
// Doubles order numerically with NaN before every number.
func Compare(a, b Cell) int {
	switch {
	case !a.valid && !b.valid:
		return cmp.Compare(a.aff, b.aff)
	case !a.valid:
		return -1
	case !b.valid:
		return 1
	}
	if a.aff != b.aff {
		return cmp.Compare(a.aff, b.aff)
	}

	switch a.aff {
	case Bool:
		return cmp.Compare(a.bits, b.bits)
	case String:
		return strings.Compare(a.str, b.str)
	case Blob:
		return bytes.Compare(a.blob, b.blob)
	case Double:
		return cmp.Compare(math.Float64frombits(a.bits), math.Float64frombits(b.bits))
	default:
		return cmp.Compare(int64(a.bits), int64(b.bits))
	}
}
