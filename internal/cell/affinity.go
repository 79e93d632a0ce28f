package cell

import (
	"fmt"
	"strings"
)

// Affinity identifies a Cell's value kind and binary shape. The ordinal is the
// tag byte written at offset 0 of every encoded cell, so values must never be reordered.
type Affinity uint8

const (
	Bool Affinity = iota
	String
	Blob
	Int    // int64
	Double // float64
	Date   // int64 Unix nanoseconds, UTC
	Money  // int64 count of 1/10000 units
	Span   // int64 nanoseconds

	numAffinities
)

// FixedSize is the raw payload width shared by every fixed-width affinity.
const FixedSize = 8

var affinityNames = [numAffinities]string{
	Bool:   "bool",
	String: "string",
	Blob:   "blob",
	Int:    "int",
	Double: "double",
	Date:   "date",
	Money:  "money",
	Span:   "span",
}

// Valid reports whether a is one of the defined affinities.
func (a Affinity) Valid() bool { return a < numAffinities }

// Fixed reports whether a stores its payload as exactly FixedSize raw bytes.
func (a Affinity) Fixed() bool { return a >= Int && a < numAffinities }

func (a Affinity) String() string {
	if !a.Valid() {
		return fmt.Sprintf("affinity(%d)", uint8(a))
	}
	return affinityNames[a]
}

// ParseAffinity resolves a case-insensitive affinity name.
func ParseAffinity(name string) (Affinity, error) {
	n := strings.TrimSpace(name)
	for i, s := range affinityNames {
		if strings.EqualFold(s, n) {
			return Affinity(i), nil
		}
	}
	return 0, fmt.Errorf("cell: unknown affinity %q", name)
}

func (a Affinity) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("cell: cannot marshal %s", a)
	}
	return []byte(a.String()), nil
}

func (a *Affinity) UnmarshalText(b []byte) error {
	v, err := ParseAffinity(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
