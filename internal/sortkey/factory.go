// Package sortkey turns sort spec strings such as "name,age desc" into Keys
// resolved against a Schema, and sorts records by them.
package sortkey

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tuannm99/novarow/internal/errkind"
	"github.com/tuannm99/novarow/internal/record"
)

// Factory is an immutable tokenizer configuration. The With* methods return a new
// Factory holding the union of the old and the given values, so a configured
// Factory can be shared freely.
type Factory struct {
	fieldDelims []rune
	dirDelims   []rune
	asc         []string // lower-cased
	desc        []string // lower-cased
}

// Default splits fields on ',' and directions on whitespace, and knows
// asc/ascending and desc/descending.
var Default = Factory{}.
	WithFieldDelimiters(',').
	WithDirectionDelimiters(' ', '\t', '\n').
	WithAscendingTokens("asc", "ascending").
	WithDescendingTokens("desc", "descending")

func (f Factory) WithFieldDelimiters(rs ...rune) Factory {
	f.fieldDelims = unionRunes(f.fieldDelims, rs)
	return f
}

func (f Factory) WithDirectionDelimiters(rs ...rune) Factory {
	f.dirDelims = unionRunes(f.dirDelims, rs)
	return f
}

func (f Factory) WithAscendingTokens(ts ...string) Factory {
	f.asc = unionTokens(f.asc, ts)
	return f
}

func (f Factory) WithDescendingTokens(ts ...string) Factory {
	f.desc = unionTokens(f.desc, ts)
	return f
}

func (f Factory) FieldDelimiters() []rune     { return slices.Clone(f.fieldDelims) }
func (f Factory) DirectionDelimiters() []rune { return slices.Clone(f.dirDelims) }
func (f Factory) AscendingTokens() []string   { return slices.Clone(f.asc) }
func (f Factory) DescendingTokens() []string  { return slices.Clone(f.desc) }

// Render parses spec against schema. A nil schema is the empty schema, so only
// numeric column references resolve.
//
// Each field is "<column>[<dirdelim><direction>]". A column resolves by
// case-insensitive name first and then as a non-negative integer index. An unknown
// direction token falls back to Ascending. Blank fields are skipped.
func (f Factory) Render(schema *record.Schema, spec string) (Key, error) {
	var parts []Part
	for _, field := range splitAny(spec, f.fieldDelims) {
		pieces := splitAny(field, f.dirDelims)
		switch len(pieces) {
		case 0:
			continue
		case 1, 2:
		default:
			return Key{}, errkind.DataFormat.New(fmt.Sprintf("sort field %q has more than a column and a direction", field))
		}

		col, err := resolveColumn(schema, pieces[0])
		if err != nil {
			return Key{}, err
		}
		dir := Ascending
		if len(pieces) == 2 {
			dir = f.direction(pieces[1])
		}
		parts = append(parts, Part{Column: col, Direction: dir})
	}
	return Key{parts: parts}, nil
}

func (f Factory) direction(tok string) Direction {
	t := strings.ToLower(tok)
	switch {
	case slices.Contains(f.asc, t):
		return Ascending
	case slices.Contains(f.desc, t):
		return Descending
	default:
		return Ascending
	}
}

func resolveColumn(schema *record.Schema, ref string) (int, error) {
	if i := schema.ColumnIndex(ref); i != record.NotFound {
		return i, nil
	}
	i, err := strconv.Atoi(ref)
	if err != nil || i < 0 {
		return 0, errkind.Unresolved.New(ref)
	}
	return i, nil
}

// splitAny splits s on any rune of delims and drops empty pieces.
func splitAny(s string, delims []rune) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return slices.Contains(delims, r)
	})
}

func unionRunes(have, add []rune) []rune {
	out := slices.Clone(have)
	for _, r := range add {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func unionTokens(have, add []string) []string {
	out := slices.Clone(have)
	for _, t := range add {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
