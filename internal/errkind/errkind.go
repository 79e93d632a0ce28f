// Package errkind holds the error categories shared by the codec, text exchange,
// sort-key and collaborator packages. Errors returned straight from those packages
// can be tested with Kind.Is:
//
//	if errkind.DataFormat.Is(err) { ... }
//
// Once an error has been wrapped with fmt.Errorf("...: %w", err), use Is instead.
package errkind

import (
	stderrors "errors"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// DataFormat is a malformed or short binary payload, a text field that does not parse,
	// a field-count mismatch or a bitmap dimension mismatch.
	DataFormat = errors.NewKind("malformed data: %s")

	// Unresolved is a sort-spec column reference that matches no column name and is not an index.
	Unresolved = errors.NewKind("%q is neither a field nor an index")

	// ScriptCompile and ScriptParse are raised by script executors and passed through untouched.
	ScriptCompile = errors.NewKind("script compile error: %s")
	ScriptParse   = errors.NewKind("script parse error: %s")
)

// Is reports whether err, or any error it wraps, is of kind k.
func Is(err error, k *errors.Kind) bool {
	for ; err != nil; err = stderrors.Unwrap(err) {
		if k.Is(err) {
			return true
		}
	}
	return false
}
