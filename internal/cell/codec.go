package cell

import (
	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/errkind"
	"golang.org/x/text/encoding/unicode"
)

// Wire layout:
//
//	[tag u8][null u8]{payload}
//
// The payload is absent when null == 1. Bool is one byte, String is UTF-16LE code
// units, Blob is raw bytes and every fixed-width affinity is 8 little-endian bytes at
// offsets 2..9.
const (
	HeaderSize = 2

	offTag  = 0
	offNull = 1
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodedSize is HeaderSize plus the payload size (0 when null).
func EncodedSize(c Cell) int {
	return HeaderSize + payloadSize(c)
}

func payloadSize(c Cell) int {
	if !c.valid {
		return 0
	}
	switch {
	case c.aff == Bool:
		return 1
	case c.aff == String:
		return 2 * utf16Units(c.str)
	case c.aff == Blob:
		return len(c.blob)
	default:
		return FixedSize
	}
}

func utf16Units(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Encode returns the wire form of c.
func Encode(c Cell) []byte {
	return AppendEncode(make([]byte, 0, EncodedSize(c)), c)
}

// AppendEncode appends the wire form of c to dst.
func AppendEncode(dst []byte, c Cell) []byte {
	var null byte
	if !c.valid {
		null = 1
	}
	dst = append(dst, byte(c.aff), null)
	if !c.valid {
		return dst
	}

	switch {
	case c.aff == Bool:
		return append(dst, byte(c.bits&1))
	case c.aff == String:
		units, err := utf16le.NewEncoder().Bytes([]byte(c.str))
		if err != nil {
			// unreachable: NewString guarantees valid UTF-8
			panic(err)
		}
		return append(dst, units...)
	case c.aff == Blob:
		return append(dst, c.blob...)
	default:
		return bx.AppendU64(dst, c.bits)
	}
}

// Decode parses one encoded cell. Bool and fixed-width cells ignore trailing bytes,
// so a cell can be read from a wider slot; String and Blob consume the rest of buf.
func Decode(buf []byte) (Cell, error) {
	if len(buf) < HeaderSize {
		return Cell{}, errkind.DataFormat.New("cell shorter than header")
	}
	aff := Affinity(buf[offTag])
	if !aff.Valid() {
		return Cell{}, errkind.DataFormat.New("unknown affinity tag " + aff.String())
	}

	switch buf[offNull] {
	case 1:
		return Null(aff), nil
	case 0:
	default:
		return Cell{}, errkind.DataFormat.New("null flag is neither 0 nor 1")
	}

	payload := buf[HeaderSize:]
	switch {
	case aff == Bool:
		if len(payload) < 1 {
			return Cell{}, errkind.DataFormat.New("bool cell missing payload")
		}
		return NewBool(payload[0] != 0), nil

	case aff == String:
		if len(payload)%2 != 0 {
			return Cell{}, errkind.DataFormat.New("string payload has odd length")
		}
		s, err := utf16le.NewDecoder().Bytes(payload)
		if err != nil {
			return Cell{}, errkind.DataFormat.Wrap(err, "string payload is not UTF-16")
		}
		return NewString(string(s)), nil

	case aff == Blob:
		return NewBlob(payload), nil

	default:
		if len(payload) < FixedSize {
			return Cell{}, errkind.DataFormat.New(aff.String() + " cell shorter than 8 bytes")
		}
		return fixed(aff, bx.U64(payload)), nil
	}
}
