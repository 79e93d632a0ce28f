package record

import (
	"fmt"

	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/errkind"
)

// Record frame:
//
//	[count u32] { [len u32] [encoded cell] } * count
//
// Lengths are little-endian. Each encoded cell follows the cell wire layout.
const lenSize = 4

// EncodeRecord frames every cell of r.
func EncodeRecord(r Record) []byte {
	size := lenSize
	for _, c := range r.cells {
		size += lenSize + cell.EncodedSize(c)
	}
	return AppendRecord(make([]byte, 0, size), r)
}

func AppendRecord(dst []byte, r Record) []byte {
	dst = bx.AppendU32(dst, uint32(len(r.cells)))
	for _, c := range r.cells {
		dst = bx.AppendU32(dst, uint32(cell.EncodedSize(c)))
		dst = cell.AppendEncode(dst, c)
	}
	return dst
}

// DecodeRecord parses one record frame and returns it with the number of bytes used.
func DecodeRecord(buf []byte) (Record, int, error) {
	if len(buf) < lenSize {
		return Record{}, 0, errkind.DataFormat.New("record frame shorter than count")
	}
	n := int(bx.U32(buf))
	off := lenSize

	// every cell needs at least a length and a header
	if n > (len(buf)-off)/(lenSize+cell.HeaderSize) {
		return Record{}, 0, errkind.DataFormat.New(fmt.Sprintf("record frame claims %d cells in %d bytes", n, len(buf)))
	}

	cells := make([]cell.Cell, 0, n)
	for i := 0; i < n; i++ {
		if off+lenSize > len(buf) {
			return Record{}, 0, errkind.DataFormat.New(fmt.Sprintf("cell %d: missing length", i))
		}
		l := int(bx.U32At(buf, off))
		off += lenSize
		if l > len(buf)-off {
			return Record{}, 0, errkind.DataFormat.New(fmt.Sprintf("cell %d: length %d overruns frame", i, l))
		}
		c, err := cell.Decode(buf[off : off+l])
		if err != nil {
			return Record{}, 0, err
		}
		cells = append(cells, c)
		off += l
	}
	return Record{cells: cells}, off, nil
}
