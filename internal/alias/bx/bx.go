// stand for bytes helper
//
// Every binary layout in novarow (cell payloads, record frames) is little-endian.
package bx

import "encoding/binary"

var LE = binary.LittleEndian

// --- read ---
func U32(b []byte) uint32 { return LE.Uint32(b) }
func U64(b []byte) uint64 { return LE.Uint64(b) }

// --- At (offset) ---
func U32At(b []byte, off int) uint32 { return U32(b[off:]) }

// --- append ---
func AppendU32(dst []byte, v uint32) []byte { return LE.AppendUint32(dst, v) }
func AppendU64(dst []byte, v uint64) []byte { return LE.AppendUint64(dst, v) }
