// Package wire is the binary codec underneath the protocol.
//
// Ownership boundary:
// - buffers: GrowableBuffer (owned, grows) and FixedBuffer (borrowed, fixed)
//   behind the Sink contract, and Reader as the read cursor
// - primitive codecs: big-endian fixed width, bool, varint, string
// - dispatch: Pack over typed Fields, Unpack over output Slots, Decode over a
//   Descriptor
//
// Wire format, one descriptor character per field:
//
//	b  bool     1 byte, 0x00 or 0x01
//	1  uint8    1 byte
//	2  uint16   2 bytes, big-endian
//	4  uint32   4 bytes, big-endian
//	8  uint64   8 bytes, big-endian
//	i  varint   at most 5 bytes, 32-bit magnitude
//	I  varlong  at most 10 bytes, 64-bit magnitude
//	s  string   varint byte length followed by the raw bytes
//
// Varints carry 7 payload bits per byte, least significant group first, with
// the high bit set on every byte except the last.
package wire
