package wire

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

const (
	// MaxVarIntBytes bounds a short-class varint (32-bit magnitude).
	MaxVarIntBytes = 5
	// MaxVarLongBytes bounds a long-class varint (64-bit magnitude).
	MaxVarLongBytes = 10

	varintPayload  = 0x7f
	varintContinue = 0x80
)

// WriteFixed appends the low width bytes of v in big-endian order.
func WriteFixed(s Sink, v uint64, width int) error {
	switch width {
	case 1, 2, 4, 8:
	default:
		return errors.Wrapf(ErrInvalidWidth, "width %d", width)
	}
	if width < 8 && v>>(8*uint(width)) != 0 {
		return errors.Wrapf(ErrInvalidArgument, "value %d does not fit in %d bytes", v, width)
	}
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], v)

	start := s.Len()
	for _, b := range scratch[8-width:] {
		if err := s.AppendByte(b); err != nil {
			s.Truncate(start)
			return err
		}
	}
	return nil
}

// ReadFixed reads a width-byte big-endian unsigned integer.
func ReadFixed(r *Reader, width int) (uint64, error) {
	switch width {
	case 1, 2, 4, 8:
	default:
		return 0, errors.Wrapf(ErrInvalidWidth, "width %d", width)
	}
	p, err := r.next(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(p[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(p)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(p)), nil
	default:
		return binary.BigEndian.Uint64(p), nil
	}
}

func WriteBool(s Sink, v bool) error {
	if v {
		return s.AppendByte(1)
	}
	return s.AppendByte(0)
}

// ReadBool reads a strict 0x00/0x01 byte. Any other byte is rejected and left
// unread.
func ReadBool(r *Reader) (bool, error) {
	b, ok := r.peek(0)
	if !ok {
		return false, errors.Wrap(ErrTruncatedInput, "need 1 byte, have 0")
	}
	switch b {
	case 0:
		r.pos++
		return false, nil
	case 1:
		r.pos++
		return true, nil
	default:
		return false, errors.Wrapf(ErrInvalidBoolEncoding, "byte 0x%02x", b)
	}
}

// ReadBoolLenient treats any non-zero byte as true.
func ReadBoolLenient(r *Reader) (bool, error) {
	p, err := r.next(1)
	if err != nil {
		return false, err
	}
	return p[0] != 0, nil
}

// VarintLen returns the number of bytes v occupies as a varint.
func VarintLen(v uint64) int {
	n := 1
	for v >= varintContinue {
		v >>= 7
		n++
	}
	return n
}

// WriteVarint appends v using 7 payload bits per byte, low group first. It
// fails with ErrVarintOverflow, writing nothing, when v needs more than
// maxBytes bytes.
func WriteVarint(s Sink, v uint64, maxBytes int) error {
	if n := VarintLen(v); n > maxBytes {
		return errors.Wrapf(ErrVarintOverflow, "value %d needs %d bytes, limit %d", v, n, maxBytes)
	}
	start := s.Len()
	for {
		b := byte(v & varintPayload)
		v >>= 7
		if v != 0 {
			b |= varintContinue
		}
		if err := s.AppendByte(b); err != nil {
			s.Truncate(start)
			return err
		}
		if v == 0 {
			return nil
		}
	}
}

// ReadVarint decodes a varint of at most maxBytes bytes. On failure nothing is
// consumed.
func ReadVarint(r *Reader, maxBytes int) (uint64, error) {
	if maxBytes > MaxVarLongBytes {
		maxBytes = MaxVarLongBytes
	}
	var v uint64
	for i := 0; i < maxBytes; i++ {
		b, ok := r.peek(i)
		if !ok {
			return 0, errors.Wrapf(ErrTruncatedInput, "varint unterminated after %d bytes", i)
		}
		if i == MaxVarLongBytes-1 && b > 1 {
			return 0, errors.Wrap(ErrVarintOverflow, "varint exceeds 64 bits")
		}
		v |= uint64(b&varintPayload) << (7 * uint(i))
		if b&varintContinue == 0 {
			r.pos += i + 1
			return v, nil
		}
	}
	return 0, errors.Wrapf(ErrVarintOverflow, "varint longer than %d bytes", maxBytes)
}

// WriteVarInt appends a short-class varint.
func WriteVarInt(s Sink, v uint32) error {
	return WriteVarint(s, uint64(v), MaxVarIntBytes)
}

// ReadVarInt reads a short-class varint. Five-byte encodings whose magnitude
// does not fit in 32 bits are rejected.
func ReadVarInt(r *Reader) (uint32, error) {
	start := r.pos
	v, err := ReadVarint(r, MaxVarIntBytes)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		r.seek(start)
		return 0, errors.Wrapf(ErrVarintOverflow, "varint %d exceeds 32 bits", v)
	}
	return uint32(v), nil
}

// WriteVarLong appends a long-class varint.
func WriteVarLong(s Sink, v uint64) error {
	return WriteVarint(s, v, MaxVarLongBytes)
}

// ReadVarLong reads a long-class varint.
func ReadVarLong(r *Reader) (uint64, error) {
	return ReadVarint(r, MaxVarLongBytes)
}

// WriteString appends a short-class varint length followed by the raw bytes
// of text. Either all of it is written or none of it.
func WriteString(s Sink, text string) error {
	if uint64(len(text)) > math.MaxUint32 {
		return errors.Wrapf(ErrVarintOverflow, "string length %d exceeds 32 bits", len(text))
	}
	start := s.Len()
	if err := WriteVarInt(s, uint32(len(text))); err != nil {
		return err
	}
	if _, err := s.Write([]byte(text)); err != nil {
		s.Truncate(start)
		return err
	}
	return nil
}

// ReadString reads a length-prefixed string in full.
func ReadString(r *Reader) (string, error) {
	p, err := readPrefixed(r)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadStringInto copies min(length, len(dst)) bytes of a length-prefixed
// string into dst and always advances past the whole encoded string. A nil dst
// discards the content.
func ReadStringInto(r *Reader, dst []byte) (int, error) {
	p, err := readPrefixed(r)
	if err != nil {
		return 0, err
	}
	return copy(dst, p), nil
}

func readPrefixed(r *Reader) ([]byte, error) {
	start := r.pos
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.Len()) {
		r.seek(start)
		return nil, errors.Wrapf(ErrTruncatedInput, "string needs %d bytes, have %d", n, r.Len())
	}
	return r.next(int(n))
}
