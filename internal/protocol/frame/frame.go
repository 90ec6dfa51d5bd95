package frame

import (
	"io"
	"math"

	"github.com/danmuck/obsidian/internal/protocol/wire"
	"github.com/pkg/errors"
)

var (
	ErrShortFrame    = errors.New("frame: short frame")
	ErrFrameTooLarge = errors.New("frame: frame too large")
	ErrInvalidLength = errors.New("frame: invalid length")
)

// Frame is one packet on the wire:
//
//	varint length | varint packet id | payload
//
// length counts the packet id and payload bytes.
type Frame struct {
	ID      uint32
	Payload []byte
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxFrameBytes uint32
}

// DefaultLimits allows any body whose length fits a three-byte varint.
func DefaultLimits() Limits {
	return Limits{
		MaxFrameBytes: 1<<21 - 1,
	}
}

func (f Frame) bodyLen() uint64 {
	return uint64(wire.VarintLen(uint64(f.ID))) + uint64(len(f.Payload))
}

// EncodeFrame returns the wire bytes of f.
func EncodeFrame(f Frame, limits Limits) ([]byte, error) {
	bodyLen := f.bodyLen()
	if bodyLen > uint64(limits.MaxFrameBytes) || bodyLen > math.MaxUint32 {
		return nil, errors.Wrapf(ErrFrameTooLarge, "body %d bytes, limit %d", bodyLen, limits.MaxFrameBytes)
	}
	buf := wire.NewGrowableBuffer()
	defer buf.Release()
	if err := buf.EnsureCapacity(wire.VarintLen(bodyLen) + int(bodyLen)); err != nil {
		return nil, err
	}
	if _, err := wire.Pack(buf, wire.VarInt(uint32(bodyLen)), wire.VarInt(f.ID)); err != nil {
		return nil, err
	}
	if _, err := buf.Write(f.Payload); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	b, err := EncodeFrame(f, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	length, err := readLength(r)
	if err != nil {
		return Frame{}, err
	}
	if length > limits.MaxFrameBytes {
		return Frame{}, errors.Wrapf(ErrFrameTooLarge, "body %d bytes, limit %d", length, limits.MaxFrameBytes)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Frame{}, ErrShortFrame
		}
		return Frame{}, err
	}
	return parseBody(body)
}

// DecodeFrame decodes the first frame in b and returns it with the number of
// bytes it occupied. The payload aliases b.
func DecodeFrame(b []byte, limits Limits) (Frame, int, error) {
	r := wire.NewReader(b)
	length, err := wire.ReadVarInt(r)
	if err != nil {
		if errors.Is(err, wire.ErrTruncatedInput) {
			return Frame{}, 0, ErrShortFrame
		}
		return Frame{}, 0, errors.Wrap(ErrInvalidLength, err.Error())
	}
	if length > limits.MaxFrameBytes {
		return Frame{}, 0, errors.Wrapf(ErrFrameTooLarge, "body %d bytes, limit %d", length, limits.MaxFrameBytes)
	}
	if uint64(length) > uint64(r.Len()) {
		return Frame{}, 0, ErrShortFrame
	}
	end := r.Pos() + int(length)
	f, err := parseBody(b[r.Pos():end])
	if err != nil {
		return Frame{}, 0, err
	}
	return f, end, nil
}

// readLength reads the varint length prefix one byte at a time so nothing
// past the prefix is consumed from r.
func readLength(r io.Reader) (uint32, error) {
	var head [wire.MaxVarIntBytes]byte
	var one [1]byte
	for i := 0; i < len(head); i++ {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return 0, ErrShortFrame
			}
			return 0, err
		}
		head[i] = one[0]
		if one[0]&0x80 == 0 {
			length, err := wire.ReadVarInt(wire.NewReader(head[:i+1]))
			if err != nil {
				return 0, errors.Wrap(ErrInvalidLength, err.Error())
			}
			return length, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidLength, "length prefix longer than %d bytes", len(head))
}

func parseBody(body []byte) (Frame, error) {
	r := wire.NewReader(body)
	id, err := wire.ReadVarInt(r)
	if err != nil {
		return Frame{}, errors.Wrap(ErrInvalidLength, err.Error())
	}
	return Frame{ID: id, Payload: r.Remaining()}, nil
}
