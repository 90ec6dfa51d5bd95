package wire

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Observer receives the outcome of every pack and unpack call.
type Observer interface {
	ObservePack(n int, err error)
	ObserveUnpack(n int, err error)
}

// Options configures a Codec.
type Options struct {
	Growth          Growth
	InitialCapacity int
	// MaxBufferBytes caps growable buffers; 0 means unlimited.
	MaxBufferBytes int
	// LenientBool accepts any non-zero byte as true when decoding.
	LenientBool bool
	Observer    Observer
}

func DefaultOptions() Options {
	return Options{
		Growth:          GrowExact,
		InitialCapacity: 1,
	}
}

// Codec packs and unpacks fields. It holds no per-call state and may be
// shared between goroutines; buffers and readers may not.
type Codec struct {
	opts Options
}

func New(opts Options) *Codec {
	return &Codec{opts: opts}
}

var defaultCodec = New(DefaultOptions())

// Default returns the codec used by the package-level functions.
func Default() *Codec { return defaultCodec }

func (c *Codec) Options() Options { return c.opts }

// NewBuffer returns an empty growable buffer configured by the codec options.
func (c *Codec) NewBuffer() *GrowableBuffer {
	return newGrowableBuffer(c.opts)
}

// Pack appends fields to s in order and returns the resulting length of s. On
// the first failing field s is rolled back to its length before the call.
func (c *Codec) Pack(s Sink, fields ...Field) (int, error) {
	start := s.Len()
	for i, f := range fields {
		if err := writeField(s, f); err != nil {
			s.Truncate(start)
			err = fieldError("pack", i, f.Kind, err)
			log.Debug().Err(err).Int("field", i).Int("len", start).Msg("wire.Pack failed")
			c.observePack(0, err)
			return 0, err
		}
	}
	c.observePack(s.Len()-start, nil)
	return s.Len(), nil
}

// PackArgs binds args to descriptor and packs the result.
func (c *Codec) PackArgs(s Sink, descriptor string, args ...any) (int, error) {
	fields, err := Bind(descriptor, args...)
	if err != nil {
		c.observePack(0, err)
		return 0, err
	}
	return c.Pack(s, fields...)
}

// Encode packs fields into a fresh growable buffer and returns a copy of the
// packed bytes.
func (c *Codec) Encode(fields ...Field) ([]byte, error) {
	buf := c.NewBuffer()
	defer buf.Release()
	n, err := c.Pack(buf, fields...)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf.Bytes())
	return out, nil
}

// Unpack decodes one field per slot and returns the number of bytes consumed.
// On failure the read position is restored to where it was before the call.
func (c *Codec) Unpack(r *Reader, slots ...Slot) (int, error) {
	start := r.Pos()
	for i, slot := range slots {
		if err := c.readSlot(r, slot); err != nil {
			r.seek(start)
			err = fieldError("unpack", i, slot.Kind, err)
			log.Debug().Err(err).Int("field", i).Int("pos", start).Msg("wire.Unpack failed")
			c.observeUnpack(0, err)
			return 0, err
		}
	}
	n := r.Pos() - start
	c.observeUnpack(n, nil)
	return n, nil
}

// UnpackRaw unpacks from raw, typically a just-received message.
func (c *Codec) UnpackRaw(raw []byte, slots ...Slot) (int, error) {
	return c.Unpack(NewReader(raw), slots...)
}

// Decode reads one field per kind in d and returns the fields with the number
// of bytes consumed.
func (c *Codec) Decode(r *Reader, d Descriptor) ([]Field, int, error) {
	start := r.Pos()
	fields := make([]Field, 0, len(d))
	for i, k := range d {
		f, err := c.readField(r, k)
		if err != nil {
			r.seek(start)
			err = fieldError("decode", i, k, err)
			log.Debug().Err(err).Int("field", i).Str("descriptor", d.String()).Msg("wire.Decode failed")
			c.observeUnpack(0, err)
			return nil, 0, err
		}
		fields = append(fields, f)
	}
	n := r.Pos() - start
	c.observeUnpack(n, nil)
	return fields, n, nil
}

// DecodeRaw parses descriptor and decodes raw with it.
func (c *Codec) DecodeRaw(raw []byte, descriptor string) ([]Field, int, error) {
	d, err := ParseDescriptor(descriptor)
	if err != nil {
		return nil, 0, err
	}
	return c.Decode(NewReader(raw), d)
}

func writeField(s Sink, f Field) error {
	switch f.Kind {
	case KindBool:
		return WriteBool(s, f.Uint != 0)
	case KindU8, KindU16, KindU32, KindU64:
		return WriteFixed(s, f.Uint, f.Kind.width())
	case KindVarInt:
		if f.Uint > math.MaxUint32 {
			return errors.Wrapf(ErrVarintOverflow, "value %d exceeds 32 bits", f.Uint)
		}
		return WriteVarInt(s, uint32(f.Uint))
	case KindVarLong:
		return WriteVarLong(s, f.Uint)
	case KindString:
		return WriteString(s, f.Str)
	default:
		return errors.Wrapf(ErrInvalidDescriptor, "kind %q", byte(f.Kind))
	}
}

func (c *Codec) readField(r *Reader, k Kind) (Field, error) {
	switch k {
	case KindBool:
		read := ReadBool
		if c.opts.LenientBool {
			read = ReadBoolLenient
		}
		v, err := read(r)
		if err != nil {
			return Field{}, err
		}
		return Bool(v), nil
	case KindU8, KindU16, KindU32, KindU64:
		v, err := ReadFixed(r, k.width())
		if err != nil {
			return Field{}, err
		}
		return Field{Kind: k, Uint: v}, nil
	case KindVarInt:
		v, err := ReadVarInt(r)
		if err != nil {
			return Field{}, err
		}
		return VarInt(v), nil
	case KindVarLong:
		v, err := ReadVarLong(r)
		if err != nil {
			return Field{}, err
		}
		return VarLong(v), nil
	case KindString:
		v, err := ReadString(r)
		if err != nil {
			return Field{}, err
		}
		return Str(v), nil
	default:
		return Field{}, errors.Wrapf(ErrInvalidDescriptor, "kind %q", byte(k))
	}
}

func (c *Codec) readSlot(r *Reader, slot Slot) error {
	// String slots without a *string target copy into raw (possibly nil) so
	// discarded strings are never allocated.
	if slot.Kind == KindString && slot.s == nil {
		copied, err := ReadStringInto(r, slot.raw)
		if err != nil {
			return err
		}
		slot.store(Field{Kind: KindString}, copied)
		return nil
	}
	f, err := c.readField(r, slot.Kind)
	if err != nil {
		return err
	}
	slot.store(f, len(f.Str))
	return nil
}

func (c *Codec) observePack(n int, err error) {
	if c.opts.Observer != nil {
		c.opts.Observer.ObservePack(n, err)
	}
}

func (c *Codec) observeUnpack(n int, err error) {
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveUnpack(n, err)
	}
}

func Pack(s Sink, fields ...Field) (int, error) {
	return defaultCodec.Pack(s, fields...)
}

func PackArgs(s Sink, descriptor string, args ...any) (int, error) {
	return defaultCodec.PackArgs(s, descriptor, args...)
}

func Encode(fields ...Field) ([]byte, error) {
	return defaultCodec.Encode(fields...)
}

func Unpack(r *Reader, slots ...Slot) (int, error) {
	return defaultCodec.Unpack(r, slots...)
}

func UnpackRaw(raw []byte, slots ...Slot) (int, error) {
	return defaultCodec.UnpackRaw(raw, slots...)
}

func Decode(r *Reader, d Descriptor) ([]Field, int, error) {
	return defaultCodec.Decode(r, d)
}

func DecodeRaw(raw []byte, descriptor string) ([]Field, int, error) {
	return defaultCodec.DecodeRaw(raw, descriptor)
}
