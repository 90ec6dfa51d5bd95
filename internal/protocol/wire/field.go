package wire

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Field is one typed value to pack. Integer kinds and bools carry their
// payload in Uint; strings carry it in Str.
type Field struct {
	Kind Kind
	Uint uint64
	Str  string
}

// Bool creates a bool field.
func Bool(v bool) Field {
	if v {
		return Field{Kind: KindBool, Uint: 1}
	}
	return Field{Kind: KindBool}
}

// U8 creates a one-byte field.
func U8(v uint8) Field { return Field{Kind: KindU8, Uint: uint64(v)} }

// U16 creates a two-byte big-endian field.
func U16(v uint16) Field { return Field{Kind: KindU16, Uint: uint64(v)} }

// U32 creates a four-byte big-endian field.
func U32(v uint32) Field { return Field{Kind: KindU32, Uint: uint64(v)} }

// U64 creates an eight-byte big-endian field.
func U64(v uint64) Field { return Field{Kind: KindU64, Uint: v} }

// VarInt creates a short-class varint field.
func VarInt(v uint32) Field { return Field{Kind: KindVarInt, Uint: uint64(v)} }

// VarLong creates a long-class varint field.
func VarLong(v uint64) Field { return Field{Kind: KindVarLong, Uint: v} }

// Str creates a length-prefixed string field.
func Str(v string) Field { return Field{Kind: KindString, Str: v} }

func (f Field) AsBool() bool { return f.Uint != 0 }
func (f Field) AsUint8() uint8 { return uint8(f.Uint) }
func (f Field) AsUint16() uint16 { return uint16(f.Uint) }
func (f Field) AsUint32() uint32 { return uint32(f.Uint) }
func (f Field) AsUint64() uint64 { return f.Uint }
func (f Field) AsString() string { return f.Str }

// Value returns the payload as its natural Go type.
func (f Field) Value() any {
	switch f.Kind {
	case KindBool:
		return f.AsBool()
	case KindU8:
		return f.AsUint8()
	case KindU16:
		return f.AsUint16()
	case KindU32, KindVarInt:
		return f.AsUint32()
	case KindU64, KindVarLong:
		return f.AsUint64()
	case KindString:
		return f.Str
	default:
		return nil
	}
}

func (f Field) String() string {
	switch f.Kind {
	case KindBool:
		return fmt.Sprintf("%s:%t", f.Kind, f.AsBool())
	case KindString:
		return fmt.Sprintf("%s:%s", f.Kind, strconv.Quote(f.Str))
	default:
		return fmt.Sprintf("%s:%v", f.Kind, f.Value())
	}
}

// maxUint returns the largest payload kind k can carry.
func (k Kind) maxUint() uint64 {
	switch k {
	case KindBool:
		return 1
	case KindU8:
		return math.MaxUint8
	case KindU16:
		return math.MaxUint16
	case KindU32, KindVarInt:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// Bind converts loosely typed arguments into fields following descriptor, the
// way a format string binds a variadic argument list. Integer kinds accept
// non-negative numbers and numeric strings that fit the kind.
func Bind(descriptor string, args ...any) ([]Field, error) {
	d, err := ParseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}
	return d.Bind(args...)
}

// Bind converts args into fields following d.
func (d Descriptor) Bind(args ...any) ([]Field, error) {
	if len(args) != len(d) {
		return nil, errors.Wrapf(ErrInvalidArgument, "descriptor %q wants %d arguments, got %d", d.String(), len(d), len(args))
	}
	fields := make([]Field, len(d))
	for i, k := range d {
		f, err := bindOne(k, args[i])
		if err != nil {
			return nil, fieldError("bind", i, k, err)
		}
		fields[i] = f
	}
	return fields, nil
}

func bindOne(k Kind, arg any) (Field, error) {
	switch k {
	case KindString:
		s, err := cast.ToStringE(arg)
		if err != nil {
			return Field{}, errors.Wrap(ErrInvalidArgument, err.Error())
		}
		return Str(s), nil
	case KindBool:
		v, err := cast.ToBoolE(arg)
		if err != nil {
			return Field{}, errors.Wrap(ErrInvalidArgument, err.Error())
		}
		return Bool(v), nil
	default:
		v, err := toUint64(arg)
		if err != nil {
			return Field{}, err
		}
		if v > k.maxUint() {
			return Field{}, errors.Wrapf(ErrInvalidArgument, "value %d out of range for %s", v, k)
		}
		return Field{Kind: k, Uint: v}, nil
	}
}

func toUint64(arg any) (uint64, error) {
	// Numeric strings are parsed directly so values above MaxInt64 survive.
	if s, ok := arg.(string); ok {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidArgument, "parse %q: %v", s, err)
		}
		return v, nil
	}
	v, err := cast.ToUint64E(arg)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	return v, nil
}
