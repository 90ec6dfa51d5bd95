package wire

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is a field kind tag. Its value is the descriptor character.
type Kind byte

const (
	KindBool    Kind = 'b'
	KindU8      Kind = '1'
	KindU16     Kind = '2'
	KindU32     Kind = '4'
	KindU64     Kind = '8'
	KindVarInt  Kind = 'i'
	KindVarLong Kind = 'I'
	KindString  Kind = 's'
)

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBool, KindU8, KindU16, KindU32, KindU64, KindVarInt, KindVarLong, KindString:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindVarInt:
		return "varint"
	case KindVarLong:
		return "varlong"
	case KindString:
		return "string"
	default:
		return "invalid(" + string(rune(k)) + ")"
	}
}

// width returns the fixed byte width of k, or 0 for variable-length kinds.
func (k Kind) width() int {
	switch k {
	case KindBool, KindU8:
		return 1
	case KindU16:
		return 2
	case KindU32:
		return 4
	case KindU64:
		return 8
	default:
		return 0
	}
}

// Descriptor is an ordered list of field kinds, one per field.
type Descriptor []Kind

// ParseDescriptor parses a descriptor string such as "124s". ASCII whitespace
// separates groups for readability ("i s 2 i") and is otherwise ignored. A
// non-empty string with no field characters is rejected.
func ParseDescriptor(s string) (Descriptor, error) {
	d := make(Descriptor, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSpace(c) {
			continue
		}
		k := Kind(c)
		if !k.Valid() {
			return nil, errors.Wrapf(ErrInvalidDescriptor, "character %q at offset %d", c, i)
		}
		d = append(d, k)
	}
	if len(d) == 0 && len(s) > 0 {
		return nil, errors.Wrapf(ErrInvalidDescriptor, "%q has no fields", s)
	}
	return d, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// MustDescriptor is ParseDescriptor for descriptors known at compile time.
func MustDescriptor(s string) Descriptor {
	d, err := ParseDescriptor(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Descriptor) String() string {
	var b strings.Builder
	b.Grow(len(d))
	for _, k := range d {
		b.WriteByte(byte(k))
	}
	return b.String()
}

// Check verifies that fields line up with d kind by kind.
func (d Descriptor) Check(fields []Field) error {
	if len(fields) != len(d) {
		return errors.Wrapf(ErrKindMismatch, "descriptor %q has %d fields, got %d", d.String(), len(d), len(fields))
	}
	for i, k := range d {
		if fields[i].Kind != k {
			return fieldError("check", i, k, errors.Wrapf(ErrKindMismatch, "got %s", fields[i].Kind))
		}
	}
	return nil
}
