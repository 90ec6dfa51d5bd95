package wire

// Slot is an unpack output target. A slot built with a nil target still
// decodes and validates its field but discards the value.
type Slot struct {
	Kind Kind

	b   *bool
	u8  *uint8
	u16 *uint16
	u32 *uint32
	u64 *uint64
	s   *string
	raw []byte
	n   *int
}

func BoolOut(p *bool) Slot { return Slot{Kind: KindBool, b: p} }
func U8Out(p *uint8) Slot { return Slot{Kind: KindU8, u8: p} }
func U16Out(p *uint16) Slot { return Slot{Kind: KindU16, u16: p} }
func U32Out(p *uint32) Slot { return Slot{Kind: KindU32, u32: p} }
func U64Out(p *uint64) Slot { return Slot{Kind: KindU64, u64: p} }
func VarIntOut(p *uint32) Slot { return Slot{Kind: KindVarInt, u32: p} }
func VarLongOut(p *uint64) Slot { return Slot{Kind: KindVarLong, u64: p} }
func StrOut(p *string) Slot { return Slot{Kind: KindString, s: p} }

// BytesOut receives a string field into dst, copying at most len(dst) bytes.
// The number of bytes copied is stored in n when n is not nil.
func BytesOut(dst []byte, n *int) Slot {
	return Slot{Kind: KindString, raw: dst, n: n}
}

// Skip decodes a field of kind k and discards it.
func Skip(k Kind) Slot { return Slot{Kind: k} }

// SkipAll returns a discarding slot for every kind in d.
func SkipAll(d Descriptor) []Slot {
	slots := make([]Slot, len(d))
	for i, k := range d {
		slots[i] = Skip(k)
	}
	return slots
}

func (s Slot) store(f Field, copied int) {
	switch f.Kind {
	case KindBool:
		if s.b != nil {
			*s.b = f.AsBool()
		}
	case KindU8:
		if s.u8 != nil {
			*s.u8 = f.AsUint8()
		}
	case KindU16:
		if s.u16 != nil {
			*s.u16 = f.AsUint16()
		}
	case KindU32, KindVarInt:
		if s.u32 != nil {
			*s.u32 = f.AsUint32()
		}
	case KindU64, KindVarLong:
		if s.u64 != nil {
			*s.u64 = f.AsUint64()
		}
	case KindString:
		if s.s != nil {
			*s.s = f.Str
		}
		if s.n != nil {
			*s.n = copied
		}
	}
}
