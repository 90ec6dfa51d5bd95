package wire

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFixedBigEndian(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		width int
		want  []byte
	}{
		{"u8", 0xC8, 1, []byte{0xC8}},
		{"u16", 0x0102, 2, []byte{0x01, 0x02}},
		{"u32", 1000000, 4, []byte{0x00, 0x0F, 0x42, 0x40}},
		{"u64", 0x0102030405060708, 8, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"u64 max", math.MaxUint64, 8, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewGrowableBuffer()
			require.NoError(t, WriteFixed(b, tc.value, tc.width))
			assert.Equal(t, tc.want, b.Bytes())

			v, err := ReadFixed(b.Reader(), tc.width)
			require.NoError(t, err)
			assert.Equal(t, tc.value, v)
		})
	}
}

func TestWriteFixedRejectsBadInput(t *testing.T) {
	b := NewGrowableBuffer()
	require.ErrorIs(t, WriteFixed(b, 1, 3), ErrInvalidWidth)
	require.ErrorIs(t, WriteFixed(b, 0x1FF, 1), ErrInvalidArgument)
	assert.Equal(t, 0, b.Len())

	_, err := ReadFixed(NewReader([]byte{1, 2, 3}), 0)
	require.ErrorIs(t, err, ErrInvalidWidth)
}

func TestWriteFixedRollsBackPartialWrite(t *testing.T) {
	dst := make([]byte, 4)
	b := NewFixedBuffer(dst)
	require.NoError(t, b.AppendByte(0xEE))

	err := WriteFixed(b, 0x01020304, 4)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, byte(0xEE), dst[0])
}

func TestReadFixedTruncated(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := ReadFixed(r, 4)
	require.ErrorIs(t, err, ErrTruncatedInput)
	assert.Equal(t, 0, r.Pos())
}

func TestBoolEncoding(t *testing.T) {
	b := NewGrowableBuffer()
	require.NoError(t, WriteBool(b, true))
	require.NoError(t, WriteBool(b, false))
	assert.Equal(t, []byte{0x01, 0x00}, b.Bytes())

	r := b.Reader()
	v, err := ReadBool(r)
	require.NoError(t, err)
	assert.True(t, v)
	v, err = ReadBool(r)
	require.NoError(t, err)
	assert.False(t, v)
}

func TestReadBoolRejectsOutOfRangeByte(t *testing.T) {
	r := NewReader([]byte{0x02})
	_, err := ReadBool(r)
	require.ErrorIs(t, err, ErrInvalidBoolEncoding)
	assert.Equal(t, 0, r.Pos())

	v, err := ReadBoolLenient(r)
	require.NoError(t, err)
	assert.True(t, v)
	assert.Equal(t, 1, r.Pos())

	_, err = ReadBool(r)
	require.ErrorIs(t, err, ErrTruncatedInput)
}

func TestVarintEncoding(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"127", 127, []byte{0x7f}},
		{"128", 128, []byte{0x80, 0x01}},
		{"300", 300, []byte{0xac, 0x02}},
		{"2^28-1", 1<<28 - 1, []byte{0xff, 0xff, 0xff, 0x7f}},
		{"2^32-1", math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{"2^63-1", math.MaxInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
		{"2^64-1", math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewGrowableBuffer()
			require.NoError(t, WriteVarLong(b, tc.value))
			assert.Equal(t, tc.want, b.Bytes())
			assert.Equal(t, len(tc.want), VarintLen(tc.value))

			r := b.Reader()
			v, err := ReadVarLong(r)
			require.NoError(t, err)
			assert.Equal(t, tc.value, v)
			assert.Equal(t, len(tc.want), r.Pos())
		})
	}
}

func TestWriteVarintOverflowWritesNothing(t *testing.T) {
	b := NewGrowableBuffer()
	require.NoError(t, b.AppendByte(0x42))

	err := WriteVarint(b, 1<<35, MaxVarIntBytes)
	require.ErrorIs(t, err, ErrVarintOverflow)
	assert.Equal(t, []byte{0x42}, b.Bytes())

	require.NoError(t, WriteVarint(b, 1<<35-1, MaxVarIntBytes))
	assert.Equal(t, 6, b.Len())
}

func TestWriteVarintRollsBackOnCapacity(t *testing.T) {
	b := NewFixedBuffer(make([]byte, 2))
	err := WriteVarInt(b, 1<<20)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 0, b.Len())
}

func TestReadVarintBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		maxBytes int
		want     uint64
		err      error
	}{
		{"five bytes short class", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, MaxVarIntBytes, math.MaxUint32, nil},
		{"continuation on fifth byte", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, MaxVarIntBytes, 0, ErrVarintOverflow},
		{"continuation on tenth byte", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, MaxVarLongBytes, 0, ErrVarintOverflow},
		{"tenth byte beyond 64 bits", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}, MaxVarLongBytes, 0, ErrVarintOverflow},
		{"unterminated", []byte{0x80, 0x80}, MaxVarIntBytes, 0, ErrTruncatedInput},
		{"empty", nil, MaxVarIntBytes, 0, ErrTruncatedInput},
		{"non-minimal zero", []byte{0x80, 0x00}, MaxVarIntBytes, 0, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(tc.input)
			v, err := ReadVarint(r, tc.maxBytes)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Equal(t, 0, r.Pos())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
			assert.Equal(t, len(tc.input), r.Pos())
		})
	}
}

func TestReadVarIntRejectsMagnitudeAbove32Bits(t *testing.T) {
	input := []byte{0xff, 0xff, 0xff, 0xff, 0x1f}

	v, err := ReadVarint(NewReader(input), MaxVarIntBytes)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<33-1), v)

	r := NewReader(input)
	_, err = ReadVarInt(r)
	require.ErrorIs(t, err, ErrVarintOverflow)
	assert.Equal(t, 0, r.Pos())
}

func TestStringEncoding(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		prefix []byte
	}{
		{"empty", "", []byte{0x00}},
		{"short", "hi", []byte{0x02}},
		{"one byte prefix limit", strings.Repeat("a", 127), []byte{0x7f}},
		{"two byte prefix", strings.Repeat("b", 128), []byte{0x80, 0x01}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewGrowableBuffer()
			require.NoError(t, WriteString(b, tc.text))
			want := append(append([]byte{}, tc.prefix...), tc.text...)
			assert.Equal(t, want, b.Bytes())

			r := b.Reader()
			got, err := ReadString(r)
			require.NoError(t, err)
			assert.Equal(t, tc.text, got)
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestWriteStringIsAllOrNothing(t *testing.T) {
	dst := make([]byte, 3)
	b := NewFixedBuffer(dst)
	err := WriteString(b, "hello")
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 0, b.Len())
}

func TestReadStringIntoTruncatesCopyButNotCursor(t *testing.T) {
	b := NewGrowableBuffer()
	require.NoError(t, WriteString(b, "hello"))
	require.NoError(t, WriteString(b, "!"))

	r := b.Reader()
	dst := make([]byte, 2)
	n, err := ReadStringInto(r, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "he", string(dst))
	assert.Equal(t, 6, r.Pos())

	n, err = ReadStringInto(r, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, r.Len())
}

func TestReadStringTruncatedBody(t *testing.T) {
	r := NewReader([]byte{0x05, 'a', 'b'})
	_, err := ReadString(r)
	require.ErrorIs(t, err, ErrTruncatedInput)
	assert.Equal(t, 0, r.Pos())
}
