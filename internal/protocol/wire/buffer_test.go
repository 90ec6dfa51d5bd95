package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowableBufferGrowsOneByteAtATime(t *testing.T) {
	b := NewGrowableBuffer()
	require.Equal(t, 1, b.Cap())
	require.Equal(t, 0, b.Len())

	for i := byte(1); i <= 3; i++ {
		require.NoError(t, b.AppendByte(i))
		assert.Equal(t, int(i), b.Cap())
	}
	assert.Equal(t, []byte{1, 2, 3}, b.Bytes())
}

func TestGrowableBufferGeometricGrowth(t *testing.T) {
	b := New(Options{Growth: GrowGeometric, InitialCapacity: 1}).NewBuffer()
	for i := byte(0); i < 3; i++ {
		require.NoError(t, b.AppendByte(i))
	}
	assert.Equal(t, 4, b.Cap())
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []byte{0, 1, 2}, b.Bytes())
}

func TestGrowableBufferEnsureCapacity(t *testing.T) {
	b := NewGrowableBuffer()
	require.NoError(t, b.AppendByte(0xAA))
	require.NoError(t, b.EnsureCapacity(16))
	assert.Equal(t, 16, b.Cap())
	assert.Equal(t, []byte{0xAA}, b.Bytes())

	require.NoError(t, b.EnsureCapacity(4))
	assert.Equal(t, 16, b.Cap())
}

func TestGrowableBufferSizeLimit(t *testing.T) {
	b := New(Options{Growth: GrowExact, InitialCapacity: 1, MaxBufferBytes: 2}).NewBuffer()
	require.NoError(t, b.AppendByte(1))
	require.NoError(t, b.AppendByte(2))

	err := b.AppendByte(3)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, b.Cap())

	_, err = b.Write([]byte{3, 4})
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, []byte{1, 2}, b.Bytes())
}

func TestFixedBufferNeverGrows(t *testing.T) {
	dst := make([]byte, 2)
	b := NewFixedBuffer(dst)

	require.NoError(t, b.AppendByte(0x10))
	require.NoError(t, b.AppendByte(0x20))
	require.ErrorIs(t, b.AppendByte(0x30), ErrCapacityExceeded)
	require.ErrorIs(t, b.EnsureCapacity(3), ErrCapacityExceeded)

	_, err := b.Write([]byte{0x30})
	require.ErrorIs(t, err, ErrCapacityExceeded)

	assert.Equal(t, 2, b.Cap())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []byte{0x10, 0x20}, dst)
}

func TestFixedBufferWritesIntoCallerStorage(t *testing.T) {
	dst := make([]byte, 4)
	b := NewFixedBuffer(dst)
	n, err := b.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3, 0}, dst)
	assert.Equal(t, []byte{1, 2, 3}, b.Bytes())
}

func TestTruncateOnlyShrinks(t *testing.T) {
	b := NewGrowableBuffer()
	_, err := b.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	b.Truncate(5)
	assert.Equal(t, 3, b.Len())
	b.Truncate(1)
	assert.Equal(t, []byte{1}, b.Bytes())
	b.Truncate(-1)
	assert.Equal(t, 0, b.Len())
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := NewGrowableBuffer()
	require.NoError(t, g.AppendByte(1))
	g.Release()
	g.Release()
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.Cap())

	dst := []byte{9, 9}
	f := NewFixedBuffer(dst)
	require.NoError(t, f.AppendByte(1))
	f.Release()
	f.Release()
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 0, f.Cap())
	assert.Equal(t, []byte{1, 9}, dst)
	require.ErrorIs(t, f.AppendByte(2), ErrCapacityExceeded)
}

func TestReaderCursor(t *testing.T) {
	r := NewReader([]byte{1, 2})
	assert.Equal(t, 2, r.Size())

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(1), b)
	assert.Equal(t, 1, r.Pos())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []byte{2}, r.Remaining())

	_, err = r.ReadByte()
	require.NoError(t, err)
	_, err = r.ReadByte()
	require.ErrorIs(t, err, ErrTruncatedInput)
	assert.Equal(t, 2, r.Pos())
}

func TestParseGrowth(t *testing.T) {
	g, err := ParseGrowth("Geometric")
	require.NoError(t, err)
	assert.Equal(t, GrowGeometric, g)

	g, err = ParseGrowth("")
	require.NoError(t, err)
	assert.Equal(t, GrowExact, g)

	_, err = ParseGrowth("fibonacci")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
