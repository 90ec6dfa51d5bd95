package wire

import (
	"strings"

	"github.com/pkg/errors"
)

// Sink is the append contract shared by GrowableBuffer and FixedBuffer.
//
// A failing call leaves Len unchanged. Bytes between Len and Cap are undefined.
type Sink interface {
	// Len is the number of bytes written.
	Len() int
	// Cap is the number of bytes writable without growing.
	Cap() int
	// EnsureCapacity makes room for needed bytes in total, or fails with
	// ErrCapacityExceeded.
	EnsureCapacity(needed int) error
	AppendByte(v byte) error
	// Write appends p entirely or not at all.
	Write(p []byte) (int, error)
	// Truncate rolls the length back to n. It never extends the buffer.
	Truncate(n int)
	Bytes() []byte
	Release()
}

// Growth selects how a GrowableBuffer reallocates.
type Growth int

const (
	// GrowExact keeps capacity equal to the bytes needed, one byte at a time.
	GrowExact Growth = iota
	// GrowGeometric at least doubles capacity on each reallocation.
	GrowGeometric
)

func (g Growth) String() string {
	switch g {
	case GrowExact:
		return "exact"
	case GrowGeometric:
		return "geometric"
	default:
		return "unknown"
	}
}

// ParseGrowth parses "exact" or "geometric".
func ParseGrowth(raw string) (Growth, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "exact":
		return GrowExact, nil
	case "geometric", "double":
		return GrowGeometric, nil
	default:
		return GrowExact, errors.Wrapf(ErrInvalidArgument, "unknown growth policy %q", raw)
	}
}

// GrowableBuffer owns its storage and reallocates on demand.
type GrowableBuffer struct {
	data    []byte
	n       int
	growth  Growth
	maxSize int
}

// NewGrowableBuffer returns a one-byte buffer with exact growth and no size limit.
func NewGrowableBuffer() *GrowableBuffer {
	return newGrowableBuffer(DefaultOptions())
}

func newGrowableBuffer(opts Options) *GrowableBuffer {
	initial := opts.InitialCapacity
	if initial < 0 {
		initial = 0
	}
	if opts.MaxBufferBytes > 0 && initial > opts.MaxBufferBytes {
		initial = opts.MaxBufferBytes
	}
	return &GrowableBuffer{
		data:    make([]byte, initial),
		growth:  opts.Growth,
		maxSize: opts.MaxBufferBytes,
	}
}

// Len returns the number of bytes written.
func (b *GrowableBuffer) Len() int { return b.n }

// Cap returns the allocated size.
func (b *GrowableBuffer) Cap() int { return len(b.data) }

// EnsureCapacity grows the storage to hold at least needed bytes. A configured
// size limit stands in for allocation failure.
func (b *GrowableBuffer) EnsureCapacity(needed int) error {
	if needed <= len(b.data) {
		return nil
	}
	if b.maxSize > 0 && needed > b.maxSize {
		return errors.Wrapf(ErrCapacityExceeded, "need %d bytes, limit %d", needed, b.maxSize)
	}
	size := needed
	if b.growth == GrowGeometric {
		if doubled := 2 * len(b.data); doubled > size {
			size = doubled
		}
		if b.maxSize > 0 && size > b.maxSize {
			size = b.maxSize
		}
	}
	data := make([]byte, size)
	copy(data, b.data[:b.n])
	b.data = data
	return nil
}

// AppendByte appends one byte, growing by the configured policy.
func (b *GrowableBuffer) AppendByte(v byte) error {
	if b.n >= len(b.data) {
		if err := b.EnsureCapacity(b.n + 1); err != nil {
			return err
		}
	}
	b.data[b.n] = v
	b.n++
	return nil
}

// Write appends p entirely or fails with nothing appended.
func (b *GrowableBuffer) Write(p []byte) (int, error) {
	if err := b.EnsureCapacity(b.n + len(p)); err != nil {
		return 0, err
	}
	copy(b.data[b.n:], p)
	b.n += len(p)
	return len(p), nil
}

// Truncate shrinks the length to n. Larger n is a no-op.
func (b *GrowableBuffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < b.n {
		b.n = n
	}
}

// Bytes returns the packed bytes. The slice aliases the buffer until the next
// mutating call.
func (b *GrowableBuffer) Bytes() []byte { return b.data[:b.n] }

// Release drops the storage. It is safe to call more than once.
func (b *GrowableBuffer) Release() {
	b.data = nil
	b.n = 0
}

// Reader returns a read cursor over the packed bytes.
func (b *GrowableBuffer) Reader() *Reader { return NewReader(b.Bytes()) }

// FixedBuffer writes into caller-owned storage and never reallocates.
type FixedBuffer struct {
	data []byte
	n    int
}

// NewFixedBuffer wraps dst. Capacity is len(dst); writing starts at offset 0.
func NewFixedBuffer(dst []byte) *FixedBuffer {
	return &FixedBuffer{data: dst}
}

// Len returns the number of bytes written.
func (b *FixedBuffer) Len() int { return b.n }

// Cap returns len of the wrapped slice.
func (b *FixedBuffer) Cap() int { return len(b.data) }

// EnsureCapacity never grows; it only reports whether needed bytes fit.
func (b *FixedBuffer) EnsureCapacity(needed int) error {
	if needed > len(b.data) {
		return errors.Wrapf(ErrCapacityExceeded, "need %d bytes, fixed capacity %d", needed, len(b.data))
	}
	return nil
}

// AppendByte fails with ErrCapacityExceeded once the storage is full.
func (b *FixedBuffer) AppendByte(v byte) error {
	if b.n >= len(b.data) {
		return errors.Wrapf(ErrCapacityExceeded, "fixed capacity %d", len(b.data))
	}
	b.data[b.n] = v
	b.n++
	return nil
}

// Write copies p into the storage entirely or not at all.
func (b *FixedBuffer) Write(p []byte) (int, error) {
	if err := b.EnsureCapacity(b.n + len(p)); err != nil {
		return 0, err
	}
	copy(b.data[b.n:], p)
	b.n += len(p)
	return len(p), nil
}

// Truncate shrinks the length to n. Bytes past n are left as they were.
func (b *FixedBuffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < b.n {
		b.n = n
	}
}

// Bytes returns the written prefix of the caller's storage.
func (b *FixedBuffer) Bytes() []byte { return b.data[:b.n] }

// Release forgets the borrowed storage without touching it.
func (b *FixedBuffer) Release() {
	b.data = nil
	b.n = 0
}

// Reader returns a read cursor over the written bytes.
func (b *FixedBuffer) Reader() *Reader { return NewReader(b.Bytes()) }

// Reader is a read cursor over a byte slice it does not own.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a cursor at offset 0 of data. data is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the read position.
func (r *Reader) Pos() int { return r.pos }

// Size returns the total length of the underlying slice.
func (r *Reader) Size() int { return len(r.data) }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Remaining returns the unread bytes without consuming them.
func (r *Reader) Remaining() []byte { return r.data[r.pos:] }

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrTruncatedInput
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) peek(offset int) (byte, bool) {
	i := r.pos + offset
	if i >= len(r.data) {
		return 0, false
	}
	return r.data[i], true
}

// next consumes n bytes or fails without moving.
func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, errors.Wrapf(ErrTruncatedInput, "need %d bytes, have %d", n, r.Len())
	}
	p := r.data[r.pos : r.pos+n]
	r.pos += n
	return p, nil
}

func (r *Reader) seek(pos int) { r.pos = pos }
