package info

import "unicode/utf8"

// worstCaseExpansion is the largest number of encoded bytes a single input
// byte can turn into: an invalid byte is replaced by U+FFFD (3 bytes).
const worstCaseExpansion = 3

// Buffer is a growable byte buffer shared by the request and response phases
// of one round-trip. It is reused verbatim as the parse target once the
// response has been read.
//
// Capacity only grows. A Buffer must not be used by two round-trips
// concurrently.
type Buffer struct {
	data   []byte // len(data) == cap(data)
	length int
	offset int
	grows  uint64
}

// NewBuffer creates a buffer with the given initial capacity.
func NewBuffer(size int) *Buffer {
	if size < HeaderSize {
		size = HeaderSize
	}
	return &Buffer{data: make([]byte, size)}
}

// Cap returns the buffer capacity in bytes.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Len returns the logical length of the content (the response payload once
// a response has been read).
func (b *Buffer) Len() int {
	return b.length
}

// Offset returns the read cursor.
func (b *Buffer) Offset() int {
	return b.offset
}

// Bytes returns a view of the content. The view is invalidated by the next
// round-trip or resize.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.length]
}

// Grows returns how many times the buffer had to be reallocated.
func (b *Buffer) Grows() uint64 {
	return b.grows
}

// Reset clears the logical content. Capacity is retained.
func (b *Buffer) Reset() {
	b.length = 0
	b.offset = 0
}

// EnsureCapacity makes sure the buffer holds at least size bytes.
// When it already does, the buffer is left untouched. Otherwise a new
// backing array of exactly size bytes is allocated; previous contents are
// not preserved.
func (b *Buffer) EnsureCapacity(size int) {
	if size <= len(b.data) {
		return
	}
	b.data = make([]byte, size)
	b.length = 0
	b.offset = 0
	b.grows++
}

// EnsureRequestCapacity sizes the buffer for a request frame carrying names.
//
// A cheap worst-case bound is tried first; the exact encoded size is only
// computed when that bound exceeds the current capacity.
func (b *Buffer) EnsureRequestCapacity(names []string) {
	if conservativeRequestSize(names) <= len(b.data) {
		return
	}
	b.EnsureCapacity(EstimateRequestSize(names...))
}

// EstimateRequestSize returns the exact frame size (header included) needed
// to encode names.
func EstimateRequestSize(names ...string) int {
	size := HeaderSize
	for _, name := range names {
		size += encodedLen(name) + 1
	}
	return size
}

func conservativeRequestSize(names []string) int {
	size := HeaderSize
	for _, name := range names {
		size += len(name)*worstCaseExpansion + 1
	}
	return size
}

// encodedLen returns the UTF-8 length of s once invalid bytes are replaced
// by utf8.RuneError.
func encodedLen(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			n++
			i++
			continue
		}
		r, w := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && w == 1 {
			n += utf8.RuneLen(utf8.RuneError)
		} else {
			n += w
		}
		i += w
	}
	return n
}

// appendName appends the UTF-8 encoding of s to dst, replacing invalid
// bytes by utf8.RuneError.
func appendName(dst []byte, s string) []byte {
	if utf8.ValidString(s) {
		return append(dst, s...)
	}
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && w == 1 {
			dst = utf8.AppendRune(dst, utf8.RuneError)
		} else {
			dst = append(dst, s[i:i+w]...)
		}
		i += w
	}
	return dst
}
