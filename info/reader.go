package info

import (
	"errors"
	"io"
	"math"
	"strconv"
)

// ReadResponse reads one response frame from r into buf.
//
// The header is read first; the buffer is then grown to exactly the declared
// payload length and the payload is read in full, looping over short reads.
// On success buf.Bytes() is the payload and the read cursor is reset to 0.
//
// A limit greater than zero rejects payloads larger than limit bytes before
// any allocation happens.
//
// Errors:
//   - TruncatedError: stream ended before the header or payload was complete
//   - FrameError: unexpected protocol marker, message type, or length
//   - ConnectionError: any other read failure
func ReadResponse(r io.Reader, buf *Buffer, limit uint64) error {
	buf.EnsureCapacity(HeaderSize)
	buf.Reset()

	if err := readFully(r, buf.data[:HeaderSize], "header"); err != nil {
		return err
	}

	header := DecodeHeader(buf.data)
	if err := header.Validate(); err != nil {
		return err
	}

	if limit > 0 && header.Length > limit {
		return &FrameError{Message: "payload length " + strconv.FormatUint(header.Length, 10) +
			" exceeds limit " + strconv.FormatUint(limit, 10)}
	}
	if header.Length > math.MaxInt {
		return &FrameError{Message: "payload length " + strconv.FormatUint(header.Length, 10) + " overflows int"}
	}

	length := int(header.Length)
	buf.EnsureCapacity(length)

	if err := readFully(r, buf.data[:length], "payload"); err != nil {
		return err
	}

	buf.length = length
	buf.offset = 0
	return nil
}

// RoundTrip sends one request frame carrying names and reads the response
// frame into buf. No retry is attempted.
func RoundTrip(rw io.ReadWriter, buf *Buffer, limit uint64, names ...string) error {
	if err := WriteRequest(rw, buf, names...); err != nil {
		return err
	}
	return ReadResponse(rw, buf, limit)
}

func readFully(r io.Reader, dst []byte, part string) error {
	n, err := io.ReadFull(r, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &TruncatedError{Part: part, Want: len(dst), Got: n}
	}
	return &ConnectionError{Op: "read", Err: err}
}
