package info

import "io"

// EncodeRequest serializes names into buf as a single request frame and
// returns the frame (header included).
//
// Format: <header><name1>\n<name2>\n...
//
// With no names the payload is empty, which asks the server for its default
// info dump. The frame view is valid until buf is reused.
func EncodeRequest(buf *Buffer, names ...string) ([]byte, error) {
	buf.EnsureRequestCapacity(names)

	// Skip size field, written once the payload length is known.
	frame := buf.data[:HeaderSize]
	for _, name := range names {
		frame = appendName(frame, name)
		frame = append(frame, NameTerminator)
	}

	// The estimate is exact, append only reallocates if it was not.
	if cap(frame) != len(buf.data) {
		buf.data = frame[:cap(frame)]
		buf.grows++
	}

	if err := PutHeader(frame, uint64(len(frame)-HeaderSize)); err != nil {
		return nil, err
	}

	buf.length = len(frame)
	buf.offset = len(frame)
	return frame, nil
}

// WriteRequest encodes names into buf and writes the whole frame to w in a
// single Write call.
//
// After it returns, buf.Len() is the number of frame bytes written.
func WriteRequest(w io.Writer, buf *Buffer, names ...string) error {
	frame, err := EncodeRequest(buf, names...)
	if err != nil {
		return err
	}

	n, err := w.Write(frame)
	if err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	if n != len(frame) {
		return &ConnectionError{Op: "write", Err: io.ErrShortWrite}
	}
	return nil
}
