// Package info provides a low-level wire protocol implementation for the
// server info protocol: a name/value based system used to query a database
// server node for its configuration and status.
//
// This package serves as a foundation for higher-level clients. It covers
// framing, buffer sizing and response parsing, and leaves connection
// management, node selection and concurrency to the caller.
//
// # Frames
//
// Every request and response is one frame: an 8-byte big-endian header
// followed by a UTF-8 payload.
//
//	bytes[0]     = 0x02   protocol marker
//	bytes[1]     = 0x01   message type (info)
//	bytes[2..7]  = payload length, 48-bit unsigned
//	bytes[8..]   = payload
//
// # Payloads
//
//	request  := (name '\n')*
//	response := (name ('\t' value)? '\n')*
//	value    := (key '=' val ';')* key '=' val
//
// An empty request asks for the server's default set of names.
//
// # Buffers
//
// A Buffer is shared by the request and response phases of one round-trip
// and is reused as the parse target without copying. Its capacity only
// grows: the request path sizes it from a cheap worst-case estimate and only
// computes the exact encoded size when that estimate does not fit, the
// response path grows it to exactly the length declared by the server.
//
//	buf := info.NewBuffer(8192)
//	if err := info.RoundTrip(conn, buf, 0, "build", "node"); err != nil {
//	    conn.Close()
//	    return err
//	}
//	values := info.ParseMulti(buf.Bytes())
//
// # Parsing
//
// Three parsing modes are available, chosen by how the request was built:
//
//   - ParseSingle: value of a single requested name
//   - ParseMulti: map of all names in the response
//   - NameValueParser: pull cursor over a "k=v;k=v" value
//
// Absent values and empty values are not distinguished; both are returned
// as an empty string.
//
// # Error Handling
//
//   - ConnectionError: write or read failure
//   - TruncatedError: stream ended before the header or payload was complete
//   - FrameError: unexpected header or oversized payload
//   - ParseError: single-value response does not echo the requested name
//
// The first three match ErrRequestFailed. Any error leaves the stream in an
// unknown position: callers should close the connection (see
// ShouldCloseConnection). Nothing is retried by this package.
//
// # Thread Safety
//
// Functions are safe for concurrent use as long as each goroutine uses its
// own Buffer and connection.
package info
