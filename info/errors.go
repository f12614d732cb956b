package info

import (
	"errors"
	"fmt"
	"io"
)

// Error types for info protocol operations.
// Every error returned by this package leaves the connection in an unknown
// state: the frame may have been partially written or read.

// ErrRequestFailed is the opaque category every transport-level failure
// belongs to. Use errors.Is(err, ErrRequestFailed) to tell I/O and framing
// failures apart from parse errors.
var ErrRequestFailed = errors.New("info: request failed")

// ConnectionError wraps underlying I/O errors from connection operations.
//
// Common causes:
//   - Connection reset or refused
//   - Deadline exceeded
//   - Short write
//
// Connection handling: Connection is already broken, CLOSE it
type ConnectionError struct {
	Op  string // write or read
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("info: request failed during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrRequestFailed
}

func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// TruncatedError is returned when the stream ends before a declared frame
// part was fully received. Part is "header" or "payload".
//
// Connection handling: CLOSE connection, the peer is gone or out of sync
type TruncatedError struct {
	Part string
	Want int
	Got  int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("info: request failed: stream closed after %d of %d %s bytes", e.Got, e.Want, e.Part)
}

// Unwrap returns io.ErrUnexpectedEOF so callers can match truncation with
// the standard library sentinel.
func (e *TruncatedError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

func (e *TruncatedError) Is(target error) bool {
	return target == ErrRequestFailed
}

func (e *TruncatedError) ShouldCloseConnection() bool {
	return true
}

// FrameError represents an invalid frame header: unexpected protocol marker
// or message type, or a payload length above the accepted limit.
//
// Connection handling: CLOSE connection, the stream position is unknown
type FrameError struct {
	Message string
}

func (e *FrameError) Error() string {
	return "info: request failed: " + e.Message
}

func (e *FrameError) Is(target error) bool {
	return target == ErrRequestFailed
}

func (e *FrameError) ShouldCloseConnection() bool {
	return true
}

// ParseError is returned when a single-value response does not echo the
// requested name. It indicates a protocol or server-side mismatch.
//
// Connection handling: CLOSE connection, request and response are out of step
type ParseError struct {
	Message string
	Name    string
}

func (e *ParseError) Error() string {
	if e.Name != "" {
		return "info: parse error: " + e.Message + ": " + e.Name
	}
	return "info: parse error: " + e.Message
}

func (e *ParseError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is implemented by all error types of this package.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err requires discarding the
// connection it happened on.
//
// Returns false for nil. Unknown error types are treated conservatively and
// return true.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	return true
}
