package asinfo

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/pior/asinfo/info"
)

// Conn is a single connection to a node. It runs one round-trip at a time
// and is not safe for concurrent use.
type Conn struct {
	net.Conn
	limit uint64
}

// NewConn wraps netConn. Responses larger than maxResponseSize bytes are
// rejected, zero disables the check.
func NewConn(netConn net.Conn, maxResponseSize uint64) *Conn {
	return &Conn{Conn: netConn, limit: maxResponseSize}
}

// RoundTrip sends names and reads the response into buf.
//
// The context deadline bounds the whole exchange, and cancelling ctx aborts
// blocked reads and writes. After any error the connection must be closed.
func (c *Conn) RoundTrip(ctx context.Context, buf *info.Buffer, names ...string) error {
	if ctx.Err() != nil {
		return &info.ConnectionError{Op: "round-trip", Err: context.Cause(ctx)}
	}

	// Set deadline based on context
	deadline, _ := ctx.Deadline()
	if err := c.SetDeadline(deadline); err != nil {
		return &info.ConnectionError{Op: "deadline", Err: err}
	}

	stop := context.AfterFunc(ctx, func() {
		// Unblock pending I/O
		_ = c.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	err := info.RoundTrip(c, buf, c.limit, names...)
	if err != nil && ctx.Err() != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		// Report the cancellation rather than the forced deadline
		return &info.ConnectionError{Op: "round-trip", Err: context.Cause(ctx)}
	}
	return err
}
