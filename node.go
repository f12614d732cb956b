package asinfo

import (
	"context"
	"errors"
	"time"

	"github.com/pior/asinfo/info"
	"github.com/sony/gobreaker/v2"
)

// Node sends info requests to a single node. Every request dials a new
// connection, runs one round-trip and closes it.
//
// Nodes are obtained with Client.Node and share the client's buffer pool,
// stats and logger. A Node is safe for concurrent use.
type Node struct {
	addr           string
	client         *Client
	circuitBreaker *gobreaker.CircuitBreaker[int] // nil if not configured
}

// Addr returns the node address.
func (n *Node) Addr() string {
	return n.addr
}

// Stats returns the node circuit breaker state.
func (n *Node) Stats() NodeStats {
	stats := NodeStats{Addr: n.addr}
	if n.circuitBreaker != nil {
		stats.CircuitBreakerState = n.circuitBreaker.State()
		stats.CircuitBreakerCounts = n.circuitBreaker.Counts()
	}
	return stats
}

// RequestOne asks the node for a single name and returns its value.
// An empty string means the node returned the name without a value.
func (n *Node) RequestOne(ctx context.Context, name string) (string, error) {
	var value string
	err := n.execute(ctx, []string{name}, func(payload []byte) error {
		var err error
		value, err = info.ParseSingle(payload, name)
		return err
	})
	return value, err
}

// RequestMany asks the node for several names in a single round-trip.
// Names the node does not know are usually absent from the result.
func (n *Node) RequestMany(ctx context.Context, names ...string) (map[string]string, error) {
	var values map[string]string
	err := n.execute(ctx, names, func(payload []byte) error {
		values = info.ParseMulti(payload)
		return nil
	})
	return values, err
}

// RequestDefault asks the node for its default set of names and values.
func (n *Node) RequestDefault(ctx context.Context) (map[string]string, error) {
	return n.RequestMany(ctx)
}

// RequestValues asks the node for a single name whose value is a list of
// name/value pairs, and calls fn for each pair until fn returns false.
//
// The slices passed to fn point into a pooled buffer and are only valid
// during the call.
func (n *Node) RequestValues(ctx context.Context, name string, fn func(name, value []byte) bool) error {
	return n.execute(ctx, []string{name}, func(payload []byte) error {
		p, err := info.ValueCursor(payload, name)
		if err != nil {
			return err
		}
		for p.Next() {
			if !fn(p.NameBytes(), p.ValueBytes()) {
				break
			}
		}
		return nil
	})
}

// execute runs one request with a pooled buffer and hands the response
// payload to parse. The payload is only valid during parse.
func (n *Node) execute(ctx context.Context, names []string, parse func(payload []byte) error) error {
	c := n.client
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.stats.recordRequest()
	start := time.Now()

	err := withBuffer(ctx, c.pool, func(buf *info.Buffer) error {
		grows := buf.Grows()
		err := n.roundTrip(ctx, buf, names)
		c.stats.recordGrowths(buf.Grows() - grows)
		if err != nil {
			return err
		}

		c.stats.recordTransfer(info.EstimateRequestSize(names...), buf.Len())
		c.logger.DebugContext(ctx, "info round-trip",
			"addr", n.addr,
			"names", names,
			"received", buf.Len(),
			"duration", time.Since(start),
		)
		return parse(buf.Bytes())
	})

	if err != nil {
		n.recordError(ctx, names, err)
		return err
	}
	return nil
}

func (n *Node) recordError(ctx context.Context, names []string, err error) {
	c := n.client

	var parseErr *info.ParseError
	switch {
	case errors.As(err, &parseErr):
		c.stats.recordParseError()
		c.logger.WarnContext(ctx, "info response mismatch", "addr", n.addr, "names", names, "error", err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.stats.recordBreakerRejection()
		c.logger.DebugContext(ctx, "info request rejected by circuit breaker", "addr", n.addr, "error", err)
	default:
		c.stats.recordError()
		c.logger.WarnContext(ctx, "info request failed", "addr", n.addr, "names", names, "error", err)
	}
}

// roundTrip dials the node and runs the exchange, through the circuit
// breaker when one is configured. Parsing happens outside the breaker so
// that only transport failures count against the node.
func (n *Node) roundTrip(ctx context.Context, buf *info.Buffer, names []string) error {
	if n.circuitBreaker == nil {
		return n.roundTripDirect(ctx, buf, names)
	}

	_, err := n.circuitBreaker.Execute(func() (int, error) {
		err := n.roundTripDirect(ctx, buf, names)
		return buf.Len(), err
	})
	return err
}

func (n *Node) roundTripDirect(ctx context.Context, buf *info.Buffer, names []string) error {
	netConn, err := n.client.dial(ctx, "tcp", n.addr)
	if err != nil {
		return &info.ConnectionError{Op: "dial", Err: err}
	}

	conn := NewConn(netConn, n.client.maxResponseSize)
	defer conn.Close()

	return conn.RoundTrip(ctx, buf, names...)
}

// isBreakerSuccess reports whether an outcome should not count as a node
// failure. A caller giving up is not the node's fault.
func isBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
