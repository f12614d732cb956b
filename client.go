package asinfo

import (
	"cmp"
	"context"
	"log/slog"
	"net"
	"slices"
	"time"

	"github.com/pior/asinfo/info"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultTimeout bounds dial and I/O of a request whose context has no
	// deadline.
	DefaultTimeout = 2 * time.Second

	// DefaultInitialBufferSize is the capacity of a newly created buffer.
	DefaultInitialBufferSize = 8 * 1024

	// DefaultMaxBuffers is the maximum number of pooled buffers, which is
	// also the maximum number of requests in flight.
	DefaultMaxBuffers = 64

	// DefaultMaxResponseSize is the largest accepted response payload.
	DefaultMaxResponseSize = 64 << 20

	// DefaultMaxConcurrency is the number of nodes a broadcast talks to at
	// once.
	DefaultMaxConcurrency = 8
)

// Config holds configuration for the info client.
// The zero value is valid and uses the defaults above.
type Config struct {
	// Timeout bounds dial and I/O when the request context has no deadline.
	// Zero means DefaultTimeout, negative disables it.
	Timeout time.Duration

	// Dialer is the net.Dialer used to create connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// InitialBufferSize is the capacity of newly created buffers.
	// Buffers grow as needed and keep their capacity when reused.
	InitialBufferSize int

	// MaxBuffers is the maximum number of pooled buffers.
	// Requests wait for a free buffer once this many are in flight.
	MaxBuffers int32

	// MaxResponseSize is the largest response payload accepted, in bytes.
	// Zero means DefaultMaxResponseSize, negative disables the check.
	MaxResponseSize int64

	// BufferPool is the buffer pool factory function.
	// If nil, uses the channel-based pool. Alternative: asinfo.NewPuddlePool
	BufferPool BufferPoolFactory

	// SelectServer picks which node serves a request.
	// If nil, uses DefaultSelectServer (Jump Hash).
	SelectServer SelectServerFunc

	// NewCircuitBreaker creates a circuit breaker for a node.
	// Called once per node address, the first time the node is used.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(addr string) *gobreaker.CircuitBreaker[int]

	// MaxConcurrency is the number of nodes Broadcast queries at once.
	MaxConcurrency int

	// Logger receives request logs. If nil, slog.Default() is used.
	Logger *slog.Logger

	// for testing purposes only
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

// Client sends info requests to a set of nodes.
// A Client is safe for concurrent use.
type Client struct {
	servers      Servers
	selectServer SelectServerFunc

	timeout           time.Duration
	maxResponseSize   uint64
	maxConcurrency    int
	dial              func(ctx context.Context, network, addr string) (net.Conn, error)
	newCircuitBreaker func(addr string) *gobreaker.CircuitBreaker[int]

	pool  BufferPool
	nodes *xsync.MapOf[string, *Node]

	logger *slog.Logger
	stats  *clientStatsCollector
}

// NewClient creates a new info client with the given servers and configuration.
// For a single node, use: NewClient(NewStaticServers("host:3000"), Config{})
func NewClient(servers Servers, config Config) (*Client, error) {
	if len(servers.List()) == 0 {
		return nil, ErrNoServers
	}

	client := &Client{
		servers:           servers,
		selectServer:      config.SelectServer,
		timeout:           cmp.Or(config.Timeout, DefaultTimeout),
		maxConcurrency:    cmp.Or(config.MaxConcurrency, DefaultMaxConcurrency),
		dial:              config.dial,
		newCircuitBreaker: config.NewCircuitBreaker,
		nodes:             xsync.NewMapOf[string, *Node](),
		logger:            cmp.Or(config.Logger, slog.Default()),
		stats:             newClientStatsCollector(),
	}

	if client.selectServer == nil {
		client.selectServer = DefaultSelectServer
	}

	if config.MaxResponseSize >= 0 {
		client.maxResponseSize = uint64(cmp.Or(config.MaxResponseSize, DefaultMaxResponseSize))
	}

	if client.dial == nil {
		dialer := config.Dialer
		if dialer == nil {
			dialer = &net.Dialer{}
		}
		client.dial = dialer.DialContext
	}

	initialSize := cmp.Or(config.InitialBufferSize, DefaultInitialBufferSize)
	constructor := func(context.Context) (*info.Buffer, error) {
		return info.NewBuffer(initialSize), nil
	}

	poolFactory := config.BufferPool
	if poolFactory == nil {
		poolFactory = NewChannelPool
	}

	pool, err := poolFactory(constructor, cmp.Or(config.MaxBuffers, DefaultMaxBuffers))
	if err != nil {
		return nil, err
	}
	client.pool = pool

	return client, nil
}

// Close closes the buffer pool. Requests in flight complete normally,
// later requests fail with ErrPoolClosed.
func (c *Client) Close() {
	c.pool.Close()
}

// Node returns the node at addr. The address does not need to be part of
// the client's server list.
func (c *Client) Node(addr string) *Node {
	node, _ := c.nodes.LoadOrCompute(addr, func() *Node {
		n := &Node{addr: addr, client: c}
		if c.newCircuitBreaker != nil {
			n.circuitBreaker = c.newCircuitBreaker(addr)
		}
		return n
	})
	return node
}

// nodeFor picks the node serving key.
func (c *Client) nodeFor(key string) (*Node, error) {
	addr, err := c.selectServer(key, c.servers.List())
	if err != nil {
		c.stats.recordError()
		return nil, err
	}
	return c.Node(addr), nil
}

// withTimeout applies the client timeout to contexts without a deadline.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.timeout < 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// RequestOne asks for a single name and returns its value.
// An empty string means the node returned the name without a value.
func (c *Client) RequestOne(ctx context.Context, name string) (string, error) {
	node, err := c.nodeFor(name)
	if err != nil {
		return "", err
	}
	return node.RequestOne(ctx, name)
}

// RequestMany asks for several names in a single round-trip.
// The node is chosen by the first name.
func (c *Client) RequestMany(ctx context.Context, names ...string) (map[string]string, error) {
	var key string
	if len(names) > 0 {
		key = names[0]
	}

	node, err := c.nodeFor(key)
	if err != nil {
		return nil, err
	}
	return node.RequestMany(ctx, names...)
}

// RequestDefault asks a node for its default set of names and values.
func (c *Client) RequestDefault(ctx context.Context) (map[string]string, error) {
	node, err := c.nodeFor("")
	if err != nil {
		return nil, err
	}
	return node.RequestDefault(ctx)
}

// RequestValues asks for a single name whose value is a list of name/value
// pairs, and calls fn for each pair until fn returns false.
// The slices passed to fn are only valid during the call.
func (c *Client) RequestValues(ctx context.Context, name string, fn func(name, value []byte) bool) error {
	node, err := c.nodeFor(name)
	if err != nil {
		return err
	}
	return node.RequestValues(ctx, name, fn)
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// PoolStats returns a snapshot of buffer pool statistics.
func (c *Client) PoolStats() PoolStats {
	return c.pool.Stats()
}

// NodeStats returns stats for every node used so far, sorted by address.
func (c *Client) NodeStats() []NodeStats {
	stats := make([]NodeStats, 0, c.nodes.Size())
	c.nodes.Range(func(_ string, n *Node) bool {
		stats = append(stats, n.Stats())
		return true
	})
	slices.SortFunc(stats, func(a, b NodeStats) int {
		return cmp.Compare(a.Addr, b.Addr)
	})
	return stats
}
