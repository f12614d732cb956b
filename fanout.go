package asinfo

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// NodeResult is the outcome of one node's round-trip in a broadcast.
type NodeResult struct {
	Addr   string
	Values map[string]string // nil when Err is set
	Err    error
}

// Broadcast asks every node of the server list for names, with no names
// meaning the default set. Nodes are queried concurrently, at most
// Config.MaxConcurrency at a time, each with its own connection and buffer.
//
// Results are returned in server list order. A failing node never cancels
// the others: its error is reported in its NodeResult.
func (c *Client) Broadcast(ctx context.Context, names ...string) []NodeResult {
	addrs := c.servers.List()
	results := make([]NodeResult, len(addrs))

	var g errgroup.Group
	g.SetLimit(c.maxConcurrency)

	for i, addr := range addrs {
		g.Go(func() error {
			values, err := c.Node(addr).RequestMany(ctx, names...)
			results[i] = NodeResult{Addr: addr, Values: values, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// BroadcastFunc runs Broadcast in the background and calls done once with
// all results.
func (c *Client) BroadcastFunc(ctx context.Context, names []string, done func([]NodeResult)) {
	go func() {
		done(c.Broadcast(ctx, names...))
	}()
}

// JoinErrors returns the errors of failed nodes joined together, each
// prefixed with the node address, or nil when every node succeeded.
func JoinErrors(results []NodeResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Addr, r.Err))
		}
	}
	return errors.Join(errs...)
}
