package asinfo

import (
	"errors"
	"slices"
)

// ErrNoServers is returned when no node is available to serve a request.
var ErrNoServers = errors.New("asinfo: no servers available")

// Servers provides the current list of node addresses.
// Implementations must be safe for concurrent use.
type Servers interface {
	List() []string
}

type staticServers struct {
	addresses []string
}

// NewStaticServers returns a fixed list of node addresses (host:port).
func NewStaticServers(addresses ...string) Servers {
	return &staticServers{addresses: slices.Clone(addresses)}
}

func (s *staticServers) List() []string {
	return s.addresses
}
