package asinfo

import (
	"github.com/zeebo/xxh3"
)

// SelectServerFunc picks which node serves a request.
// It receives the routing key (the first requested name, or "" for a
// default request) and the current list of node addresses.
type SelectServerFunc func(key string, servers []string) (string, error)

// DefaultSelectServer uses Jump Hash over xxh3 for consistent node selection.
// The same name is always asked to the same node while the list is stable,
// and few names move when nodes are added or removed.
// Returns ErrNoServers for an empty list.
func DefaultSelectServer(key string, servers []string) (string, error) {
	switch len(servers) {
	case 0:
		return "", ErrNoServers
	case 1:
		return servers[0], nil
	}
	return servers[jumpBucket(xxh3.HashString(key), len(servers))], nil
}

// jumpBucket maps key to a bucket in [0, n) with Jump consistent hashing
// (https://arxiv.org/abs/1406.2294). n must be positive.
func jumpBucket(key uint64, n int) int {
	b, j := int64(-1), int64(0)
	for j < int64(n) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(1<<31) / float64((key>>33)+1)))
	}
	return int(b)
}
