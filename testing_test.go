package asinfo

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pior/asinfo/info"
	"github.com/stretchr/testify/require"
)

// staticSelector is used in tests to always select a specific node.
func staticSelector(index int) SelectServerFunc {
	return func(key string, servers []string) (string, error) {
		if len(servers) == 0 {
			return "", ErrNoServers
		}
		return servers[index%len(servers)], nil
	}
}

func createListener(t testing.TB, handler func(conn net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "Failed to start test server")

	t.Cleanup(func() {
		listener.Close()
	})

	// Accept connections in background
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

// readRequest reads one request frame and returns the requested names.
func readRequest(r io.Reader) ([]string, error) {
	var header [info.HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	payload := make([]byte, info.DecodeHeader(header[:]).Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	text := strings.TrimSuffix(string(payload), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// writeFrame writes payload as a response frame.
func writeFrame(w io.Writer, payload string) error {
	frame := make([]byte, info.HeaderSize+len(payload))
	if err := info.PutHeader(frame, uint64(len(payload))); err != nil {
		return err
	}
	copy(frame[info.HeaderSize:], payload)
	_, err := w.Write(frame)
	return err
}

// fakeNode answers info requests from a fixed set of values. Names it does
// not know are omitted from the response, like a real node does. An empty
// request returns every value.
type fakeNode struct {
	values   map[string]string
	defaults []string
	requests atomic.Int64
}

func newFakeNode(values map[string]string, defaults ...string) *fakeNode {
	return &fakeNode{values: values, defaults: defaults}
}

func (f *fakeNode) handle(conn net.Conn) {
	names, err := readRequest(conn)
	if err != nil {
		return
	}
	f.requests.Add(1)

	if len(names) == 0 {
		names = f.defaults
	}

	var sb strings.Builder
	for _, name := range names {
		value, ok := f.values[name]
		if !ok {
			continue
		}
		sb.WriteString(name)
		if value != "" {
			sb.WriteByte('\t')
			sb.WriteString(value)
		}
		sb.WriteByte('\n')
	}
	_ = writeFrame(conn, sb.String())
}

func (f *fakeNode) start(t testing.TB) string {
	return createListener(t, f.handle)
}

// rawResponder writes data verbatim after reading a request.
func rawResponder(data []byte) func(conn net.Conn) {
	return func(conn net.Conn) {
		if _, err := readRequest(conn); err != nil {
			return
		}
		_, _ = conn.Write(data)
	}
}

// frameHeader returns a response header declaring length payload bytes.
func frameHeader(length uint64) []byte {
	header := make([]byte, info.HeaderSize)
	binary.BigEndian.PutUint64(header, length)
	header[0], header[1] = info.ProtocolVersion, info.MessageTypeInfo
	return header
}

// silentResponder reads a request and never answers.
func silentResponder(conn net.Conn) {
	_, _ = readRequest(conn)
	time.Sleep(2 * time.Second)
}

func newTestClient(t testing.TB, config Config, addrs ...string) *Client {
	t.Helper()

	client, err := NewClient(NewStaticServers(addrs...), config)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func testContext(t testing.TB) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
