package testutils

import (
	"io"
	"net"
	"strings"
	"testing"

	"github.com/pior/asinfo/info"
)

// StartInfoServer serves info requests from values on a local listener and
// returns its address. Unknown names are left out of the response and an
// empty request returns every value.
func StartInfoServer(tb testing.TB, values map[string]string) string {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("Failed to start info server: %v", err)
	}
	tb.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveInfo(conn, values)
		}
	}()

	return ln.Addr().String()
}

func serveInfo(conn net.Conn, values map[string]string) {
	defer conn.Close()

	header := make([]byte, info.HeaderSize)
	if _, err := io.ReadFull(conn, header); err != nil {
		return
	}
	payload := make([]byte, info.DecodeHeader(header).Length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return
	}

	var names []string
	if len(payload) == 0 {
		for name := range values {
			names = append(names, name)
		}
	} else {
		names = strings.Split(strings.TrimSuffix(string(payload), "\n"), "\n")
	}

	var body strings.Builder
	for _, name := range names {
		if value, ok := values[name]; ok {
			body.WriteString(name + "\t" + value + "\n")
		}
	}

	frame := make([]byte, info.HeaderSize+body.Len())
	if err := info.PutHeader(frame, uint64(body.Len())); err != nil {
		return
	}
	copy(frame[info.HeaderSize:], body.String())
	_, _ = conn.Write(frame)
}
