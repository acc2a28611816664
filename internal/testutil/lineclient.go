// Package testutil provides test helpers for exercising the arena host
// over a real TCP connection.
package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// LineClient is a plain line-protocol test client for the arena host.
type LineClient struct {
	conn net.Conn
	t    *testing.T
}

// Dial connects to the given address and returns a test client.
//
// Precondition: addr must be a "host:port" string with a listening server.
// Postcondition: Returns a connected LineClient or fails the test.
func Dial(t *testing.T, addr string) *LineClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return &LineClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears in the accumulated output or the
// timeout expires, returning everything read.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns output containing substr, or fails the test.
func (c *LineClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	var buf strings.Builder
	tmp := make([]byte, 1024)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
			if strings.Contains(buf.String(), substr) {
				return buf.String()
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, buf.String(), err)
		}
	}
}

// Send writes one line to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
func (c *LineClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *LineClient) Close() {
	c.conn.Close()
}
