// Package probe answers one question: does anything accept TCP
// connections at host:port right now. It sends no bytes; a successful
// connect followed by an immediate close counts as reachable.
package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds one connect attempt when no timeout is set.
const DefaultTimeout = 2 * time.Second

// TCP is the production prober. The zero value is usable.
type TCP struct {
	Timeout time.Duration
}

// Check reports whether host:port accepted a connection within the
// timeout. The context can cut the attempt short; any failure, refused
// or timed out or cancelled, reads as unreachable.
func (p TCP) Check(ctx context.Context, host string, port int) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Func adapts a plain function to the prober seam, for tests and for
// callers that already know the answer.
type Func func(ctx context.Context, host string, port int) bool

func (f Func) Check(ctx context.Context, host string, port int) bool {
	return f(ctx, host, port)
}
