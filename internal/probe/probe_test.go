package probe

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestTCPCheckReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	p := TCP{Timeout: time.Second}
	if !p.Check(context.Background(), "127.0.0.1", port) {
		t.Fatal("expected a live listener to be reachable")
	}
}

func TestTCPCheckUnreachable(t *testing.T) {
	// Grab a free port, then close it so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	p := TCP{Timeout: 500 * time.Millisecond}
	if p.Check(context.Background(), "127.0.0.1", port) {
		t.Fatal("expected a closed port to be unreachable")
	}
}

func TestTCPCheckCancelledContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if (TCP{}).Check(ctx, "127.0.0.1", port) {
		t.Fatal("a cancelled context must read as unreachable")
	}
}

func TestFuncAdapter(t *testing.T) {
	calls := 0
	f := Func(func(ctx context.Context, host string, port int) bool {
		calls++
		return port == 8080
	})
	if !f.Check(context.Background(), "localhost", 8080) {
		t.Error("expected true for port 8080")
	}
	if f.Check(context.Background(), "localhost", 9090) {
		t.Error("expected false for port 9090")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}
