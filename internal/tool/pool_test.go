package tool

import (
	"context"
	"testing"
	"time"
)

// Answers list_tools immediately and stalls on everything else, standing in
// for a tool server that is slower than the caller's deadline.
const slowServerScript = `while read line; do
  case "$line" in
    *list_tools*) printf '{"tools":[{"name":"wait"}]}\n' ;;
    *) sleep 5; printf '{"content":"late"}\n' ;;
  esac
done`

func TestCancelledCallClosesConnection(t *testing.T) {
	pool := NewPool([]ServerConfig{{Name: "slow", Command: "sh", Args: []string{"-c", slowServerScript}}})
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := pool.CallTool(ctx, "slow", "wait", nil); err == nil {
		t.Fatal("call past the deadline should fail")
	}

	pool.mu.Lock()
	stale := pool.clients["slow"]
	pool.mu.Unlock()
	if stale == nil {
		t.Fatal("pool should still track the server")
	}
	if stale.alive() {
		t.Fatal("a cancelled round trip must close the connection")
	}

	// The next operation gets a fresh process instead of the poisoned pipe,
	// so the stalled server's late reply can never answer it.
	tools, err := pool.ListTools(context.Background(), "slow")
	if err != nil {
		t.Fatalf("list tools after respawn: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "wait" {
		t.Fatalf("tools = %+v", tools)
	}

	pool.mu.Lock()
	fresh := pool.clients["slow"]
	pool.mu.Unlock()
	if fresh == stale {
		t.Fatal("pool reused the closed connection")
	}
}

func TestRoundTripOnClosedConnectionFailsFast(t *testing.T) {
	cli, err := startClient(ServerConfig{Name: "slow", Command: "sh", Args: []string{"-c", slowServerScript}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cli.close()

	start := time.Now()
	if _, err := cli.listTools(context.Background()); err == nil {
		t.Fatal("closed connection should refuse requests")
	}
	if time.Since(start) > time.Second {
		t.Error("closed connection should fail without touching the pipe")
	}
}

func TestCallToolUnknownServer(t *testing.T) {
	pool := NewPool(nil)
	if _, err := pool.CallTool(context.Background(), "nope", "x", nil); err == nil {
		t.Fatal("unknown server should fail")
	}
}
