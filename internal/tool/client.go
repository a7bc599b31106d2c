package tool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
)

// ServerConfig describes one external tool server: a command spawned once and
// kept alive, speaking newline-delimited JSON over stdin/stdout.
type ServerConfig struct {
	Name    string
	Command string
	Args    []string
	Env     []string
}

// Tool is one capability a server advertises via list_tools.
type Tool struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

type request struct {
	Op   string          `json:"op"`
	Tool string          `json:"tool,omitempty"`
	Args json.RawMessage `json:"args,omitempty"`
}

type reply struct {
	Tools   []Tool `json:"tools,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// client drives one long-lived tool-server process. Requests are serialized:
// the protocol is strict request/response on a single pipe pair.
type client struct {
	cfg     ServerConfig
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner

	mu   sync.Mutex
	dead atomic.Bool
}

func startClient(cfg ServerConfig) (*client, error) {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin for tool server %s failed: %w", cfg.Name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout for tool server %s failed: %w", cfg.Name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start tool server %s failed: %w", cfg.Name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	return &client{
		cfg:     cfg,
		cmd:     cmd,
		stdin:   stdin,
		scanner: scanner,
	}, nil
}

func (c *client) roundTrip(ctx context.Context, req request) (*reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dead.Load() {
		return nil, fmt.Errorf("tool server %s connection is closed", c.cfg.Name)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal tool request failed: %w", err)
	}
	if _, err := c.stdin.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write to tool server %s failed: %w", c.cfg.Name, err)
	}

	type scanResult struct {
		line string
		err  error
	}
	done := make(chan scanResult, 1)
	go func() {
		if !c.scanner.Scan() {
			scanErr := c.scanner.Err()
			if scanErr == nil {
				scanErr = io.EOF
			}
			done <- scanResult{err: scanErr}
			return
		}
		done <- scanResult{line: c.scanner.Text()}
	}()

	select {
	case <-ctx.Done():
		// The abandoned reader still owns the scanner and the unanswered
		// request still owns the pipe, so the connection can no longer pair
		// requests with replies. Kill the process; the pool will respawn it.
		c.close()
		return nil, fmt.Errorf("tool server %s: %w", c.cfg.Name, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("read from tool server %s failed: %w", c.cfg.Name, res.err)
		}
		var r reply
		if err := json.Unmarshal([]byte(res.line), &r); err != nil {
			return nil, fmt.Errorf("decode tool server %s reply failed: %w", c.cfg.Name, err)
		}
		return &r, nil
	}
}

func (c *client) listTools(ctx context.Context) ([]Tool, error) {
	r, err := c.roundTrip(ctx, request{Op: "list_tools"})
	if err != nil {
		return nil, err
	}
	if r.Error != "" {
		return nil, fmt.Errorf("tool server %s: %s", c.cfg.Name, r.Error)
	}
	return r.Tools, nil
}

func (c *client) callTool(ctx context.Context, tool string, args json.RawMessage) (string, error) {
	r, err := c.roundTrip(ctx, request{Op: "call_tool", Tool: tool, Args: args})
	if err != nil {
		return "", err
	}
	if r.Error != "" {
		return "", fmt.Errorf("tool %s.%s failed: %s", c.cfg.Name, tool, r.Error)
	}
	return r.Content, nil
}

func (c *client) alive() bool {
	return !c.dead.Load()
}

func (c *client) close() {
	c.dead.Store(true)
	_ = c.stdin.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	_ = c.cmd.Wait()
}
