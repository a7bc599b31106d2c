package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Pool owns one live connection per configured tool server. Lookup is
// case-insensitive. A connection found dead (closed after a cancelled round
// trip, or failing the list_tools probe) is recreated once; a second failure
// surfaces to the caller.
type Pool struct {
	mu      sync.Mutex
	servers map[string]ServerConfig
	clients map[string]*client
}

func NewPool(servers []ServerConfig) *Pool {
	byName := make(map[string]ServerConfig, len(servers))
	for _, s := range servers {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Command) == "" {
			continue
		}
		byName[strings.ToLower(s.Name)] = s
	}
	return &Pool{
		servers: byName,
		clients: make(map[string]*client),
	}
}

// Servers returns the configured servers in no particular order.
func (p *Pool) Servers() []ServerConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ServerConfig, 0, len(p.servers))
	for _, s := range p.servers {
		out = append(out, s)
	}
	return out
}

// ListTools queries a server's advertised tools, connecting on demand.
func (p *Pool) ListTools(ctx context.Context, server string) ([]Tool, error) {
	cli, err := p.acquire(ctx, server)
	if err != nil {
		return nil, err
	}
	return cli.listTools(ctx)
}

// CallTool invokes one tool and returns its plain-text result.
func (p *Pool) CallTool(ctx context.Context, server, tool string, args json.RawMessage) (string, error) {
	cli, err := p.acquire(ctx, server)
	if err != nil {
		return "", err
	}
	return cli.callTool(ctx, tool, args)
}

// acquire returns a live client for the server, reusing the pooled one when
// its probe succeeds and respawning the process once when it does not.
func (p *Pool) acquire(ctx context.Context, server string) (*client, error) {
	key := strings.ToLower(strings.TrimSpace(server))

	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, ok := p.servers[key]
	if !ok {
		return nil, fmt.Errorf("unknown tool server %q", server)
	}

	if cli, exists := p.clients[key]; exists {
		if cli.alive() {
			if _, probeErr := cli.listTools(ctx); probeErr == nil {
				return cli, nil
			}
		}
		cli.close()
		delete(p.clients, key)
	}

	cli, err := startClient(cfg)
	if err != nil {
		return nil, err
	}
	p.clients[key] = cli
	return cli, nil
}

// Close terminates every pooled server process.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, cli := range p.clients {
		cli.close()
		delete(p.clients, key)
	}
}
