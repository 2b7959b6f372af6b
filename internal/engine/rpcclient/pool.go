package rpcclient

import (
	"net/http"
	"sync"
	"time"
)

// transportPool manages one keep-alive-enabled *http.Client per endpoint,
// reused across every call issued against that endpoint so TCP/TLS setup
// doesn't dominate the measured latency (spec.md §4.3). Adapted from the
// teacher's internal/rpc/pool.go ClientPool, keyed by endpoint URL instead
// of provider name, with the same double-checked-locking shape.
type transportPool struct {
	mu      sync.RWMutex
	clients map[string]*http.Client
}

func newTransportPool() *transportPool {
	return &transportPool{clients: make(map[string]*http.Client)}
}

func (p *transportPool) get(endpoint string) *http.Client {
	p.mu.RLock()
	if c, ok := p.clients[endpoint]; ok {
		p.mu.RUnlock()
		return c
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[endpoint]; ok {
		return c
	}

	c := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        256,
			MaxIdleConnsPerHost: 256,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	p.clients[endpoint] = c
	return c
}

func (p *transportPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		c.CloseIdleConnections()
	}
}
