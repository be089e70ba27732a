package facilitator

import "sync"

// Pool reuses one Client per facilitator URL so concurrent verifications
// share pooled connections instead of redialing per request.
type Pool struct {
	mu      sync.Mutex
	clients map[string]*Client
	opts    []Option
}

// NewPool creates a pool whose clients are built with opts.
func NewPool(opts ...Option) *Pool {
	return &Pool{
		clients: make(map[string]*Client),
		opts:    opts,
	}
}

// Get returns the shared client for url, creating it on first use.
func (p *Pool) Get(url string) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[url]; ok {
		return client, nil
	}
	client, err := NewClient(url, p.opts...)
	if err != nil {
		return nil, err
	}
	p.clients[url] = client
	return client, nil
}
