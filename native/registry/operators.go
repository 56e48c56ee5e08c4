package registry

import "sync"

// Operators is the trusted operator registry consulted during authorization
// checks. An approved operator may act on every token of the owner without a
// per-token approval. This is a coarse legacy marketplace-delegation bypass;
// it is kept behind this interface so deployments can disable or replace it
// without touching the engines.
type Operators interface {
	IsApprovedForAll(owner, operator [20]byte) bool
}

// DisabledOperators rejects every operator query.
type DisabledOperators struct{}

// IsApprovedForAll implements the Operators interface.
func (DisabledOperators) IsApprovedForAll(owner, operator [20]byte) bool { return false }

// ProxyRegistry is an in-memory operator registry. Entries are managed out of
// band by the platform operator.
type ProxyRegistry struct {
	mu      sync.RWMutex
	proxies map[[20]byte]map[[20]byte]bool
}

// NewProxyRegistry constructs an empty proxy registry.
func NewProxyRegistry() *ProxyRegistry {
	return &ProxyRegistry{proxies: make(map[[20]byte]map[[20]byte]bool)}
}

// SetProxy grants or revokes operator rights over every token of the owner.
func (p *ProxyRegistry) SetProxy(owner, operator [20]byte, approved bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if approved {
		if p.proxies[owner] == nil {
			p.proxies[owner] = make(map[[20]byte]bool)
		}
		p.proxies[owner][operator] = true
		return
	}
	delete(p.proxies[owner], operator)
}

// IsApprovedForAll implements the Operators interface.
func (p *ProxyRegistry) IsApprovedForAll(owner, operator [20]byte) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.proxies[owner][operator]
}
