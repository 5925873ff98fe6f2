package ledger

import "sync"

// requestGuard implements last-request-wins per view scope: every fetch takes
// a generation token, and results from a superseded generation are discarded
// so a slow response cannot overwrite a newer one.
type requestGuard struct {
	mu  sync.Mutex
	gen map[string]uint64
}

func newRequestGuard() *requestGuard {
	return &requestGuard{gen: make(map[string]uint64)}
}

// begin registers a new request for the scope and returns its token.
func (g *requestGuard) begin(scope string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen[scope]++
	return g.gen[scope]
}

// isCurrent reports whether the token still belongs to the newest request.
func (g *requestGuard) isCurrent(scope string, token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[scope] == token
}
