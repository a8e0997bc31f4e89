package store

import "sync"

// gateMap serializes read-modify-write operations on a shared scope.
// Progress and note updates gate on "goal:<id>", goal reorders on
// "tab:<id>", tab reorders on "tabs". Operations on distinct scopes run
// concurrently; two operations on the same scope queue behind each other
// instead of losing updates.
type gateMap struct {
	mu    sync.Mutex
	gates map[string]*gateEntry
}

type gateEntry struct {
	mu   sync.Mutex
	refs int
}

func newGateMap() *gateMap {
	return &gateMap{gates: make(map[string]*gateEntry)}
}

func (g *gateMap) lock(scope string) {
	g.mu.Lock()
	e, ok := g.gates[scope]
	if !ok {
		e = &gateEntry{}
		g.gates[scope] = e
	}
	e.refs++
	g.mu.Unlock()

	e.mu.Lock()
}

func (g *gateMap) unlock(scope string) {
	g.mu.Lock()
	e := g.gates[scope]
	e.refs--
	if e.refs == 0 {
		delete(g.gates, scope)
	}
	g.mu.Unlock()

	e.mu.Unlock()
}
