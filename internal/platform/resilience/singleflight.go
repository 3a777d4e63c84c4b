package resilience

import "sync"

// SingleFlight deduplicates concurrent calls for the same key.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	wg  sync.WaitGroup
	val any
	err error
}

// Do runs fn once per key; concurrent callers wait for and share the result.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}

	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := g.begin(key)
	g.mu.Unlock()

	g.finish(key, c, fn)
	return c.val, c.err, false
}

// TryDo runs fn only when no call for key is in flight. When one is, it
// returns immediately with acquired=false and does not wait.
func (g *SingleFlight) TryDo(key string, fn func() (any, error)) (val any, err error, acquired bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}
	if _, ok := g.calls[key]; ok {
		g.mu.Unlock()
		return nil, nil, false
	}

	c := g.begin(key)
	g.mu.Unlock()

	g.finish(key, c, fn)
	return c.val, c.err, true
}

// InFlight reports whether a call for key is currently running.
func (g *SingleFlight) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.calls[key]
	return ok
}

// begin must be called with g.mu held.
func (g *SingleFlight) begin(key string) *call {
	c := &call{}
	c.wg.Add(1)
	g.calls[key] = c
	return c
}

func (g *SingleFlight) finish(key string, c *call, fn func() (any, error)) {
	defer func() {
		c.wg.Done()
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
	}()
	c.val, c.err = fn()
}
