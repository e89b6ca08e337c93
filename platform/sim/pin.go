package sim

import "sync"

// Pin is a simulated output line. It satisfies pmsensor.Pin and refresh.Rail.
type Pin struct {
	mu    sync.Mutex
	level bool
	edges int
}

func (p *Pin) Set(high bool) {
	p.mu.Lock()
	if p.level != high {
		p.edges++
	}
	p.level = high
	p.mu.Unlock()
}

func (p *Pin) High() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Edges counts level changes.
func (p *Pin) Edges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edges
}
