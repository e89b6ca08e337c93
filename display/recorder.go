package display

import "sync"

// Op is one recorded Text call.
type Op struct {
	X, Y  int16
	Text  string
	Font  Font
	Color Color
}

// Recorder is an in-memory Canvas. The last flushed frame is kept for
// inspection; it stands in for the panel on the host.
type Recorder struct {
	mu      sync.Mutex
	awake   bool
	pending []Op
	frame   []Op
	flushes int

	// Optional failure injection.
	FailWake  error
	FailFlush error

	// OnFlush, if set, sees every flushed frame.
	OnFlush func(frame []Op)
}

func (r *Recorder) Wake() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWake != nil {
		return r.FailWake
	}
	r.awake = true
	return nil
}

func (r *Recorder) Sleep() error {
	r.mu.Lock()
	r.awake = false
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	r.pending = r.pending[:0]
	r.mu.Unlock()
}

func (r *Recorder) Text(x, y int16, s string, f Font, c Color) {
	r.mu.Lock()
	r.pending = append(r.pending, Op{X: x, Y: y, Text: s, Font: f, Color: c})
	r.mu.Unlock()
}

func (r *Recorder) Flush() error {
	r.mu.Lock()
	if r.FailFlush != nil {
		r.mu.Unlock()
		return r.FailFlush
	}
	r.frame = append(r.frame[:0:0], r.pending...)
	r.flushes++
	frame, cb := r.frame, r.OnFlush
	r.mu.Unlock()
	if cb != nil {
		cb(frame)
	}
	return nil
}

// Frame returns a copy of the last flushed frame.
func (r *Recorder) Frame() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.frame...)
}

// Flushes counts successful Flush calls.
func (r *Recorder) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// Awake reports whether Wake was called more recently than Sleep.
func (r *Recorder) Awake() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.awake
}
