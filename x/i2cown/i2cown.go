// Package i2cown serialises access to one I²C bus through a single owner
// goroutine. Handles returned by Port satisfy drivers.I2C and may carry a
// per-call timeout, so a wedged bus surfaces as an error instead of a hang.
//
// Each call runs on buffers owned by its request. The caller's read buffer
// is filled only after the transaction completes in time; a call that gave
// up is skipped if still queued and never writes back.
package i2cown

import (
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"

	"atmo-monitor-go/errcode"
)

var _ drivers.I2C = (*Port)(nil)

// request states
const (
	queued int32 = iota
	running
	abandoned
)

type request struct {
	addr  uint16
	w, r  []byte
	state atomic.Int32
	done  chan error
}

// Owner hosts the worker goroutine for one bus.
type Owner struct {
	hw      drivers.I2C
	queue   chan *request
	quit    chan struct{}
	skipped atomic.Uint32
}

// New starts an owner over hw.
func New(hw drivers.I2C) *Owner {
	o := &Owner{
		hw:    hw,
		queue: make(chan *request, 16),
		quit:  make(chan struct{}),
	}
	go o.serve()
	return o
}

func (o *Owner) serve() {
	for {
		select {
		case rq := <-o.queue:
			if !rq.state.CompareAndSwap(queued, running) {
				o.skipped.Add(1)
				continue
			}
			rq.done <- o.hw.Tx(rq.addr, rq.w, rq.r)
		case <-o.quit:
			return
		}
	}
}

// Stop ends the worker. Pending calls without a timeout block forever.
func (o *Owner) Stop() { close(o.quit) }

// Skipped counts requests dropped because their caller had already given up.
func (o *Owner) Skipped() uint32 { return o.skipped.Load() }

// Port returns a drivers.I2C handle. timeout <= 0 means no deadline.
func (o *Owner) Port(timeout time.Duration) *Port {
	return &Port{o: o, timeout: timeout}
}

type Port struct {
	o       *Owner
	timeout time.Duration
}

func (p *Port) Tx(addr uint16, w, r []byte) error {
	rq := &request{addr: addr, done: make(chan error, 1)}
	if len(w) > 0 {
		rq.w = append([]byte(nil), w...)
	}
	if len(r) > 0 {
		rq.r = make([]byte, len(r))
	}

	var expired <-chan time.Time
	if p.timeout > 0 {
		t := time.NewTimer(p.timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case p.o.queue <- rq:
	case <-expired:
		return &errcode.E{C: errcode.Busy, Op: "i2c.tx", Msg: "queue full"}
	}
	select {
	case err := <-rq.done:
		if err == nil {
			copy(r, rq.r)
		}
		return err
	case <-expired:
		rq.state.Store(abandoned)
		return &errcode.E{C: errcode.Timeout, Op: "i2c.tx"}
	}
}
