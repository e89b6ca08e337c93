package heartbeat

import (
	"context"
	"sync"
	"testing"
	"time"

	"atmo-monitor-go/services/refresh"
	"atmo-monitor-go/x/logx"
)

type captureLog struct {
	mu    sync.Mutex
	lines []string
	kv    [][]any
}

func (c *captureLog) add(msg string, kv []any) {
	c.mu.Lock()
	c.lines = append(c.lines, msg)
	c.kv = append(c.kv, kv)
	c.mu.Unlock()
}

func (c *captureLog) Debug(msg string, kv ...any) { c.add(msg, kv) }
func (c *captureLog) Info(msg string, kv ...any)  { c.add(msg, kv) }
func (c *captureLog) Warn(msg string, kv ...any)  { c.add(msg, kv) }
func (c *captureLog) Error(msg string, kv ...any) { c.add(msg, kv) }
func (c *captureLog) With(kv ...any) logx.Logger  { return c }

func (c *captureLog) count(msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		if l == msg {
			n++
		}
	}
	return n
}

func TestHeartbeatLogsCounters(t *testing.T) {
	var counters refresh.Counters
	counters.CycleStarted(1)
	log := &captureLog{}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(&counters, 5*time.Millisecond, log)
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for log.count("heartbeat") < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-s.Done()

	if n := log.count("heartbeat"); n < 2 {
		t.Fatalf("heartbeats = %d, want >= 2", n)
	}
	log.mu.Lock()
	kv := log.kv[0]
	log.mu.Unlock()
	if kv[0] != "cycles" || kv[1] != uint32(1) {
		t.Fatalf("first kv = %v", kv[:2])
	}
	if log.count("heartbeat stopping") != 1 {
		t.Fatal("missing stop line")
	}
}
