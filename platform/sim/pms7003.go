package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"atmo-monitor-go/drivers/pms7003"
	"atmo-monitor-go/x/mathx"
)

var _ pms7003.Port = (*PMS7003)(nil)

const (
	cmdSleepWake = 0xE4
	railPoll     = 50 * time.Millisecond
)

// PMS7003 simulates the sensor's serial stream. While powered and awake it
// emits one data frame per Period; a sleep command is acknowledged and stops
// the stream, wake restarts it. Power comes from an optional rail.
type PMS7003 struct {
	Period time.Duration

	mu    sync.Mutex
	rx    []byte
	awake bool
	next  time.Time
	rng   *rand.Rand
	pm25  float64
	rail  *Pin
	wasOn bool
	kick  chan struct{}
	frame [pms7003.FrameLen]byte

	raceSleeps int
	corrupt    int
	silent     bool
	sleeps     int
	wakes      int
}

// NewPMS7003 creates a sensor that is awake whenever rail is high (always,
// if rail is nil).
func NewPMS7003(seed int64, rail *Pin) *PMS7003 {
	return &PMS7003{
		Period: time.Second,
		awake:  true,
		rng:    rand.New(rand.NewSource(seed)),
		pm25:   12,
		rail:   rail,
		kick:   make(chan struct{}, 1),
	}
}

// RaceSleeps answers the next n sleep commands with a data frame instead of
// the acknowledgement.
func (s *PMS7003) RaceSleeps(n int) {
	s.mu.Lock()
	s.raceSleeps = n
	s.mu.Unlock()
}

// CorruptNext breaks the checksum of the next n frames.
func (s *PMS7003) CorruptNext(n int) {
	s.mu.Lock()
	s.corrupt = n
	s.mu.Unlock()
}

// SetSilent stops all output, as if the sensor were unplugged.
func (s *PMS7003) SetSilent(v bool) {
	s.mu.Lock()
	s.silent = v
	s.mu.Unlock()
}

// Counts returns how many sleep and wake commands were received.
func (s *PMS7003) Counts() (sleeps, wakes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sleeps, s.wakes
}

// PM25 returns the current simulated PM2.5 level.
func (s *PMS7003) PM25() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint16(s.pm25)
}

func (s *PMS7003) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(p) < 7 || p[0] != 0x42 || p[1] != 0x4D || s.silent || !s.poweredLocked() {
		return len(p), nil
	}
	if p[2] == cmdSleepWake {
		if p[4] == 0 {
			s.sleeps++
			if s.raceSleeps > 0 {
				s.raceSleeps--
				s.rx = append(s.rx, s.encodeLocked()...)
			} else {
				s.rx = append(s.rx, pms7003.SleepAck()...)
				s.awake = false
			}
		} else {
			s.wakes++
			if !s.awake {
				s.awake = true
				s.next = time.Now().Add(s.Period)
			}
		}
		s.poke()
	}
	return len(p), nil
}

func (s *PMS7003) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		s.mu.Lock()
		if len(s.rx) > 0 {
			n := copy(p, s.rx)
			s.rx = s.rx[n:]
			s.mu.Unlock()
			return n, nil
		}
		var wait <-chan time.Time
		if s.streamingLocked() {
			now := time.Now()
			if s.next.IsZero() {
				s.next = now.Add(s.Period)
			}
			if !now.Before(s.next) {
				s.rx = append(s.rx, s.encodeLocked()...)
				s.next = s.next.Add(s.Period)
				if s.next.Before(now) {
					s.next = now.Add(s.Period)
				}
				s.mu.Unlock()
				continue
			}
			wait = time.After(s.next.Sub(now))
		} else {
			wait = time.After(railPoll)
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-wait:
		case <-s.kick:
		}
	}
}

func (s *PMS7003) poke() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *PMS7003) poweredLocked() bool {
	on := s.rail == nil || s.rail.High()
	if on && !s.wasOn {
		// power-up starts in active mode
		s.awake = true
		s.next = time.Time{}
	}
	s.wasOn = on
	return on
}

func (s *PMS7003) streamingLocked() bool {
	return s.poweredLocked() && s.awake && !s.silent
}

func (s *PMS7003) encodeLocked() []byte {
	s.pm25 = mathx.Clamp(s.pm25+s.rng.NormFloat64()*1.5, 1, 300)
	v := uint16(s.pm25)
	f := pms7003.Frame{
		PM1_0:      v * 6 / 10,
		PM2_5:      v,
		PM10:       v * 13 / 10,
		PM1_0Atm:   v * 6 / 10,
		PM2_5Atm:   v,
		PM10Atm:    v * 13 / 10,
		Beyond0_3:  v * 80,
		Beyond0_5:  v * 25,
		Beyond1_0:  v * 5,
		Beyond2_5:  v / 2,
		Beyond5_0:  v / 8,
		Beyond10_0: v / 20,
	}
	pms7003.Encode(s.frame[:], f)
	if s.corrupt > 0 {
		s.corrupt--
		s.frame[pms7003.FrameLen-1] ^= 0xFF
	}
	return s.frame[:]
}
