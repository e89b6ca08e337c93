package pmsensor

import (
	"context"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/x/logx"
)

// RetryPolicy governs the sleep handshake. An incorrect response means a
// data frame raced the acknowledgement, so the command is simply reissued
// with no backoff. Any other failure is logged once and the attempt dropped;
// the next wake resynchronises the sensor.
type RetryPolicy struct {
	// Retryable classifies errors. Nil means errcode.IncorrectResponse only.
	Retryable func(error) bool
	Log       logx.Logger
}

// Do runs op until it succeeds, fails with a non-retryable error, or ctx ends.
// It returns the number of attempts made.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) (int, error) {
	retryable := p.Retryable
	if retryable == nil {
		retryable = func(err error) bool { return errcode.Is(err, errcode.IncorrectResponse) }
	}
	log := p.Log
	if log == nil {
		log = logx.Nop()
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}
		attempts++
		err := op(ctx)
		if err == nil {
			return attempts, nil
		}
		if !retryable(err) {
			log.Warn("sleep handshake abandoned", "attempts", attempts, "code", errcode.Of(err), "err", err)
			return attempts, err
		}
		log.Debug("sleep handshake raced a data frame", "attempt", attempts)
	}
}
