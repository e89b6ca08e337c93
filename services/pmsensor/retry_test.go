package pmsensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"atmo-monitor-go/errcode"
)

func scripted(errs ...error) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		i := calls
		calls++
		if i < len(errs) {
			return errs[i]
		}
		return nil
	}, &calls
}

func TestRetryConvergesAfterIncorrectResponses(t *testing.T) {
	op, calls := scripted(errcode.IncorrectResponse, errcode.IncorrectResponse)
	n, err := RetryPolicy{}.Do(context.Background(), op)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, *calls)
}

func TestRetryAbandonsOnOtherFaults(t *testing.T) {
	for _, fault := range []error{
		errcode.NoResponse,
		&errcode.E{C: errcode.SendFailed, Op: "pms7003.send", Err: errors.New("uart")},
		errcode.Checksum,
	} {
		op, calls := scripted(fault, nil)
		n, err := RetryPolicy{}.Do(context.Background(), op)
		assert.ErrorIs(t, err, fault)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, *calls)
	}
}

func TestRetryWrappedIncorrectResponse(t *testing.T) {
	wrapped := &errcode.E{C: errcode.IncorrectResponse, Op: "pms7003.sleep"}
	op, _ := scripted(wrapped)
	n, err := RetryPolicy{}.Do(context.Background(), op)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRetryBoundedByContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	n, err := RetryPolicy{}.Do(ctx, func(context.Context) error {
		time.Sleep(time.Millisecond)
		return errcode.IncorrectResponse
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, n, 1)
}

func TestRetryCustomClassifier(t *testing.T) {
	op, _ := scripted(errcode.NoResponse)
	n, err := RetryPolicy{Retryable: func(error) bool { return true }}.Do(context.Background(), op)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}
