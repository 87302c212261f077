// File: executor/idle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Idle policies. Which sleep depth a target supports is hardware
// specific, so the "enter idle" step is pluggable: the default blocks
// on the wake token (the low-power wait), the busy-poll variant spins
// with adaptive backoff for hosts where blocking is unwanted.

package executor

import (
	"context"
	"runtime"
	"time"
)

// IdlePolicy decides how the run loop waits when no task is ready.
// Park must return promptly once a token lands on wake or ctx is
// cancelled; it must tolerate stale tokens from earlier wakes.
type IdlePolicy interface {
	Park(ctx context.Context, wake <-chan struct{})
}

// BlockIdle parks on the wake token, the analogue of a wait-for-
// interrupt instruction. The default policy.
type BlockIdle struct{}

// Park implements IdlePolicy.
func (BlockIdle) Park(ctx context.Context, wake <-chan struct{}) {
	select {
	case <-wake:
	case <-ctx.Done():
	}
}

// BusyPoll degrades the idle wait to a poll loop with adaptive
// backoff: yield first, sleep once the quiet stretch grows.
type BusyPoll struct {
	// MaxBackoff caps the per-iteration sleep. Zero means 100µs.
	MaxBackoff time.Duration
}

// Park implements IdlePolicy.
func (b BusyPoll) Park(ctx context.Context, wake <-chan struct{}) {
	maxBackoff := b.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 100 * time.Microsecond
	}
	backoff := time.Microsecond
	for {
		select {
		case <-wake:
			return
		case <-ctx.Done():
			return
		default:
		}
		if backoff < maxBackoff {
			runtime.Gosched()
			backoff *= 2
			continue
		}
		time.Sleep(backoff)
	}
}
