//go:build !tinygo

package hal

import (
	"context"
	"time"
)

const hostTickDur = time.Millisecond

// hostTime turns wall-clock progress into 1ms tick sequence numbers.
// A slow consumer loses ticks rather than stalling the driver.
type hostTime struct {
	ch   chan uint64
	seq  uint64
	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step publishes the ticks elapsed since the previous call; the first
// call publishes first.
func (t *hostTime) step(first uint64) {
	t.advance(time.Now(), first)
}

func (t *hostTime) advance(now time.Time, first uint64) {
	if t.last.IsZero() {
		t.last = now
		t.emit(first)
		return
	}
	t.acc += now.Sub(t.last)
	t.last = now
	n := uint64(t.acc / hostTickDur)
	t.acc %= hostTickDur
	t.emit(n)
}

func (t *hostTime) emit(n uint64) {
	for ; n > 0; n-- {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}

// DriveClock advances a host HAL's tick stream in real time until ctx is
// done. RunWindow and RunHeadless drive the clock themselves.
func DriveClock(ctx context.Context, h HAL, period time.Duration) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return ErrNotImplemented
	}
	if period <= 0 {
		period = hostTickDur
	}
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			hh.t.step(1)
		}
	}
}
