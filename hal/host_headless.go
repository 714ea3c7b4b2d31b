//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls RunHeadless.
type HeadlessConfig struct {
	// Hz is the tick rate (default 60).
	Hz int
	// Ticks stops the runner after that many ticks; 0 runs until ctx ends.
	Ticks uint64
	// StepBudget is how many times step runs per tick (default 1).
	StepBudget int
}

// RunHeadless is RunWindow without a window: each tick advances the clock
// and calls newApp's step StepBudget times. It returns ctx.Err() when ctx
// ends, step's first error, or nil after cfg.Ticks ticks.
func RunHeadless(ctx context.Context, hc HostConfig, cfg HeadlessConfig, newApp func(HAL) (func() error, error)) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}
	period := time.Second / time.Duration(cfg.Hz)
	if period <= 0 {
		return fmt.Errorf("headless: hz %d too high", cfg.Hz)
	}

	h := newHostHAL(hc)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	t := time.NewTicker(period)
	defer t.Stop()
	for n := uint64(1); ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		h.t.step(1)
		if err := runSteps(step, cfg.StepBudget); err != nil {
			return err
		}
		if cfg.Ticks > 0 && n >= cfg.Ticks {
			return nil
		}
	}
}

func runSteps(step func() error, budget int) error {
	if step == nil {
		return nil
	}
	for i := 0; i < budget; i++ {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
