// Package app wires a board into a running shell: HAL serial device, serial
// manager, shell instance with board commands, and the kernel that steps
// the logger task and, in non-blocking mode, the shell itself.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sparkshell/hal"
	logclient "sparkshell/sparkos/client/logger"
	"sparkshell/sparkos/commands"
	"sparkshell/sparkos/kernel"
	"sparkshell/sparkos/proto"
	"sparkshell/sparkos/serialmgr"
	"sparkshell/sparkos/services/logger"
	"sparkshell/sparkos/services/shell"
)

// Config sizes and times a System.
type Config struct {
	Shell shell.Config
	// RxBuffer sizes the serial receive ring.
	RxBuffer int
	// StepBudget caps kernel task steps per Step call.
	StepBudget int
	// Period is how often Run steps the kernel.
	Period time.Duration
	// Log receives shell diagnostics. Nil routes them through the kernel
	// logger task to hal.Logger.
	Log shell.Logger
	// Clear backs the clear command; nil sends the VT100 sequence.
	Clear func()
}

// DefaultConfig returns the shell defaults with a default receive ring,
// sixteen task steps per round and a one millisecond period.
func DefaultConfig() Config {
	return Config{
		Shell:      shell.DefaultConfig(),
		RxBuffer:   serialmgr.DefaultRxBuffer,
		StepBudget: 16,
		Period:     time.Millisecond,
	}
}

// System is one shell bound to one serial device.
type System struct {
	cfg    Config
	k      *kernel.Kernel
	serial *serialmgr.Manager
	sh     *shell.Shell
	logSvc *logger.Service

	done      chan struct{}
	pumpDone  chan struct{}
	closeOnce sync.Once
}

// NewSystem builds the kernel, logger task and shell for dev. In
// non-blocking mode the shell is added to the kernel as a task.
func NewSystem(h hal.HAL, dev hal.Serial, cfg Config) (*System, error) {
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Millisecond
	}

	k := kernel.New(kernel.WithPanicHandler(panicHandler(h)))
	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	var halLog hal.Logger
	if h != nil {
		halLog = h.Logger()
	}
	logSvc := logger.New(halLog, logEP.Restrict(kernel.RightRecv))
	if _, err := k.AddTask(logSvc); err != nil {
		return nil, fmt.Errorf("app: logger task: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = logclient.NewSink(k, logEP.Restrict(kernel.RightSend))
	}

	serialOpts := []serialmgr.Option{serialmgr.WithRxBuffer(cfg.RxBuffer)}
	shellOpts := []shell.Option{shell.WithLogger(log)}
	if cfg.Shell.Mode == shell.ModeNonBlocking {
		// Received bytes wake the parked shell task.
		rxEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
		rxReady := func() { k.Post(rxEP.Restrict(kernel.RightSend), uint16(proto.MsgRxReady), nil) }
		serialOpts = append(serialOpts, serialmgr.WithRxNotify(rxReady))
		shellOpts = append(shellOpts, shell.WithWakeup(rxEP.Restrict(kernel.RightRecv)))
	}
	serial := serialmgr.New(dev, serialOpts...)
	sh, err := shell.New(serial, cfg.Shell, shellOpts...)
	if err != nil {
		return nil, errors.Join(err, serial.Close())
	}

	board := commands.Board{Ticks: k.NowTick, Clear: cfg.Clear}
	if h != nil {
		board.GPIO = h.GPIO()
	}
	if err := commands.Register(sh, board); err != nil {
		return nil, errors.Join(err, sh.Close(), serial.Close())
	}

	if cfg.Shell.Mode == shell.ModeNonBlocking {
		task := shellTask{sh: sh, logCap: logEP.Restrict(kernel.RightSend)}
		if _, err := k.AddTask(task); err != nil {
			return nil, errors.Join(fmt.Errorf("app: shell task: %w", err), sh.Close(), serial.Close())
		}
	}

	s := &System{
		cfg:      cfg,
		k:        k,
		serial:   serial,
		sh:       sh,
		logSvc:   logSvc,
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	go s.pumpTicks(h)
	return s, nil
}

// shellTask steps the shell on the kernel and reports through the logger
// endpoint when the shell leaves the scheduler.
type shellTask struct {
	sh     *shell.Shell
	logCap kernel.Capability
}

func (t shellTask) Step(ctx *kernel.Context) {
	t.sh.Step(ctx)
	if ctx.Exited() {
		line := fmt.Sprintf("shell task %d stopped at tick %d", ctx.TaskID(), ctx.NowTick())
		logclient.Log(ctx, t.logCap, proto.LogInfo, line)
	}
}

func (s *System) Shell() *shell.Shell { return s.sh }

func (s *System) Serial() *serialmgr.Manager { return s.serial }

// NowTick returns the kernel tick counter.
func (s *System) NowTick() uint64 { return s.k.NowTick() }

// LoggedLines reports lines the logger task has written to hal.Logger.
func (s *System) LoggedLines() uint64 { return s.logSvc.Handled() }

// pumpTicks forwards HAL ticks to the kernel until Close.
func (s *System) pumpTicks(h hal.HAL) {
	defer close(s.pumpDone)
	var ticks <-chan uint64
	if h != nil && h.Time() != nil {
		ticks = h.Time().Ticks()
	}
	if ticks == nil {
		<-s.done
		return
	}
	for {
		select {
		case <-s.done:
			return
		case seq, ok := <-ticks:
			if !ok {
				<-s.done
				return
			}
			s.k.TickTo(seq)
		}
	}
}

// Step runs one bounded round of kernel tasks. It returns shell.ErrExited
// after exit and the console error once input has ended and drained.
func (s *System) Step() error {
	s.k.RunBudget(s.cfg.StepBudget)
	if s.sh.Exited() {
		return shell.ErrExited
	}
	if err := s.serial.Err(); err != nil && s.serial.Buffered() == 0 {
		return fmt.Errorf("app: console: %w", err)
	}
	return nil
}

// Run drives the system until exit, console failure or ctx cancellation.
// Exit is reported as shell.ErrExited.
func (s *System) Run(ctx context.Context) error {
	parent := ctx
	g, ctx := errgroup.WithContext(ctx)

	if s.cfg.Shell.Mode == shell.ModeBlocking {
		g.Go(func() error {
			if err := s.sh.Run(ctx); err != nil {
				return err
			}
			return shell.ErrExited
		})
	}

	g.Go(func() error {
		t := time.NewTicker(s.cfg.Period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
			if s.cfg.Shell.Mode == shell.ModeBlocking {
				s.k.RunBudget(s.cfg.StepBudget)
				continue
			}
			if err := s.Step(); err != nil {
				return err
			}
		}
	})

	// A blocked transport read only returns once the device closes.
	g.Go(func() error {
		<-ctx.Done()
		_ = s.serial.Close()
		return nil
	})

	err := g.Wait()
	if perr := parent.Err(); perr != nil && !errors.Is(err, shell.ErrExited) {
		return perr
	}
	return err
}

// Close stops the tick pump and releases the shell and serial device.
func (s *System) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.pumpDone
		err = errors.Join(s.sh.Close(), s.serial.Close())
	})
	return err
}
