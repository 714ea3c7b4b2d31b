//go:build !tinygo

package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sparkshell/app"
	"sparkshell/hal"
	"sparkshell/internal/config"
	"sparkshell/internal/logging"
	"sparkshell/internal/telemetry"
	"sparkshell/sparkos/services/shell"
	"sparkshell/sparkos/services/term"
)

type runner struct {
	cfg *config.Config
	log *zap.Logger
	col *telemetry.Collector
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), overrides(c))
	if err != nil {
		return err
	}
	zl, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{cfg: cfg, log: zl, col: telemetry.NewCollector()}
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)

	if cfg.Metrics.Addr != "" {
		reg, err := telemetry.NewRegistry(r.col)
		if err != nil {
			cancel()
			return err
		}
		g.Go(func() error { return telemetry.ListenAndServe(ctx, cfg.Metrics.Addr, reg, zl) })
	}
	g.Go(func() error {
		defer cancel()
		return r.transport(ctx)
	})
	return quiet(g.Wait())
}

func (r *runner) transport(ctx context.Context) error {
	r.log.Info("starting", zap.String("transport", r.cfg.Transport.Kind), zap.String("mode", r.cfg.ShellConfig().Mode.String()))
	switch r.cfg.Transport.Kind {
	case config.TransportTCP:
		return r.runTCP(ctx)
	case config.TransportHeadless:
		return r.runHeadless(ctx)
	case config.TransportWindow:
		return r.runWindow()
	default:
		return r.runStdio(ctx)
	}
}

func (r *runner) appConfig(log *zap.Logger) app.Config {
	cfg := app.DefaultConfig()
	cfg.Shell = r.cfg.ShellConfig()
	cfg.RxBuffer = r.cfg.Transport.RxBuffer
	cfg.StepBudget = r.cfg.Headless.StepBudget
	cfg.Log = log.Named("shell").Sugar()
	return cfg
}

func (r *runner) hostConfig(dev hal.Serial, log *zap.Logger) hal.HostConfig {
	return hal.HostConfig{Serial: dev, Log: log, Width: r.cfg.Transport.Width, Height: r.cfg.Transport.Height}
}

// newSystem builds a system and tracks it until the returned release runs.
func (r *runner) newSystem(h hal.HAL, dev hal.Serial, cfg app.Config) (*app.System, func(), error) {
	sys, err := app.NewSystem(h, dev, cfg)
	if err != nil {
		r.log.Warn("shell init failed", zap.Error(err), zap.Stringer("status", shell.StatusOf(err)))
		return nil, nil, err
	}
	untrack := r.col.Track(sys.Shell())
	untrackDrops := r.col.TrackDrops(sys.Serial().Dropped)
	return sys, func() {
		untrackDrops()
		untrack()
		if err := sys.Close(); err != nil {
			r.log.Debug("close", zap.Error(err))
		}
	}, nil
}

// serve runs one system with a real-time clock until it exits.
func (r *runner) serve(ctx context.Context, dev hal.Serial, log *zap.Logger) error {
	h := hal.NewHost(r.hostConfig(dev, log))
	sys, release, err := r.newSystem(h, dev, r.appConfig(log))
	if err != nil {
		return err
	}
	defer release()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hal.DriveClock(gctx, h, time.Millisecond) })
	g.Go(func() error { return sys.Run(gctx) })
	return quiet(g.Wait())
}

func (r *runner) runStdio(ctx context.Context) error {
	dev, err := hal.OpenStdio(r.cfg.Transport.Raw)
	if err != nil {
		return err
	}
	defer dev.Close()
	return r.serve(ctx, dev, r.log)
}

// runTCP serves telnet sessions one at a time, each with a fresh shell.
func (r *runner) runTCP(ctx context.Context) error {
	ln, err := hal.ListenTelnet(r.cfg.Transport.Listen, r.log)
	if err != nil {
		return err
	}
	r.log.Info("listening", zap.Stringer("addr", ln.Addr()))
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return ctx.Err()
			}
			r.log.Warn("accept failed", zap.Error(err))
			continue
		}
		log := r.log.With(zap.String("session", conn.ID()))
		if err := r.serve(ctx, conn, log); err != nil {
			log.Info("session ended", zap.Error(err))
		} else {
			log.Info("session closed")
		}
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (r *runner) runHeadless(ctx context.Context) error {
	dev, err := hal.OpenStdio(r.cfg.Transport.Raw)
	if err != nil {
		return err
	}
	defer dev.Close()

	var release func()
	defer func() {
		if release != nil {
			release()
		}
	}()
	hc := hal.HeadlessConfig{Hz: r.cfg.Headless.Hz, Ticks: r.cfg.Headless.Ticks, StepBudget: 1}
	return quiet(hal.RunHeadless(ctx, r.hostConfig(dev, r.log), hc, func(h hal.HAL) (func() error, error) {
		sys, rel, err := r.newSystem(h, dev, r.appConfig(r.log))
		if err != nil {
			return nil, err
		}
		release = rel
		return sys.Step, nil
	}))
}

func (r *runner) runWindow() error {
	var (
		release func()
		console *term.Console
	)
	defer func() {
		if release != nil {
			release()
		}
	}()
	return quiet(hal.RunWindow(r.hostConfig(nil, r.log), func(h hal.HAL) (func() error, error) {
		c, err := term.NewConsole(h.Display(), h.Input())
		if err != nil {
			return nil, err
		}
		console = c
		cfg := r.appConfig(r.log)
		cfg.Clear = console.Clear
		sys, rel, err := r.newSystem(h, console, cfg)
		if err != nil {
			_ = console.Close()
			return nil, err
		}
		release = rel
		return sys.Step, nil
	}))
}

// quiet maps normal endings to nil.
func quiet(err error) error {
	if errors.Is(err, shell.ErrExited) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
