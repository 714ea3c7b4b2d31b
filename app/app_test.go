package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sparkshell/hal"
	"sparkshell/sparkos/kernel"
	"sparkshell/sparkos/services/shell"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type pipeDevice struct {
	r  *io.PipeReader
	in *io.PipeWriter

	mu  sync.Mutex
	out bytes.Buffer
}

func newPipeDevice() *pipeDevice {
	r, w := io.Pipe()
	return &pipeDevice{r: r, in: w}
}

func (d *pipeDevice) Read(p []byte) (int, error) { return d.r.Read(p) }

func (d *pipeDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.Write(p)
}

func (d *pipeDevice) Close() error { return d.r.Close() }

func (d *pipeDevice) output() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.String()
}

func (d *pipeDevice) send(s string) {
	go func() { _, _ = d.in.Write([]byte(s)) }()
}

func newHost(t *testing.T, dev hal.Serial) (hal.HAL, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return hal.NewHost(hal.HostConfig{Serial: dev, Log: zap.New(core)}), logs
}

func newTestSystem(t *testing.T, mode shell.Mode) (*System, *pipeDevice, hal.HAL, *observer.ObservedLogs) {
	t.Helper()
	dev := newPipeDevice()
	h, logs := newHost(t, dev)
	cfg := DefaultConfig()
	cfg.Shell.Mode = mode
	sys, err := NewSystem(h, dev, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sys.Close() })
	return sys, dev, h, logs
}

func stepUntil(t *testing.T, sys *System, cond func() bool) error {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := sys.Step(); err != nil {
			return err
		}
		if cond() {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached")
	return nil
}

func TestRunBlockingUntilExit(t *testing.T) {
	sys, dev, h, _ := newTestSystem(t, shell.ModeBlocking)
	dev.send("led on 0\r\nexit\r\n")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sys.Run(ctx)
	assert.ErrorIs(t, err, shell.ErrExited)

	level, err := h.GPIO().Pin(0).Read()
	require.NoError(t, err)
	assert.True(t, level, "led command reached the board LED")
	assert.Contains(t, dev.output(), "bye\r\n")
}

func TestRunCancelled(t *testing.T) {
	sys, _, _, _ := newTestSystem(t, shell.ModeBlocking)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := sys.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStepNonBlocking(t *testing.T) {
	sys, dev, _, logs := newTestSystem(t, shell.ModeNonBlocking)

	dev.send("echo hi\r")
	require.NoError(t, stepUntil(t, sys, func() bool {
		return strings.Contains(dev.output(), "hi\r\nSHELL>> ")
	}))
	require.NoError(t, stepUntil(t, sys, func() bool { return sys.LoggedLines() > 0 }))
	assert.Positive(t, logs.FilterMessageSnippet("command dispatched").Len(), "shell diagnostics flow through the logger task")

	dev.send("exit\r")
	err := stepUntil(t, sys, func() bool { return false })
	assert.ErrorIs(t, err, shell.ErrExited)
	assert.True(t, sys.Shell().Exited())

	sys.k.RunBudget(8)
	assert.Equal(t, 1, logs.FilterMessageSnippet("[I] shell task 1 stopped at tick 0").Len())
}

func TestStepReadsInputWithoutClock(t *testing.T) {
	sys, dev, _, _ := newTestSystem(t, shell.ModeNonBlocking)
	require.NoError(t, sys.Step())
	require.Contains(t, dev.output(), "SHELL>> ")

	dev.send("echo hi\r")
	require.Eventually(t, func() bool { return sys.Serial().Buffered() == 8 }, 2*time.Second, time.Millisecond)
	require.NoError(t, stepUntil(t, sys, func() bool {
		return strings.Contains(dev.output(), "hi\r\nSHELL>> ")
	}))
	assert.Zero(t, sys.NowTick(), "input alone drives the shell task")
	assert.Zero(t, sys.Serial().Buffered())
}

func TestStepReportsConsoleEnd(t *testing.T) {
	sys, dev, _, _ := newTestSystem(t, shell.ModeNonBlocking)
	require.NoError(t, dev.in.Close())

	err := stepUntil(t, sys, func() bool { return false })
	assert.ErrorIs(t, err, io.EOF)
}

func TestTicksReachKernel(t *testing.T) {
	sys, _, h, _ := newTestSystem(t, shell.ModeNonBlocking)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_ = hal.DriveClock(ctx, h, time.Millisecond)

	require.Eventually(t, func() bool { return sys.NowTick() > 0 }, time.Second, time.Millisecond)
}

func TestNewSystemWithoutDevice(t *testing.T) {
	h, _ := newHost(t, newPipeDevice())
	_, err := NewSystem(h, nil, DefaultConfig())
	assert.Equal(t, shell.StatusOpenWriteHandleFailed, shell.StatusOf(err))

	cfg := DefaultConfig()
	cfg.Shell.BufferSize = 0
	_, err = NewSystem(h, newPipeDevice(), cfg)
	assert.ErrorIs(t, err, shell.ErrInvalidConfig)
}

type panicTask struct{}

func (panicTask) Step(*kernel.Context) { panic(errors.New("boom")) }

func TestPanicHandlerReports(t *testing.T) {
	sys, _, h, logs := newTestSystem(t, shell.ModeNonBlocking)

	_, err := sys.k.AddTask(panicTask{})
	require.NoError(t, err)
	sys.k.RunBudget(8)

	assert.Equal(t, 1, logs.FilterMessage("sparkshell panic").Len())
	assert.Equal(t, 1, logs.FilterMessage("panic: boom").Len())

	fb := h.Display().Framebuffer()
	buf := fb.Buffer()
	assert.Equal(t, []byte{0xff, 0xff}, buf[len(buf)-2:], "screen cleared to white")
	assert.Contains(t, buf, byte(0), "text drawn")
}
