package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkshell/hal"
	"sparkshell/internal/buildinfo"
	"sparkshell/sparkos/services/shell"
)

type memTransport struct {
	out bytes.Buffer
	in  []byte
}

func (t *memTransport) OpenWriter() (shell.Writer, error) { return t, nil }
func (t *memTransport) OpenReader() (shell.Reader, error) { return t, nil }

func (t *memTransport) Write(p []byte) (int, error) { return t.out.Write(p) }
func (t *memTransport) Close() error                { return nil }

func (t *memTransport) Read(p []byte) (int, error) { return t.TryRead(p) }

func (t *memTransport) TryRead(p []byte) (int, error) {
	n := copy(p, t.in)
	t.in = t.in[n:]
	return n, nil
}

type fakePin struct {
	name  string
	caps  hal.GPIOCaps
	mode  hal.GPIOMode
	level bool
}

func (p *fakePin) Name() string       { return p.name }
func (p *fakePin) Caps() hal.GPIOCaps { return p.caps }

func (p *fakePin) Configure(mode hal.GPIOMode, _ hal.GPIOPull) error {
	if mode == hal.GPIOModeOutput && p.caps&hal.GPIOCapOutput == 0 {
		return errors.New("output unsupported")
	}
	p.mode = mode
	return nil
}

func (p *fakePin) Read() (bool, error) { return p.level, nil }

func (p *fakePin) Write(level bool) error {
	if p.mode != hal.GPIOModeOutput {
		return errors.New("not an output")
	}
	p.level = level
	return nil
}

type fakeGPIO []*fakePin

func (g fakeGPIO) PinCount() int { return len(g) }

func (g fakeGPIO) Pin(id int) hal.GPIOPin {
	if id < 0 || id >= len(g) {
		return nil
	}
	return g[id]
}

func newBoard() (Board, fakeGPIO) {
	gpio := fakeGPIO{
		{name: "LED", caps: hal.GPIOCapOutput},
		{name: "GPIO1", caps: hal.GPIOCapInput | hal.GPIOCapOutput},
		{name: "BTN", caps: hal.GPIOCapInput, level: true},
	}
	return Board{GPIO: gpio, Ticks: func() uint64 { return 1234 }}, gpio
}

func newShell(t *testing.T, b Board) (*shell.Shell, *memTransport) {
	t.Helper()
	tr := &memTransport{}
	cfg := shell.DefaultConfig()
	cfg.Prompt = "> "
	cfg.Mode = shell.ModeNonBlocking
	s, err := shell.New(tr, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, Register(s, b))
	return s, tr
}

// run feeds one line and returns what the shell wrote for it.
func run(t *testing.T, s *shell.Shell, tr *memTransport, line string) string {
	t.Helper()
	tr.out.Reset()
	tr.in = append(tr.in, line+"\r"...)
	for {
		n, err := s.Poll()
		require.NoError(t, err)
		if n == 0 {
			break
		}
	}
	return tr.out.String()
}

func TestLEDDrivesPin(t *testing.T) {
	b, gpio := newBoard()
	s, tr := newShell(t, b)

	run(t, s, tr, "led on 0")
	assert.True(t, gpio[0].level)
	run(t, s, tr, "led off 0")
	assert.False(t, gpio[0].level)

	out := run(t, s, tr, "led on")
	assert.Contains(t, out, "incorrect command parameter(s)")
	out = run(t, s, tr, "led blink 0")
	assert.Contains(t, out, "led: level must be on|off|1|0")
	out = run(t, s, tr, "led on 9")
	assert.Contains(t, out, "led: no pin 9")
	out = run(t, s, tr, "led on 2")
	assert.Contains(t, out, "led: BTN: output unsupported")
}

func TestGPIOSubcommands(t *testing.T) {
	b, gpio := newBoard()
	s, tr := newShell(t, b)

	out := run(t, s, tr, "gpio")
	assert.Contains(t, out, " 0 LED    o    0\r\n")
	assert.Contains(t, out, " 2 BTN    i    1\r\n")
	assert.Contains(t, run(t, s, tr, "gpio list"), " 1 GPIO1  io   0\r\n")

	out = run(t, s, tr, "gpio read 2")
	assert.Contains(t, out, "BTN 1\r\n")

	run(t, s, tr, "gpio write 1 1")
	assert.True(t, gpio[1].level)

	out = run(t, s, tr, "gpio write 1")
	assert.Contains(t, out, "gpio: usage: gpio write <pin> <0|1>")
	out = run(t, s, tr, "gpio read x")
	assert.Contains(t, out, `gpio: invalid pin "x"`)
	out = run(t, s, tr, "gpio toggle")
	assert.Contains(t, out, `gpio: unknown subcommand "toggle"`)
}

func TestEchoTicksVersion(t *testing.T) {
	b, _ := newBoard()
	s, tr := newShell(t, b)

	assert.Contains(t, run(t, s, tr, `echo hello "big world"`), "hello big world\r\n")
	assert.Contains(t, run(t, s, tr, "echo"), "echo\r\n\r\n")
	assert.Contains(t, run(t, s, tr, "ticks"), "1234\r\n")
	assert.Contains(t, run(t, s, tr, "version"), buildinfo.String())
}

func TestClear(t *testing.T) {
	b, _ := newBoard()
	s, tr := newShell(t, b)
	assert.Contains(t, run(t, s, tr, "clear"), "\x1b[2J\x1b[H")

	cleared := 0
	b.Clear = func() { cleared++ }
	s2, tr2 := newShell(t, b)
	assert.NotContains(t, run(t, s2, tr2, "clear"), "\x1b[2J")
	assert.Equal(t, 1, cleared)
}

func TestRegisterWithoutDevices(t *testing.T) {
	s, _ := newShell(t, Board{})
	for _, name := range []string{"echo", "version", "clear"} {
		_, ok := s.Lookup(name)
		assert.True(t, ok, name)
	}
	for _, name := range []string{"led", "gpio", "ticks"} {
		_, ok := s.Lookup(name)
		assert.False(t, ok, name)
	}

	err := Register(s, Board{})
	assert.ErrorIs(t, err, shell.ErrDuplicateCommand)
}
