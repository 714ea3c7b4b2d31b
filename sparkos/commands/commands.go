// Package commands holds the board commands an application registers on a
// shell instance.
package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sparkshell/hal"
	"sparkshell/internal/buildinfo"
	"sparkshell/sparkos/services/shell"
)

var (
	errNoGPIO   = errors.New("no gpio on this board")
	errBadLevel = errors.New("level must be on|off|1|0")
)

// Board is what the commands act on. Nil fields disable the commands that
// need them.
type Board struct {
	GPIO hal.GPIO
	// Ticks reports the kernel tick counter.
	Ticks func() uint64
	// Clear blanks the console. Nil sends the VT100 clear sequence instead.
	Clear func()
}

// Register adds the board commands to s. Commands are created per call, so
// the same Board can serve several shells.
func Register(s *shell.Shell, b Board) error {
	cmds := []*shell.Command{
		{Name: "echo", Help: "echo [args...]       print arguments", Args: shell.AnyArgs, Handler: cmdEcho},
		{Name: "version", Help: "version              show build version", Args: 0, Handler: cmdVersion},
		{Name: "clear", Help: "clear                clear the terminal", Args: 0, Handler: b.cmdClear},
	}
	if b.GPIO != nil {
		cmds = append(cmds,
			&shell.Command{Name: "led", Help: "led <on|off> <pin>   drive an output pin", Args: 2, Handler: b.cmdLED},
			&shell.Command{Name: "gpio", Help: "gpio [list|read <pin>|write <pin> <0|1>]", Args: shell.AnyArgs, Handler: b.cmdGPIO},
		)
	}
	if b.Ticks != nil {
		cmds = append(cmds, &shell.Command{Name: "ticks", Help: "ticks                show kernel tick counter", Args: 0, Handler: b.cmdTicks})
	}

	for _, c := range cmds {
		if err := s.RegisterCommand(c); err != nil {
			return fmt.Errorf("register %s: %w", c.Name, err)
		}
	}
	return nil
}

func cmdEcho(s *shell.Shell, argv []string) error {
	return s.WriteString(strings.Join(argv, " ") + "\n")
}

func cmdVersion(s *shell.Shell, _ []string) error {
	_, err := s.Printf("%s\n", buildinfo.String())
	return err
}

func (b Board) cmdClear(s *shell.Shell, _ []string) error {
	if b.Clear != nil {
		b.Clear()
		return nil
	}
	return s.WriteString("\x1b[2J\x1b[H")
}

func (b Board) cmdTicks(s *shell.Shell, _ []string) error {
	_, err := s.Printf("%d\n", b.Ticks())
	return err
}

func (b Board) cmdLED(s *shell.Shell, argv []string) error {
	level, err := parseLevel(argv[0])
	if err != nil {
		return err
	}
	pin, err := b.pin(argv[1])
	if err != nil {
		return err
	}
	if err := pin.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
		return fmt.Errorf("%s: %w", pin.Name(), err)
	}
	return pin.Write(level)
}

func (b Board) cmdGPIO(s *shell.Shell, argv []string) error {
	if len(argv) == 0 || argv[0] == "list" {
		return b.list(s)
	}
	switch argv[0] {
	case "read":
		if len(argv) != 2 {
			return errors.New("usage: gpio read <pin>")
		}
		pin, err := b.pin(argv[1])
		if err != nil {
			return err
		}
		level, err := pin.Read()
		if err != nil {
			return fmt.Errorf("%s: %w", pin.Name(), err)
		}
		_, err = s.Printf("%s %d\n", pin.Name(), levelBit(level))
		return err
	case "write":
		if len(argv) != 3 {
			return errors.New("usage: gpio write <pin> <0|1>")
		}
		pin, err := b.pin(argv[1])
		if err != nil {
			return err
		}
		level, err := parseLevel(argv[2])
		if err != nil {
			return err
		}
		if err := pin.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
			return fmt.Errorf("%s: %w", pin.Name(), err)
		}
		return pin.Write(level)
	default:
		return fmt.Errorf("unknown subcommand %q", argv[0])
	}
}

func (b Board) list(s *shell.Shell) error {
	for i := 0; i < b.GPIO.PinCount(); i++ {
		pin := b.GPIO.Pin(i)
		if pin == nil {
			continue
		}
		level, _ := pin.Read()
		if _, err := s.Printf("%2d %-6s %-4s %d\n", i, pin.Name(), pin.Caps(), levelBit(level)); err != nil {
			return err
		}
	}
	return nil
}

func (b Board) pin(arg string) (hal.GPIOPin, error) {
	if b.GPIO == nil {
		return nil, errNoGPIO
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid pin %q", arg)
	}
	pin := b.GPIO.Pin(id)
	if pin == nil {
		return nil, fmt.Errorf("no pin %d", id)
	}
	return pin, nil
}

func parseLevel(s string) (bool, error) {
	switch s {
	case "on", "1", "high":
		return true, nil
	case "off", "0", "low":
		return false, nil
	default:
		return false, errBadLevel
	}
}

func levelBit(level bool) int {
	if level {
		return 1
	}
	return 0
}
