package shell

import "fmt"

// Mode selects how the shell task obtains input.
type Mode uint8

const (
	// ModeBlocking runs the shell on its own goroutine via Run.
	ModeBlocking Mode = iota
	// ModeNonBlocking drives the shell from a cooperative loop via Poll or Step.
	ModeNonBlocking
)

func (m Mode) String() string {
	switch m {
	case ModeBlocking:
		return "blocking"
	case ModeNonBlocking:
		return "non-blocking"
	default:
		return "unknown"
	}
}

// Config holds the per-instance tunables. All buffers are sized from it once
// in New.
type Config struct {
	Prompt string
	// BufferSize is the line buffer capacity; a line holds at most BufferSize-1 bytes.
	BufferSize int
	// MaxArgs bounds the tokens of one line, command name included.
	MaxArgs int
	// HistoryDepth is the number of remembered lines; 0 disables history.
	HistoryDepth int
	AutoComplete bool
	Mode         Mode
	// CRLF expands "\n" to "\r\n" in Write and Printf output.
	CRLF bool
	// PrintfSize bounds one formatted Printf result.
	PrintfSize int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Prompt:       "SHELL>> ",
		BufferSize:   64,
		MaxArgs:      8,
		HistoryDepth: 3,
		AutoComplete: true,
		Mode:         ModeBlocking,
		CRLF:         true,
		PrintfSize:   128,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.BufferSize < 2:
		return fmt.Errorf("%w: buffer size %d < 2", ErrInvalidConfig, c.BufferSize)
	case c.MaxArgs < 1:
		return fmt.Errorf("%w: max args %d < 1", ErrInvalidConfig, c.MaxArgs)
	case c.HistoryDepth < 0:
		return fmt.Errorf("%w: history depth %d < 0", ErrInvalidConfig, c.HistoryDepth)
	case c.PrintfSize < 16:
		return fmt.Errorf("%w: printf size %d < 16", ErrInvalidConfig, c.PrintfSize)
	case c.Mode != ModeBlocking && c.Mode != ModeNonBlocking:
		return fmt.Errorf("%w: mode %d", ErrInvalidConfig, c.Mode)
	}
	return nil
}
