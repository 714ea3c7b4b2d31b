// Package config holds the host configuration: defaults, an optional YAML
// file, SPARKSHELL_* environment variables and CLI flags, in that order.
package config

import (
	"errors"
	"fmt"

	"sparkshell/sparkos/services/shell"
)

// Transport kinds.
const (
	TransportStdio    = "stdio"
	TransportTCP      = "tcp"
	TransportWindow   = "window"
	TransportHeadless = "headless"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Shell     ShellConfig     `koanf:"shell"`
	Transport TransportConfig `koanf:"transport"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Headless  HeadlessConfig  `koanf:"headless"`
}

type ShellConfig struct {
	Prompt       string `koanf:"prompt"`
	BufferSize   int    `koanf:"buffer_size"`
	MaxArgs      int    `koanf:"max_args"`
	HistoryDepth int    `koanf:"history_depth"`
	AutoComplete bool   `koanf:"auto_complete"`
	NonBlocking  bool   `koanf:"non_blocking"`
	CRLF         bool   `koanf:"crlf"`
	PrintfSize   int    `koanf:"printf_size"`
}

type TransportConfig struct {
	Kind     string `koanf:"kind"`
	Listen   string `koanf:"listen"`
	RxBuffer int    `koanf:"rx_buffer"`
	// Raw puts a stdio terminal into raw mode.
	Raw    bool `koanf:"raw"`
	Width  int  `koanf:"width"`
	Height int  `koanf:"height"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type HeadlessConfig struct {
	Hz         int    `koanf:"hz"`
	StepBudget int    `koanf:"step_budget"`
	Ticks      uint64 `koanf:"ticks"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sc := shell.DefaultConfig()
	return &Config{
		Shell: ShellConfig{
			Prompt:       sc.Prompt,
			BufferSize:   sc.BufferSize,
			MaxArgs:      sc.MaxArgs,
			HistoryDepth: sc.HistoryDepth,
			AutoComplete: sc.AutoComplete,
			NonBlocking:  sc.Mode == shell.ModeNonBlocking,
			CRLF:         sc.CRLF,
			PrintfSize:   sc.PrintfSize,
		},
		Transport: TransportConfig{
			Kind:     TransportStdio,
			Listen:   "127.0.0.1:2323",
			RxBuffer: 256,
			Raw:      true,
			Width:    320,
			Height:   320,
		},
		Log:      LogConfig{Level: "info", Format: "console"},
		Headless: HeadlessConfig{Hz: 1000, StepBudget: 16},
	}
}

// Load returns Default overlaid with path (optional), the environment and
// flags.
func Load(path string, flags map[string]any) (*Config, error) {
	cfg := Default()
	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		return nil, err
	}
	if err := l.LoadEnv(); err != nil {
		return nil, err
	}
	if err := l.LoadMap(flags); err != nil {
		return nil, err
	}
	if err := l.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ShellConfig converts the shell section to the core configuration.
func (c *Config) ShellConfig() shell.Config {
	mode := shell.ModeBlocking
	if c.Shell.NonBlocking || c.Transport.Kind == TransportHeadless || c.Transport.Kind == TransportWindow {
		mode = shell.ModeNonBlocking
	}
	return shell.Config{
		Prompt:       c.Shell.Prompt,
		BufferSize:   c.Shell.BufferSize,
		MaxArgs:      c.Shell.MaxArgs,
		HistoryDepth: c.Shell.HistoryDepth,
		AutoComplete: c.Shell.AutoComplete,
		Mode:         mode,
		CRLF:         c.Shell.CRLF,
		PrintfSize:   c.Shell.PrintfSize,
	}
}

func (c *Config) Validate() error {
	if err := c.ShellConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.Transport.Kind {
	case TransportStdio, TransportWindow, TransportHeadless:
	case TransportTCP:
		if c.Transport.Listen == "" {
			return fmt.Errorf("%w: transport.listen is required for tcp", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown transport.kind %q", ErrInvalid, c.Transport.Kind)
	}
	if c.Transport.RxBuffer < 16 {
		return fmt.Errorf("%w: transport.rx_buffer must be at least 16", ErrInvalid)
	}
	if c.Transport.Width <= 0 || c.Transport.Height <= 0 {
		return fmt.Errorf("%w: transport.width and transport.height must be positive", ErrInvalid)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format)
	}
	if c.Headless.Hz <= 0 || c.Headless.StepBudget <= 0 {
		return fmt.Errorf("%w: headless.hz and headless.step_budget must be positive", ErrInvalid)
	}
	return nil
}
