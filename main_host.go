//go:build !tinygo

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"sparkshell/internal/buildinfo"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sparkshell",
		Usage:   "interactive command shell over a serial-style console",
		Version: buildinfo.String(),
		Flags:   flags(),
		Action:  run,
	}
}

// flagKeys maps each flag to the config key it overrides.
var flagKeys = map[string]string{
	"transport":    "transport.kind",
	"listen":       "transport.listen",
	"prompt":       "shell.prompt",
	"non-blocking": "shell.non_blocking",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics-addr": "metrics.addr",
	"hz":           "headless.hz",
	"ticks":        "headless.ticks",
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file",
		},
		&cli.StringFlag{
			Name:    "transport",
			Aliases: []string{"t"},
			Usage:   "console transport: stdio, tcp, window or headless",
			Value:   "stdio",
		},
		&cli.StringFlag{
			Name:  "listen",
			Usage: "telnet listen address for the tcp transport",
		},
		&cli.StringFlag{
			Name:  "prompt",
			Usage: "shell prompt",
		},
		&cli.BoolFlag{
			Name:  "non-blocking",
			Usage: "step the shell from the kernel instead of blocking on input",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "console or json",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "serve Prometheus metrics on this address",
		},
		&cli.IntFlag{
			Name:  "hz",
			Usage: "kernel step rate for the headless transport",
		},
		&cli.Uint64Flag{
			Name:  "ticks",
			Usage: "stop the headless transport after N steps (0 = run forever)",
		},
	}
}

// overrides returns the config keys for flags set on the command line.
func overrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for name, key := range flagKeys {
		if c.IsSet(name) {
			out[key] = c.Value(name)
		}
	}
	return out
}
