//go:build tinygo

package main

import (
	"context"

	"sparkshell/app"
	"sparkshell/hal"
	"sparkshell/sparkos/services/shell"
)

func main() {
	h := hal.New()
	cfg := app.DefaultConfig()
	cfg.Shell.Mode = shell.ModeNonBlocking

	sys, err := app.NewSystem(h, h.Serial(), cfg)
	if err != nil {
		h.Logger().WriteLineString("sparkshell: " + err.Error())
		h.LED().High()
		select {}
	}
	_ = sys.Run(context.Background())
}
