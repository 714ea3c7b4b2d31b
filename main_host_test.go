//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"sparkshell/sparkos/services/shell"
)

func TestOverridesOnlySetFlags(t *testing.T) {
	app := newApp()
	var got map[string]any
	app.Action = func(c *cli.Context) error {
		got = overrides(c)
		return nil
	}

	require.NoError(t, app.Run([]string{"sparkshell", "--transport", "tcp", "--hz", "50", "--non-blocking"}))
	assert.Equal(t, map[string]any{
		"transport.kind":     "tcp",
		"headless.hz":        50,
		"shell.non_blocking": true,
	}, got)

	require.NoError(t, app.Run([]string{"sparkshell"}))
	assert.Empty(t, got, "defaults must not shadow the config file")
}

func TestQuiet(t *testing.T) {
	assert.NoError(t, quiet(nil))
	assert.NoError(t, quiet(shell.ErrExited))
	assert.NoError(t, quiet(fmt.Errorf("run: %w", context.Canceled)))

	boom := errors.New("boom")
	assert.ErrorIs(t, quiet(boom), boom)
}
