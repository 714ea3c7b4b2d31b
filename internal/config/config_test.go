package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkshell/sparkos/services/shell"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sparkshell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultMatchesShellDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, shell.DefaultConfig(), cfg.ShellConfig())
	assert.Equal(t, TransportStdio, cfg.Transport.Kind)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, `
shell:
  prompt: "file> "
  buffer_size: 32
  history_depth: 5
transport:
  kind: tcp
  listen: ":9000"
log:
  level: debug
`)
	t.Setenv("SPARKSHELL_SHELL_PROMPT", "env> ")
	t.Setenv("SPARKSHELL_SHELL_MAX_ARGS", "4")
	t.Setenv("SPARKSHELL_TRANSPORT_LISTEN", ":9001")

	cfg, err := Load(path, map[string]any{
		"transport.listen": ":9002",
		"log.format":       "json",
	})
	require.NoError(t, err)

	assert.Equal(t, "env> ", cfg.Shell.Prompt, "env overrides file")
	assert.Equal(t, 32, cfg.Shell.BufferSize, "file overrides defaults")
	assert.Equal(t, 4, cfg.Shell.MaxArgs, "multi-word keys keep their underscores")
	assert.Equal(t, 5, cfg.Shell.HistoryDepth)
	assert.Equal(t, ":9002", cfg.Transport.Listen, "flags override env")
	assert.Equal(t, TransportTCP, cfg.Transport.Kind)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, Default().Shell.MaxArgs)
	assert.True(t, cfg.Shell.AutoComplete, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		flags map[string]any
	}{
		{"transport", map[string]any{"transport.kind": "carrier-pigeon"}},
		{"tcp without listen", map[string]any{"transport.kind": "tcp", "transport.listen": ""}},
		{"buffer", map[string]any{"shell.buffer_size": 1}},
		{"printf", map[string]any{"shell.printf_size": 8}},
		{"rx buffer", map[string]any{"transport.rx_buffer": 4}},
		{"log level", map[string]any{"log.level": "loud"}},
		{"log format", map[string]any{"log.format": "xml"}},
		{"hz", map[string]any{"headless.hz": 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load("", tc.flags)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestShellConfigMode(t *testing.T) {
	cfg := Default()
	assert.Equal(t, shell.ModeBlocking, cfg.ShellConfig().Mode)

	cfg.Shell.NonBlocking = true
	assert.Equal(t, shell.ModeNonBlocking, cfg.ShellConfig().Mode)

	cfg = Default()
	cfg.Transport.Kind = TransportHeadless
	assert.Equal(t, shell.ModeNonBlocking, cfg.ShellConfig().Mode, "headless is kernel stepped")
}

func TestLoaderKeys(t *testing.T) {
	l := NewLoader(WithEnvPrefix("SPARKSHELL_TEST_"))
	t.Setenv("SPARKSHELL_TEST_LOG_LEVEL", "warn")
	require.NoError(t, l.LoadEnv())
	require.NoError(t, l.LoadMap(map[string]any{"metrics.addr": ":9100"}))
	assert.ElementsMatch(t, []string{"log.level", "metrics.addr"}, l.Keys())

	var cfg Config
	require.NoError(t, l.Unmarshal(&cfg))
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}
