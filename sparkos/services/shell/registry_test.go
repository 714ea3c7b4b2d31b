package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryNames(r *Registry) []string {
	var names []string
	r.Each(func(c *Command) bool {
		names = append(names, c.Name)
		return true
	})
	return names
}

func TestRegistryInsertionOrder(t *testing.T) {
	var r Registry
	rec := &recorder{}
	for _, n := range []string{"b", "a", "c"} {
		require.NoError(t, r.Register(rec.command(n, 0)))
	}
	assert.Equal(t, []string{"b", "a", "c"}, registryNames(&r))
	assert.Equal(t, 3, r.Len())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	var r Registry
	rec := &recorder{}
	first := rec.command("led", 2)
	require.NoError(t, r.Register(first))

	err := r.Register(rec.command("led", 1))
	assert.ErrorIs(t, err, ErrDuplicateCommand)
	assert.ErrorIs(t, err, ErrShell)

	got, ok := r.Lookup("led")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	var r Registry
	assert.ErrorIs(t, r.Register(nil), ErrNilCommand)
	assert.ErrorIs(t, r.Register(&Command{Name: "", Handler: (&recorder{}).handler}), ErrInvalidCommand)
	assert.ErrorIs(t, r.Register(&Command{Name: "two words", Handler: (&recorder{}).handler}), ErrInvalidCommand)
	assert.ErrorIs(t, r.Register(&Command{Name: "x"}), ErrInvalidCommand)
	assert.ErrorIs(t, r.Register(&Command{Name: "x", Args: -2, Handler: (&recorder{}).handler}), ErrInvalidCommand)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryUnregisterByIdentity(t *testing.T) {
	var r Registry
	rec := &recorder{}
	a, b, c := rec.command("a", 0), rec.command("b", 0), rec.command("c", 0)
	for _, cmd := range []*Command{a, b, c} {
		require.NoError(t, r.Register(cmd))
	}

	lookalike := rec.command("b", 0)
	assert.ErrorIs(t, r.Unregister(lookalike), ErrCommandNotFound)

	require.NoError(t, r.Unregister(b))
	assert.False(t, b.Registered())
	assert.Equal(t, []string{"a", "c"}, registryNames(&r))

	require.NoError(t, r.Unregister(c))
	require.NoError(t, r.Register(b))
	assert.Equal(t, []string{"a", "b"}, registryNames(&r), "tail is maintained")

	assert.ErrorIs(t, r.Unregister(c), ErrCommandNotFound)
	assert.ErrorIs(t, r.Unregister(nil), ErrNilCommand)
}

func TestRegistryCommandLinkedElsewhere(t *testing.T) {
	var r1, r2 Registry
	cmd := (&recorder{}).command("x", 0)
	require.NoError(t, r1.Register(cmd))
	assert.ErrorIs(t, r2.Register(cmd), ErrCommandLinked)
	assert.ErrorIs(t, r2.Unregister(cmd), ErrCommandNotFound)
}

func TestShellUnregisterStopsDispatch(t *testing.T) {
	s, tr := newTestShell(t, testConfig())
	rec := &recorder{}
	cmd := rec.command("led", 0)
	require.NoError(t, s.RegisterCommand(cmd))
	require.NoError(t, s.UnregisterCommand(cmd))

	feed(s, "led\r")
	assert.Empty(t, rec.calls)
	assert.Contains(t, tr.w.String(), "unknown command: led")
}

func TestShellBuiltinsCannotBeShadowed(t *testing.T) {
	s, _ := newTestShell(t, testConfig())
	err := s.RegisterCommand((&recorder{}).command("help", 0))
	assert.ErrorIs(t, err, ErrDuplicateCommand)
}
