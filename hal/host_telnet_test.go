//go:build !tinygo

package hal

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTelnetFilter(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"plain", []byte("ls\r\n"), []byte("ls\r\n")},
		{"option", []byte{telnetIAC, telnetDO, telnetOptEcho, 'a'}, []byte("a")},
		{"escaped iac", []byte{'x', telnetIAC, telnetIAC, 'y'}, []byte{'x', telnetIAC, 'y'}},
		{"two byte command", []byte{telnetIAC, 241, 'z'}, []byte("z")},
		{"subnegotiation", []byte{telnetIAC, telnetSB, 24, 0, 'v', 't', telnetIAC, telnetSE, 'k'}, []byte("k")},
		{"cr nul", []byte{'\r', 0, 'q'}, []byte{'\r', 'q'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f telnetFilter
			p := append([]byte(nil), tt.in...)
			n := f.apply(p)
			assert.Equal(t, tt.want, p[:n])
		})
	}
}

func TestTelnetFilterSplitSequence(t *testing.T) {
	var f telnetFilter
	a := []byte{'a', telnetIAC}
	b := []byte{telnetWILL, telnetOptSGA, 'b'}

	n := f.apply(a)
	assert.Equal(t, "a", string(a[:n]))
	n = f.apply(b)
	assert.Equal(t, "b", string(b[:n]))
}

func TestTelnetConnEscapesIAC(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := newTelnetConn(server)
	defer c.Close()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 16)
		var got []byte
		for len(got) < 4 {
			n, err := client.Read(buf)
			if err != nil {
				break
			}
			got = append(got, buf[:n]...)
		}
		done <- got
	}()

	n, err := c.Write([]byte{'a', telnetIAC, 'b'})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	select {
	case got := <-done:
		assert.Equal(t, []byte{'a', telnetIAC, telnetIAC, 'b'}, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for write")
	}
}

func TestTelnetListenerNegotiates(t *testing.T) {
	ln, err := ListenTelnet("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan *TelnetConn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, 9)
	_, err = conn.Read(buf[:1])
	require.NoError(t, err)
	rest := buf[1:]
	for len(rest) > 0 {
		n, err := conn.Read(rest)
		require.NoError(t, err)
		rest = rest[n:]
	}
	assert.True(t, bytes.HasPrefix(buf, []byte{telnetIAC, telnetWILL, telnetOptEcho}))

	var sess *TelnetConn
	select {
	case sess = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("accept timed out")
	}
	defer sess.Close()
	assert.NotEmpty(t, sess.ID())

	_, err = conn.Write([]byte{telnetIAC, telnetDO, telnetOptEcho, 'h', 'i'})
	require.NoError(t, err)
	got := make([]byte, 8)
	n, err := sess.Read(got)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got[:n]))
}
