//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	telnetSE   byte = 240
	telnetSB   byte = 250
	telnetWILL byte = 251
	telnetWONT byte = 252
	telnetDO   byte = 253
	telnetDONT byte = 254
	telnetIAC  byte = 255

	telnetOptEcho byte = 1
	telnetOptSGA  byte = 3
)

// TelnetListener accepts telnet sessions on a TCP address.
type TelnetListener struct {
	ln  net.Listener
	log *zap.Logger
}

// ListenTelnet opens a TCP listener on addr.
func ListenTelnet(addr string, log *zap.Logger) (*TelnetListener, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("hal: telnet listen %s: %w", addr, err)
	}
	return &TelnetListener{ln: ln, log: log.Named("telnet")}, nil
}

// Addr returns the bound address.
func (l *TelnetListener) Addr() net.Addr { return l.ln.Addr() }

// Accept waits for the next connection and puts it into character mode.
func (l *TelnetListener) Accept() (*TelnetConn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, net.ErrClosed
		}
		return nil, fmt.Errorf("hal: telnet accept: %w", err)
	}
	c := newTelnetConn(conn)
	l.log.Info("session opened", zap.String("session", c.ID()), zap.Stringer("remote", conn.RemoteAddr()))
	if err := c.negotiate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// Close stops the listener. Pending Accept calls return net.ErrClosed.
func (l *TelnetListener) Close() error { return l.ln.Close() }

// TelnetConn is one telnet session exposed as a Serial device. Protocol
// commands are stripped from the inbound stream.
type TelnetConn struct {
	conn net.Conn
	id   uuid.UUID

	wmu    sync.Mutex
	filter telnetFilter
}

func newTelnetConn(conn net.Conn) *TelnetConn {
	return &TelnetConn{conn: conn, id: uuid.New()}
}

// ID returns the session identifier used in logs.
func (c *TelnetConn) ID() string { return c.id.String() }

// negotiate asks the client for character-at-a-time mode with server-side echo.
func (c *TelnetConn) negotiate() error {
	_, err := c.conn.Write([]byte{
		telnetIAC, telnetWILL, telnetOptEcho,
		telnetIAC, telnetWILL, telnetOptSGA,
		telnetIAC, telnetDO, telnetOptSGA,
	})
	if err != nil {
		return fmt.Errorf("hal: telnet negotiate: %w", err)
	}
	return nil
}

func (c *TelnetConn) Read(p []byte) (int, error) {
	for {
		n, err := c.conn.Read(p)
		n = c.filter.apply(p[:n])
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (c *TelnetConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	start := 0
	for i, b := range p {
		if b != telnetIAC {
			continue
		}
		if _, err := c.conn.Write(p[start : i+1]); err != nil {
			return start, err
		}
		if _, err := c.conn.Write([]byte{telnetIAC}); err != nil {
			return i + 1, err
		}
		start = i + 1
	}
	if start < len(p) {
		if _, err := c.conn.Write(p[start:]); err != nil {
			return start, err
		}
	}
	return len(p), nil
}

func (c *TelnetConn) Close() error { return c.conn.Close() }

type telnetState uint8

const (
	telnetData telnetState = iota
	telnetCmd
	telnetOpt
	telnetSub
	telnetSubCmd
)

// telnetFilter removes IAC sequences from a byte stream. State carries across
// calls so sequences split between reads are handled.
type telnetFilter struct {
	state telnetState
}

// apply filters p in place and returns the number of data bytes kept.
func (f *telnetFilter) apply(p []byte) int {
	n := 0
	for _, b := range p {
		switch f.state {
		case telnetData:
			switch b {
			case telnetIAC:
				f.state = telnetCmd
			case 0:
				// NUL padding after CR.
			default:
				p[n] = b
				n++
			}
		case telnetCmd:
			switch {
			case b == telnetIAC:
				p[n] = b
				n++
				f.state = telnetData
			case b >= telnetWILL && b <= telnetDONT:
				f.state = telnetOpt
			case b == telnetSB:
				f.state = telnetSub
			default:
				f.state = telnetData
			}
		case telnetOpt:
			f.state = telnetData
		case telnetSub:
			if b == telnetIAC {
				f.state = telnetSubCmd
			}
		case telnetSubCmd:
			if b == telnetSE {
				f.state = telnetData
			} else {
				f.state = telnetSub
			}
		}
	}
	return n
}
