package nntp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"time"
)

// TextConn carries NNTP lines over a textproto connection. Writes are
// buffered and flushed before the next read, so a whole article goes out
// in as few packets as possible.
type TextConn struct {
	conn *textproto.Conn
}

func NewTextConn(rwc io.ReadWriteCloser) *TextConn {
	return &TextConn{conn: textproto.NewConn(rwc)}
}

// WriteLine writes line followed by CRLF.
func (c *TextConn) WriteLine(line string) error {
	if _, err := c.conn.W.WriteString(line); err != nil {
		return err
	}
	_, err := c.conn.W.WriteString("\r\n")
	return err
}

func (c *TextConn) ReadLine() (string, error) {
	if err := c.conn.W.Flush(); err != nil {
		return "", err
	}
	return c.conn.ReadLine()
}

func (c *TextConn) Close() error {
	c.conn.W.Flush()
	return c.conn.Close()
}

// NetDialer dials plain TCP or TLS connections.
type NetDialer struct {
	Timeout time.Duration
	// TLSConfig is cloned per dial; ServerName defaults to the host.
	TLSConfig *tls.Config
}

func (d NetDialer) Dial(ctx context.Context, host string, port int, useTLS bool) (Conn, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))

	timeout := d.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	nd := &net.Dialer{Timeout: timeout}

	var conn net.Conn
	var err error

	if useTLS {
		cfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if d.TLSConfig != nil {
			cfg = d.TLSConfig.Clone()
		}
		if cfg.ServerName == "" {
			cfg.ServerName = host
		}
		td := &tls.Dialer{NetDialer: nd, Config: cfg}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		// Fallback for non-SSL ports
		conn, err = nd.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	return NewTextConn(conn), nil
}
