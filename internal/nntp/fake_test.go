package nntp

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/datallboy/gonntp/internal/domain"
)

// fakeConn replays scripted server lines and records what the client sent.
type fakeConn struct {
	script  []string
	written []string
	closed  bool
}

func newFakeConn(script ...string) *fakeConn {
	return &fakeConn{script: script}
}

func (c *fakeConn) WriteLine(line string) error {
	if c.closed {
		return errors.New("write on closed connection")
	}
	c.written = append(c.written, line)
	return nil
}

func (c *fakeConn) ReadLine() (string, error) {
	if len(c.script) == 0 {
		return "", io.EOF
	}
	line := c.script[0]
	c.script = c.script[1:]
	return line, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// fakeDialer hands every dial to a host a fresh connection running the
// script registered for that host.
type fakeDialer struct {
	mu      sync.Mutex
	scripts map[string][]string
	errs    map[string]error
	conns   map[string][]*fakeConn
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		scripts: map[string][]string{},
		errs:    map[string]error{},
		conns:   map[string][]*fakeConn{},
	}
}

func (d *fakeDialer) script(host string, lines ...string) *fakeDialer {
	d.scripts[host] = lines
	return d
}

func (d *fakeDialer) Dial(ctx context.Context, host string, port int, useTLS bool) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.errs[host]; err != nil {
		return nil, err
	}
	c := newFakeConn(append([]string(nil), d.scripts[host]...)...)
	d.conns[host] = append(d.conns[host], c)
	return c, nil
}

func (d *fakeDialer) dials(host string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns[host])
}

func (d *fakeDialer) last(host string) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	cs := d.conns[host]
	if len(cs) == 0 {
		return nil
	}
	return cs[len(cs)-1]
}

func testProvider(id string) domain.ProviderConfig {
	return domain.ProviderConfig{
		ID:            id,
		Host:          id,
		Port:          119,
		MaxConnection: 2,
		Priority:      1,
	}
}
