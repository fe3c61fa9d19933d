package nntp

import (
	"context"
	"fmt"
)

// Conn is the line transport a Session runs over.
type Conn interface {
	LineWriter
	// ReadLine returns the next line without its terminator.
	ReadLine() (string, error)
	Close() error
}

// Dialer establishes a Conn to an NNTP server.
type Dialer interface {
	Dial(ctx context.Context, host string, port int, useTLS bool) (Conn, error)
}

// LineParser interprets a response made of a fixed number of lines.
type LineParser[T any] interface {
	// Lines is the number of response lines Parse needs.
	Lines() int
	Parse(lines []string) (T, error)
}

// MultiLineParser consumes a response line by line. It recognizes the
// "." terminator itself and reports done once it has seen it, or once
// the status line rules out a data block.
type MultiLineParser[T any] interface {
	Feed(line string) (done bool, err error)
	Result() (T, error)
}

// Session runs one command/response exchange at a time over a Conn.
// It knows nothing about response grammars; parsers are passed per
// command. A Session must not be used from several goroutines at once.
type Session struct {
	conn Conn
}

func NewSession(conn Conn) *Session {
	return &Session{conn: conn}
}

// Connect dials host:port and parses the server greeting with p.
func Connect[T any](ctx context.Context, d Dialer, host string, port int, useTLS bool, p LineParser[T]) (*Session, T, error) {
	var zero T

	conn, err := d.Dial(ctx, host, port, useTLS)
	if err != nil {
		return nil, zero, protocolError("connect", fmt.Errorf("dial %s:%d: %w", host, port, err))
	}

	s := NewSession(conn)
	greeting, err := Expect(s, p)
	if err != nil {
		conn.Close()
		return nil, zero, err
	}
	return s, greeting, nil
}

// WriteLine sends a single line. It lets the session act as the sink
// for WriteArticle.
func (s *Session) WriteLine(line string) error {
	if err := s.conn.WriteLine(line); err != nil {
		return protocolError("write", err)
	}
	return nil
}

func (s *Session) readLine() (string, error) {
	line, err := s.conn.ReadLine()
	if err != nil {
		return "", protocolError("read", err)
	}
	return line, nil
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Command sends cmd and parses the single-line response with p.
func Command[T any](s *Session, cmd string, p LineParser[T]) (T, error) {
	var zero T
	if err := s.WriteLine(cmd); err != nil {
		return zero, err
	}
	return Expect(s, p)
}

// Expect reads the lines p asks for without sending anything first.
// It is used for greetings and for the second response of POST.
func Expect[T any](s *Session, p LineParser[T]) (T, error) {
	var zero T

	n := p.Lines()
	if n < 1 {
		n = 1
	}
	lines := make([]string, 0, n)
	for len(lines) < n {
		line, err := s.readLine()
		if err != nil {
			return zero, err
		}
		lines = append(lines, line)
	}
	return p.Parse(lines)
}

// MultiLineCommand sends cmd and feeds response lines to p until it
// reports the response complete.
func MultiLineCommand[T any](s *Session, cmd string, p MultiLineParser[T]) (T, error) {
	var zero T
	if err := s.WriteLine(cmd); err != nil {
		return zero, err
	}

	for {
		line, err := s.readLine()
		if err != nil {
			return zero, err
		}
		done, err := p.Feed(line)
		if err != nil {
			return zero, err
		}
		if done {
			return p.Result()
		}
	}
}
