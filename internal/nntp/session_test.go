package nntp

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestCommandWritesAndParses(t *testing.T) {
	conn := newFakeConn("211 1234 3000 4233 alt.test")
	s := NewSession(conn)

	g, err := Command(s, "GROUP alt.test", GroupParser{})
	if err != nil {
		t.Fatal(err)
	}
	if g != (Group{Name: "alt.test", Count: 1234, Low: 3000, High: 4233}) {
		t.Fatalf("unexpected group %+v", g)
	}
	if !slices.Equal(conn.written, []string{"GROUP alt.test"}) {
		t.Fatalf("sent %q", conn.written)
	}
}

func TestCommandStatusErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"411 no such group", ErrNoSuchGroup},
		{"500 what?", ErrUnexpectedStatus},
		{"garbage", ErrMalformedResponse},
		{"21", ErrMalformedResponse},
		{"2111 extra digit", ErrMalformedResponse},
		{"211 1 2", ErrMalformedResponse},
		{"211 x 1 2 alt.test", ErrMalformedResponse},
	}

	for _, tt := range tests {
		s := NewSession(newFakeConn(tt.line))
		_, err := Command(s, "GROUP alt.test", GroupParser{})
		if !errors.Is(err, tt.want) || !errors.Is(err, ErrProtocol) {
			t.Errorf("%q: expected %v, got %v", tt.line, tt.want, err)
			continue
		}
		var pe *ProtocolError
		if !errors.As(err, &pe) || !slices.Contains(pe.Lines, tt.line) {
			t.Errorf("%q: error should carry the offending line, got %v", tt.line, err)
		}
	}
}

func TestCommandTransportError(t *testing.T) {
	s := NewSession(newFakeConn())
	_, err := Command(s, "DATE", ExpectStatus(111))

	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Op != "read" {
		t.Fatalf("expected read ProtocolError, got %v", err)
	}

	conn := newFakeConn("200 ok")
	conn.Close()
	_, err = Command(NewSession(conn), "DATE", ExpectStatus(111))
	if !errors.As(err, &pe) || pe.Op != "write" {
		t.Fatalf("expected write ProtocolError, got %v", err)
	}
}

func TestConnect(t *testing.T) {
	d := newFakeDialer().script("news", "201 server ready, no posting")

	s, g, err := Connect(context.Background(), d, "news", 119, false, GreetingParser())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if g.Code != 201 || g.PostingAllowed {
		t.Fatalf("unexpected greeting %+v", g)
	}
}

func TestConnectFailures(t *testing.T) {
	d := newFakeDialer().script("busy", "502 go away")
	d.errs["down"] = errors.New("connection refused")

	_, _, err := Connect(context.Background(), d, "down", 119, false, GreetingParser())
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Op != "connect" {
		t.Fatalf("expected connect ProtocolError, got %v", err)
	}

	_, _, err = Connect(context.Background(), d, "busy", 119, false, GreetingParser())
	if !errors.Is(err, ErrAuthRejected) {
		t.Fatalf("expected 502 to be rejected, got %v", err)
	}
	if !d.last("busy").closed {
		t.Fatal("connection should be closed after a rejected greeting")
	}
}

func TestMultiLineCommandArticle(t *testing.T) {
	long := strings.Repeat("0123456789", 250)
	b := NewBuilder().
		SetNumber(42).
		SetMessageID("42@example.com").
		SetFrom("f@example.com").
		SetSubject("round trip").
		AddGroup("alt.test").
		SetBody([]string{"first", "", ".dotted", "."})
	if err := b.AddHeader("X-Long", long); err != nil {
		t.Fatal(err)
	}
	orig, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	var wire LineBuffer
	if err := WriteArticle(&wire, orig); err != nil {
		t.Fatal(err)
	}
	script := append([]string{"220 42 <42@example.com>"}, wire...)
	// A line after the terminator must not be consumed
	script = append(script, "211 1 1 1 next")
	conn := newFakeConn(script...)

	got, err := MultiLineCommand(NewSession(conn), "ARTICLE <42@example.com>", NewArticleParser())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(orig) {
		t.Fatalf("parsed article differs:\n%q\n%q", got.Headers().Keys(), got.Body())
	}
	if len(conn.script) != 1 {
		t.Fatalf("parser consumed past the terminator, %d lines left", len(conn.script))
	}
}

func TestMultiLineCommandHead(t *testing.T) {
	conn := newFakeConn(
		"221 7 <7@example.com> head follows",
		"Subject: folded",
		"\tsubject",
		"From: f@example.com",
		".",
	)
	a, err := MultiLineCommand(NewSession(conn), "HEAD 7", NewHeadParser())
	if err != nil {
		t.Fatal(err)
	}
	if a.Number() != 7 || a.MessageID().String() != "<7@example.com>" {
		t.Fatalf("unexpected status fields %d %s", a.Number(), a.MessageID())
	}
	if a.Subject() != "folded\tsubject" || len(a.Body()) != 0 {
		t.Fatalf("unexpected head %q %q", a.Subject(), a.Body())
	}
}

func TestMultiLineCommandErrors(t *testing.T) {
	tests := []struct {
		name   string
		script []string
		want   error
	}{
		{"not found", []string{"430 no such article"}, ErrArticleNotFound},
		{"unterminated", []string{"220 1 <a@b>", "Subject: x"}, ErrProtocol},
		{"bad status fields", []string{"220 x", "."}, ErrMalformedResponse},
		{"continuation first", []string{"220 1 <a@b>", "\tfolded", "", "."}, ErrMalformedResponse},
		{"no colon", []string{"220 1 <a@b>", "Subject x", "", "."}, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MultiLineCommand(NewSession(newFakeConn(tt.script...)), "ARTICLE 1", NewArticleParser())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBodyAndTextParsers(t *testing.T) {
	conn := newFakeConn("222 5 <5@example.com>", "..one", "two", ".")
	body, err := MultiLineCommand(NewSession(conn), "BODY 5", NewBodyParser())
	if err != nil {
		t.Fatal(err)
	}
	if body.Number != 5 || !slices.Equal(body.Lines, []string{".one", "two"}) {
		t.Fatalf("unexpected body %+v", body)
	}

	conn = newFakeConn("101 Capability list:", "VERSION 2", "READER", "POST", ".")
	caps, err := MultiLineCommand(NewSession(conn), "CAPABILITIES", NewTextParser(101))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(caps, []string{"VERSION 2", "READER", "POST"}) {
		t.Fatalf("unexpected capabilities %q", caps)
	}
}

func TestParseHeaderBlock(t *testing.T) {
	hdrs, rest, err := ParseHeaderBlock([]string{
		"Subject: hello",
		" world",
		"Keywords: a,",
		"\tb",
		"X-Empty:",
		"X-Tight:value",
		"",
		"body",
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct{ key, want string }{
		{"Subject", "hello world"},
		{"Keywords", "a,\tb"},
		{"X-Empty", ""},
		{"X-Tight", "value"},
	}
	for _, tt := range tests {
		if v, _ := hdrs.First(tt.key); v != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, v, tt.want)
		}
	}
	if !slices.Equal(rest, []string{"body"}) {
		t.Fatalf("rest %q", rest)
	}
}

func TestParseHeaderBlockUndoesFoldHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"exactly two lines", strings.Repeat("x", MaxHeaderLineLength)},
		{"three lines", strings.Repeat("y", 2*MaxHeaderLineLength+10)},
		{"tab inside value", strings.Repeat("z", MaxHeaderLineLength-12) + "\tafter tab " + strings.Repeat("w", 500)},
		{"multibyte", strings.Repeat("é", 1500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := append(FoldHeader("X-Long", tt.value), "")
			hdrs, _, err := ParseHeaderBlock(lines)
			if err != nil {
				t.Fatal(err)
			}
			if v, _ := hdrs.First("X-Long"); v != tt.value {
				t.Fatalf("unfolded value differs: got %d runes, want %d", len([]rune(v)), len([]rune(tt.value)))
			}
		})
	}
}

func TestArticleParserMessageIDCase(t *testing.T) {
	conn := newFakeConn(
		"220 3 <status@example.com>",
		"Message-Id: <header@example.com>",
		"Newsgroups: alt.test",
		"From: f@example.com",
		"Subject: s",
		"",
		"body",
		".",
	)
	a, err := MultiLineCommand(NewSession(conn), "ARTICLE 3", NewArticleParser())
	if err != nil {
		t.Fatal(err)
	}
	if a.MessageID().String() != "<header@example.com>" {
		t.Fatalf("message id = %s", a.MessageID())
	}
	if a.Headers().Has("Message-Id") {
		t.Fatal("Message-Id should move out of the header store")
	}

	var wire LineBuffer
	if err := WriteArticle(&wire, a); err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, l := range wire {
		if strings.HasPrefix(strings.ToLower(l), "message-id:") {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("wire form carries %d Message-ID lines: %q", n, wire)
	}
}
