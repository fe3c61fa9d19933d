package nntp

import (
	"errors"
	"slices"
	"testing"
)

func TestBuildMissingRequiredOrder(t *testing.T) {
	tests := []struct {
		name   string
		b      *Builder
		header string
	}{
		{"nothing set", NewBuilder(), HeaderMessageID},
		{"only groups", NewBuilder().AddGroup("g").SetSubject("s").SetFrom("f"), HeaderMessageID},
		{"id set", NewBuilder().SetMessageID("1@x"), HeaderFrom},
		{"id and from", NewBuilder().SetMessageID("1@x").SetFrom("f"), HeaderSubject},
		{"no groups", NewBuilder().SetMessageID("1@x").SetFrom("f").SetSubject("s"), HeaderNewsgroups},
		{"whitespace from", NewBuilder().SetMessageID("1@x").SetFrom("  ").SetSubject("s").AddGroup("g"), HeaderFrom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if !errors.Is(err, ErrMissingRequiredHeader) {
				t.Fatalf("expected ErrMissingRequiredHeader, got %v", err)
			}
			var he *HeaderError
			if !errors.As(err, &he) || he.Header != tt.header {
				t.Fatalf("expected missing %s, got %v", tt.header, err)
			}
		})
	}
}

func TestAddHeaderReserved(t *testing.T) {
	for _, key := range []string{HeaderMessageID, HeaderFrom, HeaderSubject, HeaderNewsgroups} {
		err := NewBuilder().AddHeader(key, "x")
		if !errors.Is(err, ErrReservedHeader) {
			t.Errorf("AddHeader(%q): expected ErrReservedHeader, got %v", key, err)
		}
	}
}

func TestAddHeaderEmptyArguments(t *testing.T) {
	tests := []struct {
		key, value string
		param      string
	}{
		{"", "v", "key"},
		{"   ", "v", "key"},
		{"X-Key", "", "value"},
		{"X-Key", "\t", "value"},
		{"", "", "key"},
	}

	for _, tt := range tests {
		err := NewBuilder().AddHeader(tt.key, tt.value)
		var ae *ArgumentError
		if !errors.As(err, &ae) || !errors.Is(err, ErrArgumentEmpty) {
			t.Fatalf("AddHeader(%q, %q): expected ErrArgumentEmpty, got %v", tt.key, tt.value, err)
		}
		if ae.Param != tt.param {
			t.Errorf("AddHeader(%q, %q): param %q, want %q", tt.key, tt.value, ae.Param, tt.param)
		}
	}
}

func TestAddGroupDeduplicates(t *testing.T) {
	b := NewBuilder().AddGroup("alt.test").AddGroup(" alt.test ").AddGroup("").AddGroup("misc.test")
	if got := b.Groups(); !slices.Equal(got, []string{"alt.test", "misc.test"}) {
		t.Fatalf("groups %q", got)
	}
}

func TestBuildHeaders(t *testing.T) {
	b := NewBuilder().
		SetNumber(12).
		SetMessageID("<9@example.com>").
		SetFrom("f@example.com").
		SetSubject("subject").
		AddGroup("a").
		AddGroup("b").
		SetBody([]string{"one", "two"})
	if err := b.AddHeader("X-A", "1"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddHeader("X-A", "2"); err != nil {
		t.Fatal(err)
	}

	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if a.Number() != 12 || a.MessageID().String() != "<9@example.com>" {
		t.Fatalf("unexpected number/id %d %s", a.Number(), a.MessageID())
	}
	if a.Newsgroups() != "a;b" || !slices.Equal(a.Groups(), []string{"a", "b"}) {
		t.Fatalf("unexpected groups %q", a.Newsgroups())
	}
	if got := a.Header("X-A"); !slices.Equal(got, []string{"1", "2"}) {
		t.Fatalf("X-A values %q", got)
	}
	if got := a.Headers().Keys(); !slices.Equal(got, []string{HeaderSubject, HeaderFrom, HeaderNewsgroups, "X-A"}) {
		t.Fatalf("key order %q", got)
	}

	// Articles do not share state with the builder
	b.AddBodyLine("three")
	if len(a.Body()) != 2 {
		t.Fatal("builder change leaked into the built article")
	}
}

func TestInitializeFromRoundTrip(t *testing.T) {
	b := NewBuilder().
		SetNumber(3).
		SetMessageID("3@example.com").
		SetFrom(`"Demo User" <nobody@example.net>`).
		SetSubject("test").
		AddGroup("group").
		AddGroup("other").
		AddBodyLine("This is just a test article.").
		AddBodyLine(".")
	if err := b.AddHeader("Organization", "example"); err != nil {
		t.Fatal(err)
	}
	orig, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	nb := NewBuilder()
	if err := nb.InitializeFrom(orig); err != nil {
		t.Fatal(err)
	}
	copied, err := nb.Build()
	if err != nil {
		t.Fatal(err)
	}
	if !copied.Equal(orig) {
		t.Fatal("InitializeFrom then Build should reproduce the article")
	}
}

func TestInitializeFromNil(t *testing.T) {
	err := NewBuilder().InitializeFrom(nil)
	var ae *ArgumentError
	if !errors.As(err, &ae) || !errors.Is(err, ErrArgumentNull) || ae.Param != "article" {
		t.Fatalf("expected ArgumentError for article, got %v", err)
	}
}

func TestNormalizeMessageID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1@example.com", "<1@example.com>"},
		{"<1@example.com>", "<1@example.com>"},
		{"<1@example.com", "<<1@example.com>"},
		{"", "<>"},
	}
	for _, tt := range tests {
		if got := NormalizeMessageID(tt.in).String(); got != tt.want {
			t.Errorf("NormalizeMessageID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if NormalizeMessageID("a@b") != NormalizeMessageID("<a@b>") {
		t.Error("bracketed and bare ids should compare equal")
	}
	if got := NormalizeMessageID("<a@b>").Bare(); got != "a@b" {
		t.Errorf("Bare() = %q", got)
	}
	if !(MessageID{}).IsZero() || NewBuilder().MessageID() != (MessageID{}) {
		t.Error("unset id should be zero")
	}
}
