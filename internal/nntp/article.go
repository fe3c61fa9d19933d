package nntp

import (
	"slices"
	"strings"

	"github.com/datallboy/gonntp/internal/headers"
)

const (
	HeaderMessageID  = "Message-ID"
	HeaderFrom       = "From"
	HeaderSubject    = "Subject"
	HeaderNewsgroups = "Newsgroups"

	// GroupSeparator joins the group list into the Newsgroups header.
	GroupSeparator = ";"
)

// MessageID is a Message-ID in its canonical "<local@domain>" form.
// The zero value means unset.
type MessageID struct {
	value string
}

// NormalizeMessageID wraps s in angle brackets unless it already starts
// with '<' and ends with '>'. The interior is not validated.
func NormalizeMessageID(s string) MessageID {
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		return MessageID{value: s}
	}
	return MessageID{value: "<" + s + ">"}
}

func (id MessageID) String() string { return id.value }

func (id MessageID) IsZero() bool { return id.value == "" }

// Bare returns the id without its angle brackets.
func (id MessageID) Bare() string {
	return strings.TrimSuffix(strings.TrimPrefix(id.value, "<"), ">")
}

// Article is one Usenet article. It is immutable once constructed and
// may be shared between goroutines.
type Article struct {
	number    int64
	messageID MessageID
	headers   *headers.Map[string, string]
	body      []string
}

// NewArticle builds an Article directly, bypassing Builder validation.
// hdrs and body are copied. A number of 0 means not yet numbered.
func NewArticle(number int64, id MessageID, hdrs *headers.Map[string, string], body []string) *Article {
	a := &Article{
		number:    number,
		messageID: id,
		body:      slices.Clone(body),
	}
	if hdrs != nil {
		a.headers = hdrs.Clone()
	} else {
		a.headers = headers.NewListMap[string, string]()
	}
	return a
}

func (a *Article) Number() int64 { return a.number }

func (a *Article) MessageID() MessageID { return a.messageID }

// Newsgroups returns the Newsgroups header value.
func (a *Article) Newsgroups() string {
	v, _ := a.headers.First(HeaderNewsgroups)
	return v
}

// Groups splits the Newsgroups header into group names.
func (a *Article) Groups() []string {
	return splitGroups(a.Newsgroups())
}

func (a *Article) From() string {
	v, _ := a.headers.First(HeaderFrom)
	return v
}

func (a *Article) Subject() string {
	v, _ := a.headers.First(HeaderSubject)
	return v
}

// Header returns every value stored under key.
func (a *Article) Header(key string) []string {
	return a.headers.Get(key)
}

// Headers returns a copy of the header store.
func (a *Article) Headers() *headers.Map[string, string] {
	return a.headers.Clone()
}

// RangeHeaders walks the header store in order without copying it.
func (a *Article) RangeHeaders(fn func(key, value string) bool) {
	a.headers.Range(fn)
}

// Body returns a copy of the body lines.
func (a *Article) Body() []string {
	return slices.Clone(a.body)
}

func (a *Article) Equal(other *Article) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.number == other.number &&
		a.messageID == other.messageID &&
		a.headers.Equal(other.headers) &&
		slices.Equal(a.body, other.body)
}

func splitGroups(v string) []string {
	var out []string
	for _, g := range strings.Split(v, GroupSeparator) {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
