package nntp

import (
	"slices"
	"strings"

	"github.com/datallboy/gonntp/internal/headers"
)

// reservedHeaders can only be set through the dedicated Builder setters.
var reservedHeaders = map[string]struct{}{
	HeaderMessageID:  {},
	HeaderFrom:       {},
	HeaderSubject:    {},
	HeaderNewsgroups: {},
}

// Builder stages the fields of an Article. Setters return the builder
// so calls can be chained. A Builder can be built any number of times.
type Builder struct {
	number    int64
	messageID string
	from      string
	subject   string
	groups    []string
	headers   *headers.Map[string, string]
	body      []string
}

func NewBuilder() *Builder {
	return &Builder{headers: headers.NewListMap[string, string]()}
}

func (b *Builder) SetNumber(n int64) *Builder {
	b.number = n
	return b
}

func (b *Builder) SetMessageID(id string) *Builder {
	b.messageID = id
	return b
}

func (b *Builder) SetFrom(from string) *Builder {
	b.from = from
	return b
}

func (b *Builder) SetSubject(subject string) *Builder {
	b.subject = subject
	return b
}

// AddGroup appends name to the group list unless it is already there.
func (b *Builder) AddGroup(name string) *Builder {
	name = strings.TrimSpace(name)
	if name == "" || slices.Contains(b.groups, name) {
		return b
	}
	b.groups = append(b.groups, name)
	return b
}

// AddHeader stores an additional header. Reserved headers are rejected.
func (b *Builder) AddHeader(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return &ArgumentError{Param: "key", Err: ErrArgumentEmpty}
	}
	if strings.TrimSpace(value) == "" {
		return &ArgumentError{Param: "value", Err: ErrArgumentEmpty}
	}
	if _, ok := reservedHeaders[key]; ok {
		return &HeaderError{Header: key, Err: ErrReservedHeader}
	}
	if b.headers == nil {
		b.headers = headers.NewListMap[string, string]()
	}
	b.headers.Add(key, value)
	return nil
}

func (b *Builder) AddBodyLine(line string) *Builder {
	b.body = append(b.body, line)
	return b
}

// SetBody replaces the body. Lines must not carry line terminators.
func (b *Builder) SetBody(lines []string) *Builder {
	b.body = slices.Clone(lines)
	return b
}

// MessageID returns the staged id, normalized. It is zero when unset.
func (b *Builder) MessageID() MessageID {
	if strings.TrimSpace(b.messageID) == "" {
		return MessageID{}
	}
	return NormalizeMessageID(b.messageID)
}

func (b *Builder) From() string { return b.from }

func (b *Builder) Groups() []string { return slices.Clone(b.groups) }

// HasHeader reports whether key has been added through AddHeader.
func (b *Builder) HasHeader(key string) bool {
	return b.headers != nil && b.headers.Has(key)
}

// InitializeFrom replaces the staged state with the fields of a.
func (b *Builder) InitializeFrom(a *Article) error {
	if a == nil {
		return &ArgumentError{Param: "article", Err: ErrArgumentNull}
	}

	b.number = a.Number()
	b.messageID = a.MessageID().String()
	b.from = a.From()
	b.subject = a.Subject()
	b.groups = nil
	for _, g := range a.Groups() {
		b.AddGroup(g)
	}

	b.headers = headers.NewListMap[string, string]()
	a.RangeHeaders(func(k, v string) bool {
		if _, ok := reservedHeaders[k]; !ok {
			b.headers.Add(k, v)
		}
		return true
	})
	b.body = a.Body()
	return nil
}

// Build validates the staged fields and returns a new Article.
// Required fields are checked in the order Message-ID, From, Subject,
// Newsgroups and the first missing one is reported.
func (b *Builder) Build() (*Article, error) {
	switch {
	case strings.TrimSpace(b.messageID) == "":
		return nil, &HeaderError{Header: HeaderMessageID, Err: ErrMissingRequiredHeader}
	case strings.TrimSpace(b.from) == "":
		return nil, &HeaderError{Header: HeaderFrom, Err: ErrMissingRequiredHeader}
	case strings.TrimSpace(b.subject) == "":
		return nil, &HeaderError{Header: HeaderSubject, Err: ErrMissingRequiredHeader}
	case len(b.groups) == 0:
		return nil, &HeaderError{Header: HeaderNewsgroups, Err: ErrMissingRequiredHeader}
	}

	hdrs := headers.NewListMap[string, string]()
	hdrs.Add(HeaderSubject, b.subject)
	hdrs.Add(HeaderFrom, b.from)
	hdrs.Add(HeaderNewsgroups, strings.Join(b.groups, GroupSeparator))
	if b.headers != nil {
		b.headers.Range(func(k, v string) bool {
			hdrs.Add(k, v)
			return true
		})
	}

	return &Article{
		number:    b.number,
		messageID: NormalizeMessageID(b.messageID),
		headers:   hdrs,
		body:      slices.Clone(b.body),
	}, nil
}
