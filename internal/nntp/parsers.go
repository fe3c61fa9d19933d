package nntp

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/datallboy/gonntp/internal/headers"
)

// Status is a parsed response status line.
type Status struct {
	Code    int
	Message string
}

// ParseStatus splits "NNN message" into its code and message.
func ParseStatus(line string) (Status, error) {
	if len(line) < 3 {
		return Status{}, protocolError("parse status", ErrMalformedResponse, line)
	}
	code, err := strconv.Atoi(line[:3])
	if err != nil || code < 100 || code > 599 {
		return Status{}, protocolError("parse status", ErrMalformedResponse, line)
	}
	if len(line) > 3 && line[3] != ' ' {
		return Status{}, protocolError("parse status", ErrMalformedResponse, line)
	}
	return Status{Code: code, Message: strings.TrimSpace(line[3:])}, nil
}

// statusError maps codes with a known meaning to their sentinel.
func statusError(st Status, lines []string) error {
	var err error
	switch st.Code {
	case 420, 423, 430:
		err = ErrArticleNotFound
	case 411:
		err = ErrNoSuchGroup
	case 440:
		err = ErrPostingNotPermitted
	case 441:
		err = ErrPostingFailed
	case 481, 482, 502:
		err = ErrAuthRejected
	default:
		err = ErrUnexpectedStatus
	}
	return protocolError("status", fmt.Errorf("%w: %d %s", err, st.Code, st.Message), lines...)
}

// StatusParser accepts a single status line carrying one of Expect.
type StatusParser struct {
	Expect []int
}

func ExpectStatus(codes ...int) StatusParser {
	return StatusParser{Expect: codes}
}

func (p StatusParser) Lines() int { return 1 }

func (p StatusParser) Parse(lines []string) (Status, error) {
	st, err := ParseStatus(lines[0])
	if err != nil {
		return Status{}, err
	}
	if len(p.Expect) > 0 && !slices.Contains(p.Expect, st.Code) {
		return Status{}, statusError(st, lines)
	}
	return st, nil
}

// Greeting is the server's initial response.
type Greeting struct {
	Status
	PostingAllowed bool
}

type greetingParser struct{}

// GreetingParser accepts 200 (posting allowed) and 201 (no posting).
func GreetingParser() LineParser[Greeting] { return greetingParser{} }

func (greetingParser) Lines() int { return 1 }

func (greetingParser) Parse(lines []string) (Greeting, error) {
	st, err := ExpectStatus(200, 201).Parse(lines)
	if err != nil {
		return Greeting{}, err
	}
	return Greeting{Status: st, PostingAllowed: st.Code == 200}, nil
}

// Group is the result of selecting a newsgroup.
type Group struct {
	Name  string
	Count int64
	Low   int64
	High  int64
}

// GroupParser parses "211 count low high name".
type GroupParser struct{}

func (GroupParser) Lines() int { return 1 }

func (GroupParser) Parse(lines []string) (Group, error) {
	st, err := ExpectStatus(211).Parse(lines)
	if err != nil {
		return Group{}, err
	}

	// count first last name
	parts := strings.Fields(st.Message)
	if len(parts) < 4 {
		return Group{}, protocolError("parse group", ErrMalformedResponse, lines...)
	}
	var nums [3]int64
	for i := range nums {
		if nums[i], err = strconv.ParseInt(parts[i], 10, 64); err != nil {
			return Group{}, protocolError("parse group", ErrMalformedResponse, lines...)
		}
	}
	return Group{Name: parts[3], Count: nums[0], Low: nums[1], High: nums[2]}, nil
}

// dataBlock does the framing shared by multi-line parsers: one status
// line, then dot-stuffed lines up to a lone ".".
type dataBlock struct {
	expect  []int
	status  Status
	raw     []string
	lines   []string
	started bool
	done    bool
}

func (b *dataBlock) Feed(line string) (bool, error) {
	if b.done {
		return true, nil
	}
	b.raw = append(b.raw, line)

	if !b.started {
		st, err := ParseStatus(line)
		if err != nil {
			return true, err
		}
		if !slices.Contains(b.expect, st.Code) {
			b.done = true
			return true, statusError(st, b.raw)
		}
		b.started = true
		b.status = st
		return false, nil
	}

	if line == "." {
		b.done = true
		return true, nil
	}
	b.lines = append(b.lines, UnstuffLine(line))
	return false, nil
}

func (b *dataBlock) complete(op string) error {
	if !b.done {
		return protocolError(op, fmt.Errorf("%w: response not terminated", ErrMalformedResponse), b.raw...)
	}
	return nil
}

// articleStatus parses "n <message-id>" from 220-223 responses.
func articleStatus(st Status, raw []string) (int64, MessageID, error) {
	parts := strings.Fields(st.Message)
	if len(parts) < 2 {
		return 0, MessageID{}, protocolError("parse article status", ErrMalformedResponse, raw...)
	}
	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, MessageID{}, protocolError("parse article status", ErrMalformedResponse, raw...)
	}
	return n, NormalizeMessageID(parts[1]), nil
}

// ArticleParser reads ARTICLE (220) and HEAD (221) responses.
type ArticleParser struct {
	dataBlock
}

func NewArticleParser() *ArticleParser {
	return &ArticleParser{dataBlock{expect: []int{220}}}
}

func NewHeadParser() *ArticleParser {
	return &ArticleParser{dataBlock{expect: []int{221}}}
}

func (p *ArticleParser) Result() (*Article, error) {
	if err := p.complete("parse article"); err != nil {
		return nil, err
	}
	number, id, err := articleStatus(p.status, p.raw[:1])
	if err != nil {
		return nil, err
	}

	hdrs, rest, err := ParseHeaderBlock(p.lines)
	if err != nil {
		return nil, protocolError("parse article", err, p.raw...)
	}
	// Servers differ in how they case Message-ID.
	found := false
	for _, k := range hdrs.Keys() {
		if !strings.EqualFold(k, HeaderMessageID) {
			continue
		}
		if v, ok := hdrs.First(k); ok && !found {
			id = NormalizeMessageID(v)
			found = true
		}
		hdrs.RemoveKey(k)
	}

	var body []string
	if p.status.Code == 220 {
		body = rest
	}
	return NewArticle(number, id, hdrs, body), nil
}

// ParseHeaderBlock reads "Key: Value" lines up to the first empty line
// and returns the headers and the lines after the separator.
// Continuation lines are joined to the previous value with their
// leading whitespace kept. The one exception is a tab following a line
// of exactly MaxHeaderLineLength characters: that is a FoldHeader split
// and the tab is dropped.
func ParseHeaderBlock(lines []string) (*headers.Map[string, string], []string, error) {
	hdrs := headers.NewListMap[string, string]()

	type entry struct{ key, value string }
	var entries []entry

	i := 0
	prev := ""
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			i++
			break
		}
		if line[0] == '\t' || line[0] == ' ' {
			if len(entries) == 0 {
				return nil, nil, fmt.Errorf("%w: continuation before first header", ErrMalformedResponse)
			}
			part := line
			if line[0] == '\t' && utf8.RuneCountInString(prev) == MaxHeaderLineLength {
				part = line[1:]
			}
			entries[len(entries)-1].value += part
			prev = line
			continue
		}
		entries = append(entries, entry{value: line})
		prev = line
	}

	// Split only once unfolded, a fold may cut through the key.
	for _, e := range entries {
		k, v, ok := strings.Cut(e.value, ":")
		if !ok || k == "" {
			return nil, nil, fmt.Errorf("%w: bad header line %q", ErrMalformedResponse, e.value)
		}
		hdrs.Add(k, strings.TrimPrefix(v, " "))
	}

	return hdrs, lines[min(i, len(lines)):], nil
}

// BodyResponse is the result of a BODY command.
type BodyResponse struct {
	Number    int64
	MessageID MessageID
	Lines     []string
}

// BodyParser reads BODY (222) responses.
type BodyParser struct {
	dataBlock
}

func NewBodyParser() *BodyParser {
	return &BodyParser{dataBlock{expect: []int{222}}}
}

func (p *BodyParser) Result() (BodyResponse, error) {
	if err := p.complete("parse body"); err != nil {
		return BodyResponse{}, err
	}
	n, id, err := articleStatus(p.status, p.raw[:1])
	if err != nil {
		return BodyResponse{}, err
	}
	return BodyResponse{Number: n, MessageID: id, Lines: slices.Clone(p.lines)}, nil
}

// TextParser returns the unstuffed data block of any multi-line
// response with one of the given codes, such as CAPABILITIES or HELP.
type TextParser struct {
	dataBlock
}

func NewTextParser(codes ...int) *TextParser {
	return &TextParser{dataBlock{expect: codes}}
}

func (p *TextParser) Result() ([]string, error) {
	if err := p.complete("parse text"); err != nil {
		return nil, err
	}
	return slices.Clone(p.lines), nil
}
