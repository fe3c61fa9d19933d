package nntp

import (
	"context"
	"errors"
	"fmt"

	"github.com/datallboy/gonntp/internal/domain"
)

// PostResult describes an article accepted by the server.
type PostResult struct {
	MessageID MessageID
	Digest    string
	Lines     int
}

// Client is a single connection to one configured server. It dials on
// first use and is not safe for concurrent use.
type Client struct {
	conf     domain.ProviderConfig
	dialer   Dialer
	session  *Session
	greeting Greeting
}

func NewClient(c domain.ProviderConfig, dialer Dialer) *Client {
	if dialer == nil {
		dialer = NetDialer{}
	}
	return &Client{conf: c, dialer: dialer}
}

func (c *Client) ID() string { return c.conf.ID }

func (c *Client) Priority() int { return c.conf.Priority }

func (c *Client) MaxConnection() int { return c.conf.MaxConnection }

// Greeting returns the greeting of the current connection.
func (c *Client) Greeting() Greeting { return c.greeting }

// Connect dials and authenticates unless already connected.
func (c *Client) Connect(ctx context.Context) error {
	if c.session != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s, greeting, err := Connect(ctx, c.dialer, c.conf.Host, c.conf.Port, c.conf.TLS, GreetingParser())
	if err != nil {
		return fmt.Errorf("connection to %s failed: %w", c.conf.ID, err)
	}
	c.session = s
	c.greeting = greeting

	if err := c.authenticate(); err != nil {
		c.reset()
		return fmt.Errorf("authentication with %s failed: %w", c.conf.ID, err)
	}
	return nil
}

func (c *Client) authenticate() error {
	if c.conf.Username == "" {
		return nil
	}

	// 381: Password required
	if _, err := Command(c.session, "AUTHINFO USER "+c.conf.Username, ExpectStatus(381)); err != nil {
		return err
	}
	// 281: Authentication accepted
	_, err := Command(c.session, "AUTHINFO PASS "+c.conf.Password, ExpectStatus(281))
	return err
}

// Group selects a newsgroup.
func (c *Client) Group(ctx context.Context, name string) (Group, error) {
	if err := c.Connect(ctx); err != nil {
		return Group{}, err
	}
	g, err := Command(c.session, "GROUP "+name, GroupParser{})
	return g, c.check(err)
}

// Article retrieves a whole article. ref is a message id or an
// article number in the selected group.
func (c *Client) Article(ctx context.Context, ref string) (*Article, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	a, err := MultiLineCommand(c.session, "ARTICLE "+ref, NewArticleParser())
	return a, c.check(err)
}

// Head retrieves the headers of an article; the result has no body.
func (c *Client) Head(ctx context.Context, ref string) (*Article, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	a, err := MultiLineCommand(c.session, "HEAD "+ref, NewHeadParser())
	return a, c.check(err)
}

func (c *Client) Body(ctx context.Context, ref string) (BodyResponse, error) {
	if err := c.Connect(ctx); err != nil {
		return BodyResponse{}, err
	}
	b, err := MultiLineCommand(c.session, "BODY "+ref, NewBodyParser())
	return b, c.check(err)
}

// Stat checks that an article exists without transferring it.
func (c *Client) Stat(ctx context.Context, ref string) (MessageID, error) {
	if err := c.Connect(ctx); err != nil {
		return MessageID{}, err
	}
	st, err := Command(c.session, "STAT "+ref, ExpectStatus(223))
	if err = c.check(err); err != nil {
		return MessageID{}, err
	}
	_, id, err := articleStatus(st, nil)
	return id, err
}

func (c *Client) Capabilities(ctx context.Context) ([]string, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	lines, err := MultiLineCommand(c.session, "CAPABILITIES", NewTextParser(101))
	return lines, c.check(err)
}

// Post sends a through POST. The server must answer 340 before the
// article is written and 240 after it. Losing the connection while
// waiting for the 240 yields ErrPostUnconfirmed.
func (c *Client) Post(ctx context.Context, a *Article) (PostResult, error) {
	if a == nil {
		return PostResult{}, &ArgumentError{Param: "article", Err: ErrArgumentNull}
	}
	if err := c.Connect(ctx); err != nil {
		return PostResult{}, err
	}

	if _, err := Command(c.session, "POST", ExpectStatus(340)); err != nil {
		return PostResult{}, c.check(err)
	}

	dw := NewDigestWriter(c.session)
	if err := WriteArticle(dw, a); err != nil {
		// The server is still waiting for the article body.
		c.reset()
		return PostResult{}, err
	}

	if _, err := Expect(c.session, ExpectStatus(240)); err != nil {
		var pe *ProtocolError
		if errors.As(err, &pe) && pe.Op == "read" {
			c.reset()
			return PostResult{}, fmt.Errorf("%w: %s: %w", ErrPostUnconfirmed, a.MessageID(), err)
		}
		return PostResult{}, c.check(err)
	}

	return PostResult{MessageID: a.MessageID(), Digest: dw.Sum(), Lines: dw.Lines()}, nil
}

// check drops the connection after transport failures so the next call
// redials. Status errors leave the connection usable.
func (c *Client) check(err error) error {
	if err == nil {
		return nil
	}
	var pe *ProtocolError
	if errors.As(err, &pe) && (pe.Op == "read" || pe.Op == "write") {
		c.reset()
	}
	return err
}

func (c *Client) reset() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}

// Close sends QUIT so the server can release the connection slot
// immediately.
func (c *Client) Close() error {
	if c.session == nil {
		return nil
	}
	Command(c.session, "QUIT", ExpectStatus(205))
	err := c.session.Close()
	c.session = nil
	return err
}
