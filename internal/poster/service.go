// Package poster turns posting requests into articles and hands them to
// the providers, recording every accepted article in the journal.
package poster

import (
	"context"
	"fmt"
	"strings"

	"github.com/datallboy/gonntp/internal/app"
	"github.com/datallboy/gonntp/internal/domain"
	"github.com/datallboy/gonntp/internal/headers"
	"github.com/datallboy/gonntp/internal/msgid"
	"github.com/datallboy/gonntp/internal/nntp"
	"github.com/datallboy/gonntp/internal/policy"
)

// Request is a posting request as accepted by the HTTP API and the CLI.
// Empty MessageID and From fall back to generated and configured values.
type Request struct {
	MessageID string                       `json:"message_id"`
	From      string                       `json:"from"`
	Subject   string                       `json:"subject"`
	Groups    []string                     `json:"groups"`
	Headers   *headers.Map[string, string] `json:"headers"`
	Body      []string                     `json:"body"`
}

type Service struct {
	app    *app.Context
	policy *policy.GroupPolicy
	ids    *msgid.Generator
}

func NewService(appCtx *app.Context) (*Service, error) {
	p, err := policy.NewGroupPolicy(appCtx.Config.Post.AllowedGroups)
	if err != nil {
		return nil, err
	}
	return &Service{
		app:    appCtx,
		policy: p,
		ids:    msgid.NewGenerator(appCtx.Config.Post.Domain),
	}, nil
}

// Builder stages req. Header errors are returned as the builder reports them.
func (s *Service) Builder(req Request) (*nntp.Builder, error) {
	b := nntp.NewBuilder().
		SetMessageID(req.MessageID).
		SetFrom(req.From).
		SetSubject(req.Subject).
		SetBody(req.Body)
	for _, g := range req.Groups {
		b.AddGroup(g)
	}

	if req.Headers != nil {
		var err error
		req.Headers.Range(func(k, v string) bool {
			err = b.AddHeader(k, v)
			return err == nil
		})
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Prepare fills in configured defaults, builds the article and checks
// its groups against the allow-list. A generated message id is stored
// back into b so a second attempt posts under the same id.
func (s *Service) Prepare(b *nntp.Builder) (*nntp.Article, error) {
	cfg := s.app.Config.Post

	if b.MessageID().IsZero() {
		b.SetMessageID(s.ids.Next().String())
	}
	if strings.TrimSpace(b.From()) == "" && cfg.From != "" {
		b.SetFrom(cfg.From)
	}
	if cfg.Organization != "" && !b.HasHeader("Organization") {
		if err := b.AddHeader("Organization", cfg.Organization); err != nil {
			return nil, err
		}
	}
	if cfg.UserAgent != "" && !b.HasHeader("User-Agent") {
		if err := b.AddHeader("User-Agent", cfg.UserAgent); err != nil {
			return nil, err
		}
	}

	a, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(a.Groups()); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Post(ctx context.Context, req Request) (*domain.PostRecord, error) {
	b, err := s.Builder(req)
	if err != nil {
		return nil, err
	}
	return s.Publish(ctx, b)
}

// Publish prepares b, posts it and records the result. A journal
// failure is logged but does not fail an accepted post.
func (s *Service) Publish(ctx context.Context, b *nntp.Builder) (*domain.PostRecord, error) {
	a, err := s.Prepare(b)
	if err != nil {
		return nil, err
	}

	res, provider, err := s.app.NNTP.Post(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", a.MessageID(), err)
	}
	s.app.Logger.Info("Posted %s to %s via %s", a.MessageID(), a.Newsgroups(), provider)

	rec := &domain.PostRecord{
		MessageID:  res.MessageID.String(),
		Newsgroups: a.Newsgroups(),
		Subject:    a.Subject(),
		Provider:   provider,
		Digest:     res.Digest,
		Lines:      res.Lines,
	}
	if s.app.Journal != nil {
		if err := s.app.Journal.Record(ctx, rec); err != nil {
			s.app.Logger.Error("Journal write failed for %s: %v", rec.MessageID, err)
		}
	}
	return rec, nil
}
