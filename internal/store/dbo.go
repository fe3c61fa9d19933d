package store

import (
	"time"

	"github.com/datallboy/gonntp/internal/domain"
)

// postDBO maps to the posted_articles table
type postDBO struct {
	ID         string `db:"id"`
	MessageID  string `db:"message_id"`
	Newsgroups string `db:"newsgroups"`
	Subject    string `db:"subject"`
	Provider   string `db:"provider"`
	Digest     string `db:"digest"`
	Lines      int    `db:"lines"`
	PostedAt   int64  `db:"posted_at"`
}

// Mapper: DBO to Domain PostRecord
func (p *postDBO) ToDomain() *domain.PostRecord {
	return &domain.PostRecord{
		ID:         p.ID,
		MessageID:  p.MessageID,
		Newsgroups: p.Newsgroups,
		Subject:    p.Subject,
		Provider:   p.Provider,
		Digest:     p.Digest,
		Lines:      p.Lines,
		PostedAt:   time.Unix(p.PostedAt, 0).UTC(),
	}
}

// Mapper: Domain PostRecord to DBO
func (p *postDBO) FromDomain(rec *domain.PostRecord) {
	p.ID = rec.ID
	p.MessageID = rec.MessageID
	p.Newsgroups = rec.Newsgroups
	p.Subject = rec.Subject
	p.Provider = rec.Provider
	p.Digest = rec.Digest
	p.Lines = rec.Lines

	if !rec.PostedAt.IsZero() {
		p.PostedAt = rec.PostedAt.Unix()
	} else {
		p.PostedAt = 0
	}
}
