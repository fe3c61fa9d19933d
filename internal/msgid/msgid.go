// Package msgid generates Message-IDs for outgoing articles.
package msgid

import (
	"strings"

	"github.com/segmentio/ksuid"

	"github.com/datallboy/gonntp/internal/nntp"
)

// Generator produces ids of the form <ksuid@domain>, so ids from one
// poster sort roughly by creation time.
type Generator struct {
	domain string
}

func NewGenerator(domain string) *Generator {
	domain = strings.Trim(strings.TrimSpace(domain), "<>@")
	if domain == "" {
		domain = "gonntp.invalid"
	}
	return &Generator{domain: domain}
}

func (g *Generator) Next() nntp.MessageID {
	return nntp.NormalizeMessageID(ksuid.New().String() + "@" + g.domain)
}
