package app

import (
	"context"

	"github.com/datallboy/gonntp/internal/domain"
	"github.com/datallboy/gonntp/internal/infra/config"
	"github.com/datallboy/gonntp/internal/infra/logger"
	"github.com/datallboy/gonntp/internal/nntp"
)

// NNTPManager lets services reach the providers without holding a Manager
type NNTPManager interface {
	Post(ctx context.Context, a *nntp.Article) (nntp.PostResult, string, error)
	Fetch(ctx context.Context, id nntp.MessageID) (*nntp.Article, error)
	TotalCapacity() int
	Close() error
}

// Journal records every article a provider accepted
type Journal interface {
	Record(ctx context.Context, rec *domain.PostRecord) error
	GetByMessageID(ctx context.Context, messageID string) (*domain.PostRecord, error)
	Recent(ctx context.Context, limit int) ([]*domain.PostRecord, error)
	Close() error
}

// Context hold the core environment and shared resources for gonntp.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	NNTP    NNTPManager
	Journal Journal
}

// NewContext initializes the base environment.
func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: log,
	}
}

// Close releases the provider connections and the journal.
func (c *Context) Close() error {
	var first error
	if c.NNTP != nil {
		first = c.NNTP.Close()
	}
	if c.Journal != nil {
		if err := c.Journal.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
