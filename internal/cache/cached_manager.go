package cache

import (
	"context"

	"github.com/datallboy/gonntp/internal/app"
	"github.com/datallboy/gonntp/internal/infra/logger"
	"github.com/datallboy/gonntp/internal/nntp"
)

// Spool is the storage behind CachedManager, making it swappable.
type Spool interface {
	Get(id nntp.MessageID) (*nntp.Article, error)
	Put(a *nntp.Article) error
}

// CachedManager decorates an NNTP manager with a spool. Fetches are
// served from the spool when possible and every fetched or posted
// article is written to it.
type CachedManager struct {
	app.NNTPManager
	spool Spool
	log   *logger.Logger
}

func NewCachedManager(inner app.NNTPManager, spool Spool, log *logger.Logger) *CachedManager {
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedManager{NNTPManager: inner, spool: spool, log: log}
}

func (c *CachedManager) Fetch(ctx context.Context, id nntp.MessageID) (*nntp.Article, error) {
	// 1. Check the spool first
	if a, err := c.spool.Get(id); err == nil {
		c.log.Debug("Spool hit for %s", id)
		return a, nil
	}

	// 2. Spool miss: ask the providers
	a, err := c.NNTPManager.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Save for next time
	if err := c.spool.Put(a); err != nil {
		c.log.Warn("Failed to spool %s: %v", id, err)
	}
	return a, nil
}

func (c *CachedManager) Post(ctx context.Context, a *nntp.Article) (nntp.PostResult, string, error) {
	res, provider, err := c.NNTPManager.Post(ctx, a)
	if err != nil {
		return res, provider, err
	}
	if err := c.spool.Put(a); err != nil {
		c.log.Warn("Failed to spool %s: %v", a.MessageID(), err)
	}
	return res, provider, nil
}
