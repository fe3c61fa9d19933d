package nntp

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/datallboy/gonntp/internal/domain"
	"github.com/datallboy/gonntp/internal/infra/logger"
)

var ErrNoProviders = errors.New("no providers configured")

type managedProvider struct {
	conf      domain.ProviderConfig
	dialer    Dialer
	semaphore chan struct{}
	idle      chan *Client
}

// acquire takes a connection slot and hands out an idle client or a new
// one. It reports false when the provider is at MaxConnection.
func (mp *managedProvider) acquire() (*Client, bool) {
	select {
	case mp.semaphore <- struct{}{}:
	default:
		return nil, false
	}

	select {
	case c := <-mp.idle:
		return c, true
	default:
		return NewClient(mp.conf, mp.dialer), true
	}
}

func (mp *managedProvider) release(c *Client) {
	select {
	case mp.idle <- c:
	default:
		c.Close()
	}
	<-mp.semaphore
}

// Manager spreads commands over the configured providers. Providers are
// tried in priority order and each holds at most MaxConnection clients.
type Manager struct {
	log       *logger.Logger
	providers []*managedProvider
}

func NewManager(servers []domain.ProviderConfig, dialer Dialer, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}

	var managed []*managedProvider
	for _, cfg := range servers {
		if cfg.MaxConnection <= 0 {
			cfg.MaxConnection = 1
		}
		managed = append(managed, &managedProvider{
			conf:      cfg,
			dialer:    dialer,
			semaphore: make(chan struct{}, cfg.MaxConnection),
			idle:      make(chan *Client, cfg.MaxConnection),
		})
	}

	// Sort providers by priority (lower value first)
	sort.SliceStable(managed, func(i, j int) bool {
		return managed[i].conf.Priority < managed[j].conf.Priority
	})
	return &Manager{log: log, providers: managed}
}

// Validate opens one connection to every provider.
func (m *Manager) Validate(ctx context.Context) error {
	for _, mp := range m.providers {
		m.log.Info("Validating provider: %s", mp.conf.ID)
		c, ok := mp.acquire()
		if !ok {
			continue
		}
		err := c.Connect(ctx)
		mp.release(c)
		if err != nil {
			return fmt.Errorf("connection test failed for %s: %w", mp.conf.ID, err)
		}
	}
	return nil
}

// Post hands a to the first provider that accepts it and returns the
// result together with that provider's ID. Providers refusing posts
// (440) are skipped. A 441 rejection and an unconfirmed post are final,
// so the article is never offered to a second provider after one may
// have taken it.
func (m *Manager) Post(ctx context.Context, a *Article) (PostResult, string, error) {
	if a == nil {
		return PostResult{}, "", &ArgumentError{Param: "article", Err: ErrArgumentNull}
	}
	if err := ctx.Err(); err != nil {
		return PostResult{}, "", err
	}
	if len(m.providers) == 0 {
		return PostResult{}, "", ErrNoProviders
	}

	var lastErr error
	for _, mp := range m.providers {
		c, ok := mp.acquire()
		if !ok {
			// Provider is at MaxConnections, skip for now
			continue
		}

		m.log.Debug("Article %s: attempting post to %s", a.MessageID(), mp.conf.ID)
		res, err := c.Post(ctx, a)
		mp.release(c)
		if err == nil {
			return res, mp.conf.ID, nil
		}

		if errors.Is(err, ErrPostingFailed) || errors.Is(err, ErrPostUnconfirmed) {
			return PostResult{}, mp.conf.ID, err
		}
		if errors.Is(err, ErrPostingNotPermitted) {
			m.log.Debug("Provider %s does not allow posting, trying next", mp.conf.ID)
		} else {
			m.log.Debug("Failover: %s error: %v", mp.conf.ID, err)
		}
		lastErr = err
	}

	if lastErr != nil {
		return PostResult{}, "", lastErr
	}
	return PostResult{}, "", ErrProviderBusy
}

// Fetch retrieves an article by message id from the first provider
// that has it.
func (m *Manager) Fetch(ctx context.Context, id MessageID) (*Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.providers) == 0 {
		return nil, ErrNoProviders
	}

	missing := 0
	var lastErr error
	for _, mp := range m.providers {
		c, ok := mp.acquire()
		if !ok {
			continue
		}

		a, err := c.Article(ctx, id.String())
		mp.release(c)
		if err == nil {
			return a, nil
		}

		if errors.Is(err, ErrArticleNotFound) {
			m.log.Debug("Provider %s: 430 Missing for %s", mp.conf.ID, id)
			missing++
			continue
		}
		m.log.Debug("Failover: %s error: %v", mp.conf.ID, err)
		lastErr = err
	}

	// If all providers are confirmed missing
	if missing == len(m.providers) {
		return nil, ErrArticleNotFound
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrProviderBusy
}

// TotalCapacity returns the maximum number of concurrent connections
// allowed across all configured providers.
func (m *Manager) TotalCapacity() int {
	total := 0
	for _, mp := range m.providers {
		total += cap(mp.semaphore)
	}
	return total
}

// Close quits every idle client.
func (m *Manager) Close() error {
	var errs []error
	for _, mp := range m.providers {
		for drained := false; !drained; {
			select {
			case c := <-mp.idle:
				if err := c.Close(); err != nil {
					errs = append(errs, err)
				}
			default:
				drained = true
			}
		}
	}
	return errors.Join(errs...)
}
