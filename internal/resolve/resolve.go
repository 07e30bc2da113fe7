// Package resolve cross-references normalized titles against independent
// reference catalogs to find a canonical poster.
package resolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/pkg/title"
)

const defaultCacheTTL = 24 * time.Hour

// Poster is a resolved canonical poster. Absence is a valid outcome, not an
// error: callers persist records without poster fields when resolution finds
// nothing.
type Poster struct {
	URL         string
	Source      catalog.PosterSource
	ReferenceID string // empty for providers that expose no stable id
}

// Provider resolves a title against one reference catalog.
// Implementations return (nil, nil) when no candidate clears their
// confidence gate.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, t string, year int, kind catalog.Kind) (*Poster, error)
}

// Chain queries providers in strict priority order and short-circuits on the
// first accepted match. Provider errors are logged and skipped so a flaky
// provider never masks the rest of the chain.
type Chain struct {
	providers []Provider
	cache     *cache
	log       *slog.Logger
}

// NewChain creates a resolver chain. Provider order is priority order.
func NewChain(log *slog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		cache:     newCache(defaultCacheTTL),
		log:       log,
	}
}

// Resolve walks the chain for a title. Returns nil when every provider
// fails or produces nothing confident.
func (c *Chain) Resolve(ctx context.Context, t string, year int, kind catalog.Kind) *Poster {
	key := string(kind) + "|" + title.Clean(t)
	if p, ok := c.cache.get(key); ok {
		return p
	}

	for _, provider := range c.providers {
		poster, err := provider.Resolve(ctx, t, year, kind)
		if err != nil {
			if c.log != nil {
				c.log.Warn("provider failed", "provider", provider.Name(), "title", t, "error", err)
			}
			continue
		}
		if poster == nil {
			continue
		}

		if c.log != nil {
			c.log.Debug("poster resolved", "provider", provider.Name(), "title", t, "url", poster.URL)
		}
		c.cache.set(key, poster)
		return poster
	}

	if c.log != nil {
		c.log.Debug("no poster found", "title", t, "kind", kind)
	}
	return nil
}
