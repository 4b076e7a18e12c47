package scraper

import (
	"context"
	"time"

	"github.com/pfrederiksen/deetlist/internal/cache"
	"github.com/pfrederiksen/deetlist/internal/logger"
)

// CachingFetcher serves pages from a cache and fills it on a miss. Cache
// failures are logged and fall through to the wrapped Fetcher.
type CachingFetcher struct {
	next    Fetcher
	cache   cache.Cache
	ttl     time.Duration
	log     *logger.Logger
	metrics *logger.Metrics
}

// NewCachingFetcher wraps next with c. Entries live for ttl.
func NewCachingFetcher(next Fetcher, c cache.Cache, ttl time.Duration, log *logger.Logger, metrics *logger.Metrics) *CachingFetcher {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	return &CachingFetcher{next: next, cache: c, ttl: ttl, log: log, metrics: metrics}
}

// Fetch returns the cached body for url or fetches and stores it.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, ok, err := f.cache.Get(ctx, url)
	if err != nil {
		f.log.Warn("page cache read failed", logger.Fields{"url": url, "error": err.Error()})
	} else if ok {
		f.metrics.IncrCounter("fetch.cache_hits")
		return body, nil
	}

	body, err = f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(ctx, url, body, f.ttl); err != nil {
		f.log.Warn("page cache write failed", logger.Fields{"url": url, "error": err.Error()})
	}
	return body, nil
}
