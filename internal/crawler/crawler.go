package crawler

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// Config tunes one SiteCrawler instance.
type Config struct {
	Workers      int
	MaxPages     int // default page cap when the request does not set one
	MaxRetries   int // extra attempts for transient (timeout) failures
	RetryBackoff time.Duration
}

// SiteCrawler walks a site breadth-first from its root URL and produces
// the PageRecord set an audit consumes. Page fetches within one crawl
// run on a bounded worker pool; distinct pages are independent.
type SiteCrawler struct {
	fetcher     Fetcher
	deepFetcher Fetcher // used when EnableDeepCrawl is set; may be nil
	cfg         Config
	logger      *zap.Logger
}

func NewSiteCrawler(fetcher, deepFetcher Fetcher, cfg Config, logger *zap.Logger) *SiteCrawler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 20
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &SiteCrawler{fetcher: fetcher, deepFetcher: deepFetcher, cfg: cfg, logger: logger}
}

// Crawl fetches up to the page cap starting from rawURL. Pages that
// still fail after retries are skipped; the crawl returns what it has.
// Zero crawlable pages is the only failure. progress, when non-nil, is
// called with the running page count.
func (c *SiteCrawler) Crawl(ctx context.Context, rawURL string, opts domain.CrawlOptions, progress func(done int)) ([]domain.PageRecord, error) {
	root, err := normalizeURL(rawURL)
	if err != nil {
		return nil, domain.NewCrawlError(domain.CrawlHTTP, rawURL, err)
	}

	maxPages := opts.MaxPages
	if maxPages < 1 || maxPages > c.cfg.MaxPages {
		maxPages = c.cfg.MaxPages
	}
	fetcher := c.fetcher
	if opts.EnableDeepCrawl && c.deepFetcher != nil {
		fetcher = c.deepFetcher
	}

	visited := map[string]bool{root: true}
	frontier := []string{root}
	pages := make([]domain.PageRecord, 0, maxPages)
	var lastErr error

	for len(frontier) > 0 && len(pages) < maxPages {
		if err := ctx.Err(); err != nil {
			break
		}

		batch := frontier
		if room := maxPages - len(pages); len(batch) > room {
			batch = batch[:room]
		}
		if len(batch) > c.cfg.Workers {
			batch = batch[:c.cfg.Workers]
		}
		frontier = frontier[len(batch):]

		results := make([]*domain.PageRecord, len(batch))
		errs := make([]error, len(batch))
		var wg sync.WaitGroup
		for i, pageURL := range batch {
			wg.Add(1)
			go func(i int, pageURL string) {
				defer wg.Done()
				rec, err := c.fetchPage(ctx, fetcher, pageURL)
				if err != nil {
					errs[i] = err
					return
				}
				results[i] = &rec
			}(i, pageURL)
		}
		wg.Wait()

		// Collect in batch order so crawls of the same site stay
		// deterministic.
		for i, rec := range results {
			if rec == nil {
				lastErr = errs[i]
				c.logger.Warn("skipping uncrawlable page",
					zap.String("url", batch[i]), zap.Error(errs[i]))
				continue
			}
			pages = append(pages, *rec)
			if progress != nil {
				progress(len(pages))
			}
			for _, link := range rec.Links.Internal {
				norm, err := normalizeURL(link)
				if err != nil || visited[norm] {
					continue
				}
				visited[norm] = true
				frontier = append(frontier, norm)
			}
		}
	}

	if len(pages) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		if err := ctx.Err(); err != nil {
			return nil, domain.NewCrawlError(domain.CrawlTimeout, rawURL, err)
		}
		return nil, domain.NewCrawlError(domain.CrawlHTTP, rawURL, errors.New("no pages crawled"))
	}
	return pages, nil
}

// fetchPage fetches and extracts one page, retrying transient failures
// with linear backoff. DNS and blocked failures are not retried.
func (c *SiteCrawler) fetchPage(ctx context.Context, fetcher Fetcher, pageURL string) (domain.PageRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.PageRecord{}, domain.NewCrawlError(domain.CrawlTimeout, pageURL, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.cfg.RetryBackoff):
			}
		}

		html, err := fetcher.Fetch(ctx, pageURL)
		if err != nil {
			lastErr = err
			var crawlErr *domain.CrawlError
			if errors.As(err, &crawlErr) && crawlErr.Retryable() {
				continue
			}
			return domain.PageRecord{}, err
		}
		return ExtractPageRecord(pageURL, html)
	}
	return domain.PageRecord{}, lastErr
}

// normalizeURL canonicalizes a URL for the visited set: scheme+host
// lowercased, fragment dropped, trailing slash trimmed.
func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("unsupported scheme: " + u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}
