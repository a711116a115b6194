package crawler

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; rival-outranker-audit/1.0)"

// maxBodyBytes caps how much HTML one page may contribute.
const maxBodyBytes = 4 << 20

// Fetcher retrieves the rendered HTML of one URL. Failures surface as
// *domain.CrawlError so the caller can tell transient classes apart.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// httpFetcher is the default plain-HTTP fetcher.
type httpFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher builds a fetcher over net/http with the given per-page
// timeout.
func NewHTTPFetcher(timeout time.Duration) Fetcher {
	return &httpFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.NewCrawlError(domain.CrawlHTTP, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return "", &domain.CrawlError{Reason: domain.CrawlBlocked, URL: url, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return "", &domain.CrawlError{Reason: domain.CrawlHTTP, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", classifyTransportError(url, err)
	}
	return string(body), nil
}

func classifyTransportError(url string, err error) *domain.CrawlError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.NewCrawlError(domain.CrawlDNS, url, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewCrawlError(domain.CrawlTimeout, url, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewCrawlError(domain.CrawlTimeout, url, err)
	}
	return domain.NewCrawlError(domain.CrawlHTTP, url, err)
}

// browserFetcher renders pages in headless Chrome for JS-heavy sites
// (the deep-crawl option). Allocator contexts are pooled so repeated
// fetches reuse the browser process setup.
type browserFetcher struct {
	timeout time.Duration
	opts    []chromedp.ExecAllocatorOption
}

// NewBrowserFetcher builds a chromedp-backed fetcher.
func NewBrowserFetcher(timeout time.Duration) Fetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", ""),
		chromedp.Flag("disable-dev-shm-usage", ""),
		chromedp.UserAgent(defaultUserAgent),
	)
	return &browserFetcher{timeout: timeout, opts: opts}
}

func (f *browserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, f.timeout)
	defer timeoutCancel()

	var htmlContent string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", domain.NewCrawlError(domain.CrawlTimeout, url, err)
		}
		return "", domain.NewCrawlError(domain.CrawlHTTP, url, err)
	}
	return htmlContent, nil
}
