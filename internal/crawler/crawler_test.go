package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// stubFetcher serves canned HTML keyed by normalized URL.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
	// failures holds errors returned before the canned page, per URL.
	failures map[string][]error
}

func newStubFetcher(pages map[string]string) *stubFetcher {
	return &stubFetcher{pages: pages, calls: map[string]int{}, failures: map[string][]error{}}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if errs := f.failures[url]; len(errs) > 0 {
		err := errs[0]
		f.failures[url] = errs[1:]
		return "", err
	}
	html, ok := f.pages[url]
	if !ok {
		return "", &domain.CrawlError{Reason: domain.CrawlHTTP, URL: url, StatusCode: 404}
	}
	return html, nil
}

func pageWithLinks(title string, hrefs ...string) string {
	links := ""
	for _, h := range hrefs {
		links += fmt.Sprintf(`<a href=%q>%s</a>`, h, h)
	}
	return fmt.Sprintf("<html><head><title>%s</title></head><body>%s</body></html>", title, links)
}

func testCrawler(fetcher Fetcher, cfg Config) *SiteCrawler {
	return NewSiteCrawler(fetcher, nil, cfg, zap.NewNop())
}

func TestCrawl_FollowsInternalLinks(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://acme.test":                 pageWithLinks("Home", "/services", "/contact", "https://other.test/x"),
		"https://acme.test/services":        pageWithLinks("Services", "/services/repair"),
		"https://acme.test/contact":         pageWithLinks("Contact"),
		"https://acme.test/services/repair": pageWithLinks("Repair", "/"),
	})

	c := testCrawler(fetcher, Config{Workers: 4, MaxPages: 10})
	pages, err := c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{}, nil)
	require.NoError(t, err)

	var urls []string
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{
		"https://acme.test",
		"https://acme.test/services",
		"https://acme.test/contact",
		"https://acme.test/services/repair",
	}, urls, "breadth-first order, external links not followed")

	// The root link on /services/repair normalizes to an already-visited
	// URL and must not be fetched twice.
	assert.Equal(t, 1, fetcher.calls["https://acme.test"])
}

func TestCrawl_RespectsPageCap(t *testing.T) {
	pages := map[string]string{}
	var hrefs []string
	for i := 0; i < 30; i++ {
		hrefs = append(hrefs, fmt.Sprintf("/p%d", i))
		pages[fmt.Sprintf("https://acme.test/p%d", i)] = pageWithLinks(fmt.Sprintf("P%d", i))
	}
	pages["https://acme.test"] = pageWithLinks("Home", hrefs...)

	c := testCrawler(newStubFetcher(pages), Config{Workers: 4, MaxPages: 5})
	got, err := c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	// A request option below the configured cap tightens it further.
	got, err = c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{MaxPages: 3}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// A request option above the configured cap is clamped.
	got, err = c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{MaxPages: 100}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestCrawl_SkipsFailedPages(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://acme.test":      pageWithLinks("Home", "/good", "/bad"),
		"https://acme.test/good": pageWithLinks("Good"),
	})

	c := testCrawler(fetcher, Config{Workers: 2, MaxPages: 10})
	pages, err := c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, pages, 2, "a failing page is skipped, not fatal")
}

func TestCrawl_ZeroPagesIsFailure(t *testing.T) {
	fetcher := newStubFetcher(nil)

	c := testCrawler(fetcher, Config{Workers: 1, MaxPages: 5})
	_, err := c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{}, nil)
	require.Error(t, err)
	var crawlErr *domain.CrawlError
	assert.ErrorAs(t, err, &crawlErr)
}

func TestCrawl_RetriesTransientFailures(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://acme.test": pageWithLinks("Home"),
	})
	fetcher.failures["https://acme.test"] = []error{
		domain.NewCrawlError(domain.CrawlTimeout, "https://acme.test", context.DeadlineExceeded),
		domain.NewCrawlError(domain.CrawlTimeout, "https://acme.test", context.DeadlineExceeded),
	}

	c := testCrawler(fetcher, Config{Workers: 1, MaxPages: 5, MaxRetries: 2, RetryBackoff: time.Millisecond})
	pages, err := c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{}, nil)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 3, fetcher.calls["https://acme.test"])
}

func TestCrawl_DoesNotRetryPermanentFailures(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://acme.test": pageWithLinks("Home"),
	})
	fetcher.failures["https://acme.test"] = []error{
		&domain.CrawlError{Reason: domain.CrawlBlocked, URL: "https://acme.test", StatusCode: 403},
	}

	c := testCrawler(fetcher, Config{Workers: 1, MaxPages: 5, MaxRetries: 3, RetryBackoff: time.Millisecond})
	_, err := c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, fetcher.calls["https://acme.test"])
}

func TestCrawl_ReportsProgress(t *testing.T) {
	fetcher := newStubFetcher(map[string]string{
		"https://acme.test":   pageWithLinks("Home", "/a", "/b"),
		"https://acme.test/a": pageWithLinks("A"),
		"https://acme.test/b": pageWithLinks("B"),
	})

	var seen []int
	c := testCrawler(fetcher, Config{Workers: 2, MaxPages: 10})
	_, err := c.Crawl(context.Background(), "https://acme.test", domain.CrawlOptions{},
		func(done int) { seen = append(seen, done) })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestCrawl_HTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, pageWithLinks("Home", "/about", "/blocked"))
		case "/about":
			fmt.Fprint(w, pageWithLinks("About"))
		case "/blocked":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := testCrawler(NewHTTPFetcher(5*time.Second), Config{Workers: 2, MaxPages: 10})
	pages, err := c.Crawl(context.Background(), srv.URL, domain.CrawlOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "Home", pages[0].Title)
	assert.Equal(t, "About", pages[1].Title)
}

func TestNormalizeURL(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://Acme.Test/Path/", want: "https://acme.test/Path"},
		{in: "acme.test", wantErr: true}, // no scheme means no host after parsing
		{in: "https://acme.test/a#frag", want: "https://acme.test/a"},
		{in: "ftp://acme.test", wantErr: true},
		{in: "https://", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := normalizeURL(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
