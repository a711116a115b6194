package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced directly to API callers.
var (
	ErrJobNotFound = errors.New("audit job not found")
	ErrJobNotReady = errors.New("audit job not ready")
)

// CrawlReason classifies why a crawl failed.
type CrawlReason string

const (
	CrawlTimeout CrawlReason = "timeout"
	CrawlDNS     CrawlReason = "dns"
	CrawlHTTP    CrawlReason = "http"
	CrawlBlocked CrawlReason = "blocked"
)

// CrawlError is returned by the crawler instead of opaque transport
// errors. Only timeout-class failures are retryable.
type CrawlError struct {
	Reason     CrawlReason
	URL        string
	StatusCode int
	Cause      error
}

func (e *CrawlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crawl %s failed (%s): %v", e.URL, e.Reason, e.Cause)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("crawl %s failed (%s): status %d", e.URL, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("crawl %s failed (%s)", e.URL, e.Reason)
}

func (e *CrawlError) Unwrap() error { return e.Cause }

// Retryable reports whether the failure class is transient.
func (e *CrawlError) Retryable() bool { return e.Reason == CrawlTimeout }

// NewCrawlError builds a CrawlError with an underlying cause.
func NewCrawlError(reason CrawlReason, url string, cause error) *CrawlError {
	return &CrawlError{Reason: reason, URL: url, Cause: cause}
}

// ClassificationError marks a PageRecord unusable for classification.
// The page is dropped from the audit; the job continues.
type ClassificationError struct {
	URL    string
	Reason string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cannot classify %s: %s", e.URL, e.Reason)
}

// RuleEvaluationError records a rule that failed on unexpected input.
// The rule's item is emitted as N/A with a diagnostic note; the audit
// continues.
type RuleEvaluationError struct {
	Rule     string
	Category CategoryName
	Cause    error
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("rule %q (%s) failed: %v", e.Rule, e.Category, e.Cause)
}

func (e *RuleEvaluationError) Unwrap() error { return e.Cause }
