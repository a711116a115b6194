// Package jobs owns the audit job lifecycle: submission, asynchronous
// crawl-and-analyze execution, polling, refresh, and TTL eviction.
//
// Jobs live in a process-local map. Deployments running several
// instances behind a balancer must either pin polling to the creating
// instance or back the manager with a shared store; this package does
// not hide that limitation.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/audit"
	"github.com/nmang004/rival-outranker-sub013/internal/domain"
	"github.com/nmang004/rival-outranker-sub013/internal/monitoring"
)

// Crawler produces the page set for one audit run.
type Crawler interface {
	Crawl(ctx context.Context, url string, opts domain.CrawlOptions, progress func(done int)) ([]domain.PageRecord, error)
}

// Analyzer turns a crawled page set into categorized findings.
type Analyzer interface {
	Run(ctx context.Context, pages []domain.PageRecord, rootURL string) (audit.Result, error)
}

// Archive persists completed audits for history. Optional.
type Archive interface {
	SaveAudit(ctx context.Context, job *domain.AuditJob) error
}

// Index maps a site URL to its latest completed job id. Optional.
type Index interface {
	SetLatestJobID(ctx context.Context, siteURL, jobID string) error
}

// Config tunes the manager.
type Config struct {
	AuditTimeout  time.Duration // wall-clock cap per job
	JobTTL        time.Duration // retention after a job ends
	SweepInterval time.Duration
}

// statusRank enforces forward-only transitions.
var statusRank = map[domain.JobStatus]int{
	domain.JobPending:   0,
	domain.JobCrawling:  1,
	domain.JobAnalyzing: 2,
	domain.JobCompleted: 3,
	domain.JobFailed:    3,
}

// Manager owns the job map, the single shared mutable resource of the
// pipeline. Every map access holds the mutex for just that read or
// write; crawling, classification, and rule evaluation all run outside
// the lock.
type Manager struct {
	cfg     Config
	crawler Crawler
	engine  Analyzer
	archive Archive
	index   Index
	metrics *monitoring.Metrics
	logger  *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*domain.AuditJob

	stopCh  chan struct{}
	stopped sync.Once
}

func NewManager(cfg Config, crawler Crawler, engine Analyzer, archive Archive, index Index, metrics *monitoring.Metrics, logger *zap.Logger) *Manager {
	if cfg.AuditTimeout <= 0 {
		cfg.AuditTimeout = 5 * time.Minute
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	m := &Manager{
		cfg:     cfg,
		crawler: crawler,
		engine:  engine,
		archive: archive,
		index:   index,
		metrics: metrics,
		logger:  logger,
		jobs:    make(map[string]*domain.AuditJob),
		stopCh:  make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Stop halts the housekeeping sweeper. Running jobs finish on their own.
func (m *Manager) Stop() {
	m.stopped.Do(func() { close(m.stopCh) })
}

// Create registers a new Pending job and starts the pipeline
// asynchronously. Callers poll for completion.
func (m *Manager) Create(targetURL string, opts domain.CrawlOptions) (string, error) {
	if _, err := url.ParseRequestURI(targetURL); err != nil {
		return "", fmt.Errorf("invalid audit url %q: %w", targetURL, err)
	}

	id := uuid.NewString()
	job := &domain.AuditJob{
		ID:        id,
		Status:    domain.JobPending,
		URL:       targetURL,
		StartTime: time.Now(),
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncAuditsStarted()
	}
	go m.run(id, targetURL, opts)
	return id, nil
}

// Refresh starts a brand-new job for the same logical target. The old
// record stays retrievable under its own id until evicted; a Completed
// job is never mutated in place, so concurrent readers of the old
// result are safe.
func (m *Manager) Refresh(jobID, targetURL string) (string, error) {
	m.mu.RLock()
	old, ok := m.jobs[jobID]
	var oldURL string
	if ok {
		oldURL = old.URL
	}
	m.mu.RUnlock()
	if !ok {
		return "", domain.ErrJobNotFound
	}
	if targetURL == "" {
		targetURL = oldURL
	}
	return m.Create(targetURL, domain.CrawlOptions{})
}

// GetStatus reports the lifecycle state of a job.
func (m *Manager) GetStatus(jobID string) (domain.JobStatusResponse, error) {
	job, err := m.lookup(jobID)
	if err != nil {
		return domain.JobStatusResponse{}, err
	}
	return domain.JobStatusResponse{
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.PageCount,
		Error:    job.Error,
	}, nil
}

// GetResult returns the finished job. The returned value is a snapshot
// that no goroutine mutates afterwards: repeated reads are equal.
func (m *Manager) GetResult(jobID string) (domain.AuditJob, error) {
	job, err := m.lookup(jobID)
	if err != nil {
		return domain.AuditJob{}, err
	}
	if !job.Status.Terminal() {
		return domain.AuditJob{}, domain.ErrJobNotReady
	}
	return job, nil
}

// lookup fetches a snapshot copy of one job, lazily evicting it when
// its retention window has passed.
func (m *Manager) lookup(jobID string) (domain.AuditJob, error) {
	m.mu.RLock()
	job, ok := m.jobs[jobID]
	var snapshot domain.AuditJob
	expired := false
	if ok {
		snapshot = *job
		expired = m.expired(job, time.Now())
	}
	m.mu.RUnlock()

	if !ok {
		return domain.AuditJob{}, domain.ErrJobNotFound
	}
	if expired {
		m.mu.Lock()
		delete(m.jobs, jobID)
		m.mu.Unlock()
		return domain.AuditJob{}, domain.ErrJobNotFound
	}
	return snapshot, nil
}

// run drives one job through the state machine. Every stage may move
// the job to Failed instead; no backward transition ever happens.
func (m *Manager) run(jobID, targetURL string, opts domain.CrawlOptions) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.AuditTimeout)
	defer cancel()
	start := time.Now()

	m.transition(jobID, domain.JobCrawling, nil)

	pages, err := m.crawler.Crawl(ctx, targetURL, opts, func(done int) {
		m.setProgress(jobID, done)
	})
	if err != nil {
		m.fail(jobID, err)
		return
	}
	if m.metrics != nil {
		m.metrics.AddPagesCrawled(len(pages))
	}

	m.transition(jobID, domain.JobAnalyzing, func(job *domain.AuditJob) {
		job.PageCount = len(pages)
	})

	result, err := m.engine.Run(ctx, pages, targetURL)
	if err != nil {
		m.fail(jobID, err)
		return
	}

	now := time.Now()
	m.transition(jobID, domain.JobCompleted, func(job *domain.AuditJob) {
		job.Categories = result.Categories
		job.Summary = result.Summary
		job.PageCount = len(result.Pages)
		job.EndTime = &now
	})
	if m.metrics != nil {
		m.metrics.IncAuditsFinished("completed")
		m.metrics.ObserveAuditDuration(now.Sub(start))
	}
	m.logger.Info("audit completed",
		zap.String("job_id", jobID),
		zap.String("url", targetURL),
		zap.Int("pages", len(result.Pages)),
		zap.Int("findings", result.Summary.Total))

	m.persist(jobID, targetURL)
}

// persist archives the completed job and updates the latest-job index.
// Both collaborators are optional and their failures only log.
func (m *Manager) persist(jobID, targetURL string) {
	job, err := m.lookup(jobID)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if m.archive != nil {
		if err := m.archive.SaveAudit(ctx, &job); err != nil {
			m.logger.Error("failed to archive audit", zap.String("job_id", jobID), zap.Error(err))
		}
	}
	if m.index != nil {
		if err := m.index.SetLatestJobID(ctx, targetURL, jobID); err != nil {
			m.logger.Error("failed to index latest audit", zap.String("job_id", jobID), zap.Error(err))
		}
	}
}

func (m *Manager) fail(jobID string, cause error) {
	now := time.Now()
	msg := cause.Error()
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = "audit timed out: " + msg
	}
	m.transition(jobID, domain.JobFailed, func(job *domain.AuditJob) {
		job.Error = msg
		job.EndTime = &now
	})
	if m.metrics != nil {
		m.metrics.IncAuditsFinished("failed")
		m.metrics.IncErrorsTotal("audit_failed")
	}
	m.logger.Warn("audit failed", zap.String("job_id", jobID), zap.Error(cause))
}

// transition advances a job's status and applies mutate under the map
// lock. Backward transitions are dropped.
func (m *Manager) transition(jobID string, next domain.JobStatus, mutate func(*domain.AuditJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	if statusRank[next] < statusRank[job.Status] || job.Status.Terminal() {
		return
	}
	job.Status = next
	if mutate != nil {
		mutate(job)
	}
}

func (m *Manager) setProgress(jobID string, done int) {
	m.mu.Lock()
	if job, ok := m.jobs[jobID]; ok && !job.Status.Terminal() {
		job.PageCount = done
	}
	m.mu.Unlock()
}

func (m *Manager) expired(job *domain.AuditJob, now time.Time) bool {
	return job.EndTime != nil && now.Sub(*job.EndTime) > m.cfg.JobTTL
}

// sweep evicts expired jobs on a housekeeping ticker, complementing the
// lazy eviction in lookup.
func (m *Manager) sweep() {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for id, job := range m.jobs {
				if m.expired(job, now) {
					delete(m.jobs, id)
				}
			}
			remaining := len(m.jobs)
			m.mu.Unlock()
			m.logger.Debug("job cache swept", zap.Int("remaining", remaining))
		case <-m.stopCh:
			return
		}
	}
}
