package audit

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// Engine runs the analysis half of an audit job: classify every crawled
// page, evaluate the rule catalog, post-process priorities, aggregate.
// Classification of distinct pages runs in parallel; the priority and
// aggregation passes need the complete finding set and run after a full
// barrier.
type Engine struct {
	classifier *Classifier
	rules      *RuleSet
	assigner   *PriorityAssigner
	workers    int
	logger     *zap.Logger
}

// Result is one completed analysis.
type Result struct {
	Pages      []domain.ClassifiedPage
	Categories []domain.AuditCategory
	Summary    domain.AuditSummary
}

func NewEngine(classifier *Classifier, rules *RuleSet, assigner *PriorityAssigner, workers int, logger *zap.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		classifier: classifier,
		rules:      rules,
		assigner:   assigner,
		workers:    workers,
		logger:     logger,
	}
}

// Run analyzes a crawled page set. Malformed pages are dropped with a
// logged skip; a single bad page never fails the run. An empty page set
// is the caller's problem (the job manager fails the job before
// analysis starts).
func (e *Engine) Run(ctx context.Context, pages []domain.PageRecord, rootURL string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	site := domain.SiteContext{RootURL: rootURL, Domain: hostOf(rootURL)}

	classified := e.classifyAll(pages, site)
	site.PageCount = len(classified)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(classified) == 0 {
		return Result{}, errors.New("no classifiable pages in crawl")
	}

	categories := e.rules.Evaluate(classified, site)

	// Full barrier: the assigner needs every finding to compute the
	// template signatures and the priority ratio.
	roleByURL := make(map[string]domain.PageRole, len(classified))
	for _, p := range classified {
		roleByURL[p.Page.URL] = p.Role
	}
	asg := e.assigner.Assign(categories, roleByURL, site)

	summary := Aggregate(asg.Categories)
	summary.TemplateIssuesDetected = asg.TemplateIssues
	summary.EstimatedFixEffort = asg.FixEffort

	return Result{Pages: classified, Categories: asg.Categories, Summary: summary}, nil
}

// classifyAll classifies pages on a bounded worker pool. Page order is
// preserved so rule evaluation order stays deterministic.
func (e *Engine) classifyAll(pages []domain.PageRecord, site domain.SiteContext) []domain.ClassifiedPage {
	results := make([]*domain.ClassifiedPage, len(pages))
	tasks := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				role, err := e.classifier.Classify(pages[i], site)
				if err != nil {
					e.logger.Warn("skipping unclassifiable page",
						zap.String("url", pages[i].URL), zap.Error(err))
					continue
				}
				results[i] = &domain.ClassifiedPage{Page: pages[i], Role: role}
			}
		}()
	}
	for i := range pages {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	out := make([]domain.ClassifiedPage, 0, len(pages))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
