package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/config"
	"github.com/user/offer-scraper/internal/domain"
	"github.com/user/offer-scraper/internal/monitoring"
)

// maxReports bounds how many finished campaign reports a Runner keeps.
const maxReports = 100

var (
	ErrQueueFull = errors.New("campaign queue is full")
	ErrStopped   = errors.New("runner stopped")
)

// CampaignFactory builds a campaign for a portal with its provider, extractor and sink wired in.
type CampaignFactory func(ctx context.Context, p domain.Portal) (*Campaign, error)

// Runner executes submitted campaign requests one at a time on a single worker.
type Runner struct {
	newCampaign CampaignFactory
	categories  config.Categories
	metrics     *monitoring.Metrics
	logger      *zap.Logger

	taskQueue chan domain.CampaignRequest
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu         sync.Mutex
	stopped    bool
	reports    []domain.Report
	maxReports int
}

func NewRunner(factory CampaignFactory, categories config.Categories, queueSize int, m *monitoring.Metrics, l *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		newCampaign: factory,
		categories:  categories,
		metrics:     m,
		logger:      l,
		taskQueue:   make(chan domain.CampaignRequest, queueSize),
		ctx:         ctx,
		cancel:      cancel,
		maxReports:  maxReports,
	}
}

func (r *Runner) Start() {
	r.wg.Add(1)
	go r.worker()
}

// Stop lets queued campaigns finish. If ctx ends first, running work is
// cancelled and Stop returns ctx's error once the worker has exited.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		close(r.taskQueue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return ctx.Err()
	}
}

// Submit validates req and queues it without blocking.
func (r *Runner) Submit(req domain.CampaignRequest) error {
	p, err := domain.ParsePortal(req.Portal)
	if err != nil {
		return err
	}
	if _, err := r.categories.Resolve(p, req.Category); err != nil {
		return err
	}
	if req.Quota < 0 {
		return fmt.Errorf("quota must not be negative, got %d", req.Quota)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	select {
	case r.taskQueue <- req:
		r.metrics.SetQueued(len(r.taskQueue))
		return nil
	default:
		return ErrQueueFull
	}
}

// Reports returns the reports of the most recently finished campaigns, oldest first.
func (r *Runner) Reports() []domain.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Report(nil), r.reports...)
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for req := range r.taskQueue {
		r.mu.Lock()
		r.metrics.SetQueued(len(r.taskQueue))
		r.mu.Unlock()
		if r.ctx.Err() != nil {
			r.logger.Warn("dropping queued campaign", zap.String("portal", req.Portal), zap.String("category", req.Category))
			continue
		}
		r.process(req)
	}
}

func (r *Runner) process(req domain.CampaignRequest) {
	logger := r.logger.With(zap.String("portal", req.Portal), zap.String("category", req.Category))

	p, err := domain.ParsePortal(req.Portal)
	if err != nil {
		logger.Error("invalid campaign request", zap.Error(err))
		return
	}
	c, err := r.newCampaign(r.ctx, p)
	if err != nil {
		logger.Error("failed to build campaign", zap.Error(err))
		return
	}
	if err := c.Prepare(r.ctx); err != nil {
		logger.Error("failed to prepare campaign", zap.Error(err))
		return
	}

	report, err := c.Process(r.ctx, req.Category, Query{Quota: req.Quota, YearFrom: req.YearFrom, YearTo: req.YearTo})
	if err != nil {
		logger.Error("campaign failed", zap.Error(err))
		return
	}
	if report.Aborted != nil {
		logger.Warn("campaign batch aborted", zap.Int("links", report.Links), zap.Int("stored", report.Stored), zap.Error(report.Aborted))
	} else {
		logger.Info("campaign finished", zap.Int("links", report.Links), zap.Int("stored", report.Stored))
	}

	r.mu.Lock()
	r.reports = append(r.reports, *report)
	if n := len(r.reports) - r.maxReports; n > 0 {
		r.reports = append(r.reports[:0:0], r.reports[n:]...)
	}
	r.mu.Unlock()
}
