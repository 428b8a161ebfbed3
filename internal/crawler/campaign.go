package crawler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/config"
	"github.com/user/offer-scraper/internal/domain"
	"github.com/user/offer-scraper/internal/extract"
	"github.com/user/offer-scraper/internal/monitoring"
)

// API is recorded on every campaign row created by this scraper.
const API = "scraper"

// Sink durably stores campaigns and their offers.
type Sink interface {
	CreateCampaign(ctx context.Context, portal domain.Portal, api string) (int64, error)
	SaveOffer(ctx context.Context, campaignID int64, offer *domain.Offer) error
}

// Campaign drives one portal through link collection, extraction and storage.
type Campaign struct {
	portal     domain.Portal
	provider   Provider
	extractor  extract.Extractor
	sink       Sink
	categories config.Categories
	metrics    *monitoring.Metrics
	logger     *zap.Logger

	id int64
}

func NewCampaign(p domain.Portal, provider Provider, extractor extract.Extractor, sink Sink, categories config.Categories, m *monitoring.Metrics, logger *zap.Logger) *Campaign {
	return &Campaign{
		portal:     p,
		provider:   provider,
		extractor:  extractor,
		sink:       sink,
		categories: categories,
		metrics:    m,
		logger:     logger.With(zap.String("portal", p.Key())),
	}
}

// Prepare creates the campaign row every processed offer is attached to.
func (c *Campaign) Prepare(ctx context.Context) error {
	id, err := c.sink.CreateCampaign(ctx, c.portal, API)
	if err != nil {
		return fmt.Errorf("creating campaign for %s: %w", c.portal, err)
	}
	c.id = id
	c.logger.Info("campaign created", zap.Int64("campaign_id", id))
	return nil
}

// ID returns the campaign id assigned by Prepare.
func (c *Campaign) ID() int64 {
	return c.id
}

// Process collects links for a human-readable category and stores the offers
// behind them. Collection errors are returned; a failure while handling an
// individual offer stops the batch and is reported in Report.Aborted, leaving
// the offers stored before it in place.
func (c *Campaign) Process(ctx context.Context, category string, q Query) (*domain.Report, error) {
	if c.id == 0 {
		return nil, errors.New("campaign not prepared")
	}
	slug, err := c.categories.Resolve(c.portal, category)
	if err != nil {
		return nil, err
	}
	q.Category = slug

	c.logger.Info("processing category", zap.String("category", category), zap.String("slug", slug), zap.Int("quota", q.Quota))
	links, err := c.provider.CollectLinks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("collecting links for %q: %w", category, err)
	}

	report := &domain.Report{Portal: c.portal, Category: category, Links: len(links)}
	report.Stored, report.Aborted = c.processOffers(ctx, links)
	return report, nil
}

// processOffers handles links in order and stops at the first failure.
func (c *Campaign) processOffers(ctx context.Context, links []string) (int, error) {
	stored := 0
	for i, link := range links {
		stage, err := c.processOffer(ctx, link)
		if err != nil {
			c.metrics.IncAborted(c.portal.Key(), stage)
			c.logger.Error("aborting batch",
				zap.String("link", link),
				zap.String("stage", stage),
				zap.Int("stored", stored),
				zap.Int("skipped", len(links)-i-1),
				zap.Error(err),
			)
			return stored, fmt.Errorf("%s %s: %w", stage, link, err)
		}
		stored++
	}
	c.logger.Info("batch complete", zap.Int("stored", stored))
	return stored, nil
}

func (c *Campaign) processOffer(ctx context.Context, link string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "fetch", err
	}
	document, err := c.provider.FetchOffer(ctx, link)
	if err != nil {
		return "fetch", err
	}
	offer, err := c.extractor.Extract(document)
	if err != nil {
		return "extract", err
	}
	for _, field := range offer.AnomalyFields() {
		c.metrics.IncAnomaly(field)
	}
	if err := c.sink.SaveOffer(ctx, c.id, offer); err != nil {
		return "store", err
	}
	c.metrics.IncStored(c.portal.Key())
	c.logger.Debug("offer stored", zap.String("offer_id", offer.OfferID))
	return "", nil
}
