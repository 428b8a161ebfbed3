package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
	"github.com/user/offer-scraper/internal/fetch"
	"github.com/user/offer-scraper/internal/monitoring"
)

const listingFolder = "listings"

// Downloader fetches listings and offers from a live portal, optionally
// keeping a copy of every document it downloads.
type Downloader struct {
	portal    domain.Portal
	site      site
	fetcher   fetch.Fetcher
	documents DocumentStore
	save      bool
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

func NewDownloader(p domain.Portal, baseURL string, f fetch.Fetcher, documents DocumentStore, save bool, m *monitoring.Metrics, logger *zap.Logger) (*Downloader, error) {
	s, err := newSite(p, baseURL)
	if err != nil {
		return nil, err
	}
	if save && documents == nil {
		return nil, fmt.Errorf("saving documents for %s requires a document store", p)
	}
	return &Downloader{
		portal:    p,
		site:      s,
		fetcher:   f,
		documents: documents,
		save:      save,
		metrics:   m,
		logger:    logger.With(zap.String("portal", p.Key())),
	}, nil
}

// CollectLinks resolves the page count from the first listing page and walks
// the listing until the quota is met. The first page is fetched once.
func (d *Downloader) CollectLinks(ctx context.Context, q Query) ([]string, error) {
	d.logger.Info("collecting links", zap.String("category", q.Category), zap.Int("quota", q.Quota))

	first, err := d.listing(ctx, q, 1)
	if err != nil {
		return nil, err
	}

	total := d.site.fixedPages
	if total == 0 {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(first))
		if err != nil {
			return nil, fmt.Errorf("parsing listing: %w", err)
		}
		if total, err = d.site.pageCount(doc); err != nil {
			return nil, fmt.Errorf("reading page count of %s: %w", q.Category, err)
		}
	}

	return paginate(ctx, total, q.Quota, d.site.prefix, func(ctx context.Context, page int) (string, error) {
		if page == 1 {
			return first, nil
		}
		return d.listing(ctx, q, page)
	}, d.logger)
}

func (d *Downloader) listing(ctx context.Context, q Query, page int) (string, error) {
	url := d.site.listingURL(d.site.base, q, page)
	document, err := d.fetch(ctx, url, "listing")
	if err != nil {
		return "", fmt.Errorf("fetching listing page %d: %w", page, err)
	}
	if d.save {
		if err := d.documents.Store(ctx, listingFolder, listingFileName(q.Category, page), document); err != nil {
			return "", fmt.Errorf("saving listing page %d: %w", page, err)
		}
	}
	return document, nil
}

// FetchOffer downloads the offer behind link.
func (d *Downloader) FetchOffer(ctx context.Context, link string) (string, error) {
	url, err := d.site.offerURL(link)
	if err != nil {
		return "", err
	}
	document, err := d.fetch(ctx, url, "offer")
	if err != nil {
		return "", err
	}
	if !d.save {
		return document, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("parsing offer: %w", err)
	}
	id, err := d.site.offerID(link, doc)
	if err != nil {
		return "", fmt.Errorf("resolving offer id of %s: %w", link, err)
	}
	if err := d.documents.Store(ctx, offerFolder(d.portal), offerFileName(id), document); err != nil {
		return "", fmt.Errorf("saving offer %s: %w", id, err)
	}
	return document, nil
}

func (d *Downloader) fetch(ctx context.Context, url, kind string) (string, error) {
	start := time.Now()
	document, err := d.fetcher.Fetch(ctx, url)
	d.metrics.ObserveFetch(d.portal.Key(), time.Since(start))
	if err != nil {
		return "", err
	}
	d.metrics.IncFetched(d.portal.Key(), kind)
	d.logger.Debug("document fetched", zap.String("url", url), zap.String("kind", kind))
	return document, nil
}
