package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
	"github.com/user/offer-scraper/internal/fetch"
	"github.com/user/offer-scraper/internal/monitoring"
)

// Provider supplies offer references for a listing and the raw document behind each one.
type Provider interface {
	CollectLinks(ctx context.Context, q Query) ([]string, error)
	FetchOffer(ctx context.Context, link string) (string, error)
}

// DocumentStore persists raw documents by folder and name.
type DocumentStore interface {
	Store(ctx context.Context, folder, name, text string) error
	Load(ctx context.Context, folder, name string) (string, error)
	List(ctx context.Context, folder string) ([]string, error)
}

const (
	ProviderPortal = "portal"
	ProviderFile   = "file"
)

func offerFolder(p domain.Portal) string {
	return "offers/" + p.Key()
}

// ProviderOptions carries what either provider kind may need.
type ProviderOptions struct {
	BaseURL   string
	Fetcher   fetch.Fetcher
	Documents DocumentStore
	Save      bool
	Metrics   *monitoring.Metrics
}

// NewProvider returns the live downloader for kind "portal" or the replay loader for kind "file".
func NewProvider(kind string, p domain.Portal, opts ProviderOptions, logger *zap.Logger) (Provider, error) {
	switch kind {
	case ProviderPortal:
		d, err := NewDownloader(p, opts.BaseURL, opts.Fetcher, opts.Documents, opts.Save, opts.Metrics, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case ProviderFile:
		return NewFileLoader(p, opts.Documents, logger), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, kind)
}
