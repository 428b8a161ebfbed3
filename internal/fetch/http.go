package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/proxy"
)

const acceptLanguage = "pl-PL,pl;q=0.9,en;q=0.8"

// Fetcher returns the raw text of the document at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches documents over plain HTTP, rotating proxies and user agents.
type HTTPFetcher struct {
	client  *resty.Client
	proxies *proxy.Manager
	logger  *zap.Logger
}

func NewHTTPFetcher(timeout time.Duration, pm *proxy.Manager, logger *zap.Logger) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = pm.ProxyFunc

	client := resty.NewWithClient(&http.Client{Transport: transport}).
		SetTimeout(timeout).
		SetHeader("Accept-Language", acceptLanguage)

	return &HTTPFetcher{client: client, proxies: pm, logger: logger}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.proxies.GetUserAgent()).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, res.StatusCode())
	}

	f.logger.Debug("fetched document",
		zap.String("url", url),
		zap.Int("status", res.StatusCode()),
		zap.Duration("took", res.Time()),
	)
	return res.String(), nil
}
