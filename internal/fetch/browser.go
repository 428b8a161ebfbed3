package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/proxy"
)

// BrowserFetcher renders documents in headless Chrome, for portals that build
// their markup client-side. Every fetch starts a browser with the next proxy
// and a fresh user agent.
type BrowserFetcher struct {
	proxies *proxy.Manager
	timeout time.Duration
	logger  *zap.Logger
}

func NewBrowserFetcher(timeout time.Duration, pm *proxy.Manager, logger *zap.Logger) *BrowserFetcher {
	return &BrowserFetcher{proxies: pm, timeout: timeout, logger: logger}
}

// identity is the user agent and proxy a single browser session presents.
type identity struct {
	userAgent string
	proxy     string
}

func (f *BrowserFetcher) nextIdentity() identity {
	return identity{userAgent: f.proxies.GetUserAgent(), proxy: f.proxies.GetProxy()}
}

func allocatorOptions(id identity) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(id.userAgent),
	)
	if id.proxy != "" {
		opts = append(opts, chromedp.ProxyServer(id.proxy))
	}
	return opts
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	id := f.nextIdentity()
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(id)...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()
	taskCtx, cancel := context.WithTimeout(taskCtx, f.timeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": acceptLanguage}),
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}

	f.logger.Debug("rendered document",
		zap.String("url", url),
		zap.String("proxy", id.proxy),
		zap.Int("bytes", len(htmlContent)),
	)
	return htmlContent, nil
}
