package crawler

import (
	"context"

	"go.uber.org/zap"
)

// Query selects the listing to traverse. Category is the portal-specific slug.
type Query struct {
	Category string
	// Quota caps the number of links returned; zero or less means unbounded.
	Quota    int
	YearFrom int
	YearTo   int
}

// pageFunc returns the raw listing document for a 1-based page number.
type pageFunc func(ctx context.Context, page int) (string, error)

// paginate walks pages 1..total collecting links that start with prefix.
// Links keep the order of first discovery and duplicates are dropped. The walk
// stops after the page that fills the quota, or right away when page 1 has no links.
func paginate(ctx context.Context, total, quota int, prefix string, fetch pageFunc, logger *zap.Logger) ([]string, error) {
	var links []string
	seen := make(map[string]struct{})

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		document, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		found, err := CollectLinks(document, prefix)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			if page == 1 {
				logger.Info("first listing page has no offer links, stopping")
				break
			}
			logger.Debug("listing page has no offer links", zap.Int("page", page))
			continue
		}

		for _, link := range found {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
		logger.Debug("listing page collected", zap.Int("page", page), zap.Int("total", total), zap.Int("links", len(links)))

		if quota > 0 && len(links) >= quota {
			break
		}
	}

	if quota > 0 && len(links) > quota {
		links = links[:quota]
	}
	return links, nil
}
