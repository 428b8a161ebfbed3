package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
)

// FileLoader replays offer documents saved by an earlier Downloader run.
// Links are document names; the category and year bounds are ignored.
type FileLoader struct {
	folder    string
	documents DocumentStore
	logger    *zap.Logger
}

func NewFileLoader(p domain.Portal, documents DocumentStore, logger *zap.Logger) *FileLoader {
	return &FileLoader{
		folder:    offerFolder(p),
		documents: documents,
		logger:    logger.With(zap.String("portal", p.Key())),
	}
}

func (l *FileLoader) CollectLinks(ctx context.Context, q Query) ([]string, error) {
	names, err := l.documents.List(ctx, l.folder)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", l.folder, err)
	}
	if q.Quota > 0 && len(names) > q.Quota {
		names = names[:q.Quota]
	}
	return names, nil
}

func (l *FileLoader) FetchOffer(ctx context.Context, name string) (string, error) {
	l.logger.Info("loading offer", zap.String("folder", l.folder), zap.String("name", name))
	return l.documents.Load(ctx, l.folder, name)
}
