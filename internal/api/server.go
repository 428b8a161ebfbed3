package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/domain"
	"github.com/user/offer-scraper/internal/monitoring"
)

// Campaigns accepts campaign requests and reports on finished ones.
type Campaigns interface {
	Submit(req domain.CampaignRequest) error
	Reports() []domain.Report
}

// StatsSource summarizes stored offers.
type StatsSource interface {
	Stats(ctx context.Context) (*domain.Stats, error)
}

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	router     http.Handler
	httpServer *http.Server
	campaigns  Campaigns
	stats      StatsSource
	checks     map[string]Pinger
	metrics    *monitoring.Metrics
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
}

func NewServer(port string, campaigns Campaigns, stats StatsSource, checks map[string]Pinger, m *monitoring.Metrics, gatherer prometheus.Gatherer, l *zap.Logger) *Server {
	s := &Server{
		campaigns: campaigns,
		stats:     stats,
		checks:    checks,
		metrics:   m,
		gatherer:  gatherer,
		logger:    l,
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
