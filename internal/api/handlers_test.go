package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/offer-scraper/internal/crawler"
	"github.com/user/offer-scraper/internal/domain"
	"github.com/user/offer-scraper/internal/monitoring"
)

type fakeCampaigns struct {
	submitted []domain.CampaignRequest
	err       error
	reports   []domain.Report
}

func (f *fakeCampaigns) Submit(req domain.CampaignRequest) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, req)
	return nil
}

func (f *fakeCampaigns) Reports() []domain.Report {
	return f.reports
}

type fakeStats struct {
	stats *domain.Stats
	err   error
}

func (f fakeStats) Stats(context.Context) (*domain.Stats, error) {
	return f.stats, f.err
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, campaigns *fakeCampaigns, stats StatsSource, checks map[string]Pinger) (*httptest.Server, *monitoring.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := monitoring.NewMetrics(reg)
	s := NewServer("0", campaigns, stats, checks, m, reg, zaptest.NewLogger(t))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, m
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCampaignRequest(t *testing.T) {
	campaigns := &fakeCampaigns{}
	srv, _ := newTestServer(t, campaigns, fakeStats{}, nil)

	body := `{"portal":"autoscout24","category":"ford focus mk3","quota":4,"year_from":2005,"year_to":2011}`
	resp, err := http.Post(srv.URL+"/api/campaigns", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	require.Len(t, campaigns.submitted, 1)
	assert.Equal(t, domain.CampaignRequest{Portal: "autoscout24", Category: "ford focus mk3", Quota: 4, YearFrom: 2005, YearTo: 2011}, campaigns.submitted[0])
}

func TestCampaignRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{"portal":`, nil, http.StatusBadRequest},
		{"unknown portal", `{"portal":"mobile"}`, domain.ErrUnknownPortal, http.StatusBadRequest},
		{"queue full", `{"portal":"olx","category":"passat b8"}`, crawler.ErrQueueFull, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &fakeCampaigns{err: tt.err}, fakeStats{}, nil)

			resp, err := http.Post(srv.URL+"/api/campaigns", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var payload map[string]string
			decode(t, resp, &payload)
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestCampaignReports(t *testing.T) {
	campaigns := &fakeCampaigns{reports: []domain.Report{
		{Portal: domain.Otomoto, Category: "passat b8", Links: 4, Stored: 4},
		{Portal: domain.Olx, Category: "ford focus mk3", Links: 5, Stored: 2, Aborted: errors.New("fetch l3: timeout")},
	}}
	srv, _ := newTestServer(t, campaigns, fakeStats{}, nil)

	resp, err := http.Get(srv.URL + "/api/campaigns")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var views []reportView
	decode(t, resp, &views)
	require.Len(t, views, 2)
	assert.Equal(t, reportView{Portal: "otomoto", Category: "passat b8", Links: 4, Stored: 4}, views[0])
	assert.Equal(t, "fetch l3: timeout", views[1].Aborted)
}

func TestStats(t *testing.T) {
	minYear, maxYear := int64(2010), int64(2018)
	srv, _ := newTestServer(t, &fakeCampaigns{}, fakeStats{stats: &domain.Stats{Campaigns: 2, Offers: 8, Portals: 1, MinYear: &minYear, MaxYear: &maxYear}}, nil)

	resp, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	decode(t, resp, &got)
	assert.Equal(t, 8.0, got["offers"])
	assert.Equal(t, 2010.0, got["min_production_year"])
	assert.NotContains(t, got, "min_price")

	srv, _ = newTestServer(t, &fakeCampaigns{}, fakeStats{err: errors.New("db down")}, nil)
	resp, err = http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	broken := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	srv, _ := newTestServer(t, &fakeCampaigns{}, fakeStats{}, map[string]Pinger{"sink": healthy})
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status map[string]string
	decode(t, resp, &status)
	assert.Equal(t, map[string]string{"sink": "healthy"}, status)

	srv, _ = newTestServer(t, &fakeCampaigns{}, fakeStats{}, map[string]Pinger{"sink": healthy, "redis": broken})
	resp, err = http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	decode(t, resp, &status)
	assert.Equal(t, "unhealthy", status["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, m := newTestServer(t, &fakeCampaigns{}, fakeStats{}, nil)
	m.IncStored("otomoto")

	resp, err := http.Get(srv.URL + "/api/campaigns")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/campaigns", "200")) == 1
	}, time.Second, 10*time.Millisecond)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `scraper_offers_stored_total{portal="otomoto"} 1`)
}
