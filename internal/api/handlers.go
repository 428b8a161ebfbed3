package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/crawler"
	"github.com/user/offer-scraper/internal/domain"
)

func (s *Server) handleCampaignRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.campaigns.Submit(req)
	switch {
	case err == nil:
		s.respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Campaign queued"})
	case errors.Is(err, crawler.ErrQueueFull), errors.Is(err, crawler.ErrStopped):
		s.respondWithError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.respondWithError(w, http.StatusBadRequest, err.Error())
	}
}

type reportView struct {
	Portal   string `json:"portal"`
	Category string `json:"category"`
	Links    int    `json:"links"`
	Stored   int    `json:"stored"`
	Aborted  string `json:"aborted,omitempty"`
}

func (s *Server) handleCampaignReports(w http.ResponseWriter, r *http.Request) {
	reports := s.campaigns.Reports()
	views := make([]reportView, 0, len(reports))
	for _, rep := range reports {
		v := reportView{Portal: rep.Portal.Key(), Category: rep.Category, Links: rep.Links, Stored: rep.Stored}
		if rep.Aborted != nil {
			v.Aborted = rep.Aborted.Error()
		}
		views = append(views, v)
	}
	s.respondWithJSON(w, http.StatusOK, views)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to read stats", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve stats")
		return
	}
	s.respondWithJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string, len(s.checks))
	isHealthy := true
	for name, dep := range s.checks {
		if err := dep.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			isHealthy = false
			s.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		code, response = http.StatusInternalServerError, []byte(`{"error":"encoding failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
