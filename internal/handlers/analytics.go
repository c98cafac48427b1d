package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"numu-analytics-backend/internal/analytics"
)

// Counter reports how many rows a repository holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type AnalyticsHandler struct {
	service   *analytics.Service
	surveys   Counter
	responses Counter
}

func NewAnalyticsHandler(service *analytics.Service, surveys, responses Counter) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, surveys: surveys, responses: responses}
}

// Records serves the flattened per-response rows the dashboard table
// renders. Unlike the analytics views it returns a bare array.
func (h *AnalyticsHandler) Records(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		log.Printf("Failed to load response records: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load responses", r))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *AnalyticsHandler) Count(w http.ResponseWriter, r *http.Request) {
	surveyCount, err := h.surveys.Count(r.Context())
	if err != nil {
		log.Printf("Failed to count surveys: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to count records", r))
		return
	}
	responseCount, err := h.responses.Count(r.Context())
	if err != nil {
		log.Printf("Failed to count responses: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to count records", r))
		return
	}

	writeJSON(w, http.StatusOK, successResp(map[string]int64{
		"surveys":          surveyCount,
		"survey_responses": responseCount,
	}))
}

func (h *AnalyticsHandler) Dissemination(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Dissemination(r.Context(), surveyIDFilter(r))
	if err != nil {
		log.Printf("Failed to compute dissemination metrics: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to compute metrics", r))
		return
	}
	writeJSON(w, http.StatusOK, successResp(metrics))
}

func (h *AnalyticsHandler) Geographic(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Geographic(r.Context(), surveyIDFilter(r))
	if err != nil {
		log.Printf("Failed to compute geographic metrics: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to compute metrics", r))
		return
	}
	writeJSON(w, http.StatusOK, successResp(metrics))
}

func (h *AnalyticsHandler) Interests(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Interests(r.Context(), surveyIDFilter(r))
	if err != nil {
		log.Printf("Failed to compute interest metrics: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to compute metrics", r))
		return
	}
	writeJSON(w, http.StatusOK, successResp(metrics))
}

func (h *AnalyticsHandler) Learner(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	profile, err := h.service.LearnerProfile(r.Context(), email)
	if err != nil {
		if errors.Is(err, analytics.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"message": "No profile found for the given email.",
			})
			return
		}
		log.Printf("Failed to build learner profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to build profile", r))
		return
	}

	writeJSON(w, http.StatusOK, successResp(profile))
}

// surveyIDFilter reads the optional survey_id query parameter. Nil means
// aggregate across all surveys.
func surveyIDFilter(r *http.Request) *string {
	if id := r.URL.Query().Get("survey_id"); id != "" {
		return &id
	}
	return nil
}
