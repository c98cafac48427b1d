package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"numu-analytics-backend/internal/syncer"
)

// SyncRunner triggers sync runs against the external survey platform.
type SyncRunner interface {
	Run(ctx context.Context, surveyID string) (syncer.Result, error)
	FullResync(ctx context.Context) (syncer.Result, error)
}

// LastSyncSource reads the most recent sync outcome, if any.
type LastSyncSource interface {
	LastSync(ctx context.Context) (*syncer.Result, error)
}

type SyncHandler struct {
	runner SyncRunner
	status LastSyncSource
}

// NewSyncHandler accepts a nil runner: the server still boots without
// external API credentials, it just refuses to trigger syncs.
func NewSyncHandler(runner SyncRunner, status LastSyncSource) *SyncHandler {
	return &SyncHandler{runner: runner, status: status}
}

func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("CONFIG_ERROR", "External survey API is not configured", r))
		return
	}

	var req struct {
		Full     bool   `json:"full"`
		SurveyID string `json:"survey_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}

	var res syncer.Result
	var err error
	if req.Full {
		res, err = h.runner.FullResync(r.Context())
	} else {
		res, err = h.runner.Run(r.Context(), req.SurveyID)
	}

	if errors.Is(err, syncer.ErrSyncInProgress) {
		writeJSON(w, http.StatusConflict, errorResp("SYNC_IN_PROGRESS", "A sync run is already in progress", r))
		return
	}

	body := map[string]interface{}{
		"status":    "completed",
		"surveys":   res.Surveys,
		"responses": res.Responses,
		"pages":     res.Pages,
		"partial":   res.Partial,
		"message":   "Sync completed successfully",
	}
	if err != nil {
		// A partial run still reports what it managed to apply.
		log.Printf("Sync finished with error: %v", err)
		body["status"] = "partial"
		body["message"] = "Sync completed with errors"
		body["error"] = err.Error()
	}

	writeJSON(w, http.StatusOK, body)
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No sync has been recorded yet", r))
		return
	}

	last, err := h.status.LastSync(r.Context())
	if err != nil {
		log.Printf("Failed to read sync status: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to read sync status", r))
		return
	}
	if last == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No sync has been recorded yet", r))
		return
	}

	writeJSON(w, http.StatusOK, successResp(last))
}
