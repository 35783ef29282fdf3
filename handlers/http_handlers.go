package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Perceptus-Labs/perceptus-coach/models"
	"github.com/Perceptus-Labs/perceptus-coach/utils"
	"go.uber.org/zap"
)

func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func HandleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Scenarios)
}

// HandleFeedback scores a request body directly, without a live session.
func (s *Server) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	modality, err := models.ParseModality(r.URL.Query().Get("modality"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid feedback request: "+err.Error(), http.StatusBadRequest)
		return
	}

	result := s.Selector.GetFeedback(r.Context(), req, modality)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) HandleReport(w http.ResponseWriter, r *http.Request) {
	if s.Reports == nil {
		http.Error(w, "report storage not configured", http.StatusServiceUnavailable)
		return
	}

	report, err := s.Reports.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, utils.ErrReportNotFound) {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.Logger.Error("Failed to load report", zap.Error(err))
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleUserReports lists the ids of a user's latest reports, newest first.
func (s *Server) HandleUserReports(w http.ResponseWriter, r *http.Request) {
	if s.Reports == nil {
		http.Error(w, "report storage not configured", http.StatusServiceUnavailable)
		return
	}

	limit := int64(10)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ids, err := s.Reports.Recent(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.Logger.Error("Failed to list reports", zap.Error(err))
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": ids})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("Failed to write response", zap.Error(err))
	}
}
