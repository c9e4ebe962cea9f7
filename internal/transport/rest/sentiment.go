package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hackathonone/sentiment-backend/internal/sentiment"
	"github.com/hackathonone/sentiment-backend/internal/service"
	"github.com/hackathonone/sentiment-backend/pkg/web"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"required,min=3"`
}

type batchRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,dive,required"`
}

// Analyze classifies a single text.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	got, err := h.services.Sentiment.Analyze(r.Context(), req.Text)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to analyze text")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, got)
}

// AnalyzeBatch classifies a list of texts and reports every item in input order.
func (h *Handler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.services.Sentiment.AnalyzeBatch(r.Context(), req.Texts)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to analyze batch")
		return
	}
	h.logger.InfoContext(r.Context(), "Batch analyzed", "batch_id", report.BatchID, "total", report.Total)
	web.RespondJSON(w, h.logger, http.StatusOK, report)
}

// ListResults returns stored results, newest first.
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	query := service.ResultQuery{}
	var ok bool
	if query.From, ok = web.QueryTime(w, r, h.logger, "from"); !ok {
		return
	}
	if query.To, ok = web.QueryTime(w, r, h.logger, "to"); !ok {
		return
	}
	if v := r.URL.Query().Get("batch_id"); v != "" {
		query.BatchID = &v
	}
	if v := r.URL.Query().Get("sentiment"); v != "" {
		s, valid := sentiment.Parse(strings.ToUpper(v))
		if !valid {
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid sentiment: %s", v))
			return
		}
		query.Sentiment = &s
	}
	limit, ok := web.QueryInt(w, r, h.logger, "limit")
	if !ok {
		return
	}
	if limit != nil {
		query.Limit = *limit
	}

	list, err := h.services.Sentiment.ListResults(r.Context(), query)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list results")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Stats aggregates every stored result, optionally narrowed to a batch or a time range.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	scope := service.Scope{}
	var ok bool
	if scope.From, ok = web.QueryTime(w, r, h.logger, "from"); !ok {
		return
	}
	if scope.To, ok = web.QueryTime(w, r, h.logger, "to"); !ok {
		return
	}
	if v := r.URL.Query().Get("batch_id"); v != "" {
		scope.BatchID = &v
	}

	report, err := h.services.Stats.ComputeStats(r.Context(), scope)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to compute stats")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, report)
}

// Health reports the service and its dependencies. It always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.services.Health.Check(r.Context()))
}
