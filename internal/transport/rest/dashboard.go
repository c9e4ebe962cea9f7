package rest

import (
	"net/http"

	"github.com/hackathonone/sentiment-backend/pkg/web"
)

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := web.PathUUID(w, r, h.logger, "sellerId")
	if !ok {
		return
	}
	stats, err := h.services.Dashboard.Stats(r.Context(), sellerID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to build dashboard")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, stats)
}

func (h *Handler) DashboardExport(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := web.PathUUID(w, r, h.logger, "sellerId")
	if !ok {
		return
	}
	export, err := h.services.Dashboard.Export(r.Context(), sellerID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to export dashboard")
		return
	}
	h.logger.InfoContext(r.Context(), "Dashboard exported", "seller_id", sellerID, "comments", len(export.Comentarios))
	web.RespondJSON(w, h.logger, http.StatusOK, export)
}
