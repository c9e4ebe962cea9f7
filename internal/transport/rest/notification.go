package rest

import (
	"net/http"

	"github.com/hackathonone/sentiment-backend/pkg/web"
)

type pendingCountResponse struct {
	Pendentes int64 `json:"pendentes"`
}

func (h *Handler) FindNotificationsBySeller(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	pendingOnly, ok := web.QueryBool(w, r, h.logger, "pending_only")
	if !ok {
		return
	}
	list, err := h.services.Notifications.FindBySeller(r.Context(), sellerID, pendingOnly)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list notifications")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

func (h *Handler) CountPendingNotifications(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	n, err := h.services.Notifications.CountPending(r.Context(), sellerID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to count notifications")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, pendingCountResponse{Pendentes: n})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	n, err := h.services.Notifications.MarkRead(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to mark notification as read")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, n)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	if _, err := h.services.Notifications.MarkAllRead(r.Context(), sellerID); err != nil {
		h.respondServiceError(w, r, err, "Failed to mark notifications as read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
