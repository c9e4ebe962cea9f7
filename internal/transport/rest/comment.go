package rest

import (
	"log/slog"
	"net/http"

	"github.com/hackathonone/sentiment-backend/internal/service"
	"github.com/hackathonone/sentiment-backend/pkg/web"
)

// CreateComment stores a review and classifies it. The classifier being down does not fail the request.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentCreateDto
	if !h.decode(w, r, &in) {
		return
	}
	created, err := h.services.Comments.Create(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create comment")
		return
	}
	h.logger.InfoContext(r.Context(), "Comment created successfully", slog.String("ID", created.ID.String()), "critical", created.Critico)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

func (h *Handler) FindCommentByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	found, err := h.services.Comments.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to find comment")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

func (h *Handler) FindCommentsByProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	list, err := h.services.Comments.FindByProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list product comments")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

func (h *Handler) FindCommentsBySeller(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	list, err := h.services.Comments.FindBySeller(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list seller comments")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}
