package rest

import (
	"log/slog"
	"net/http"

	"github.com/hackathonone/sentiment-backend/internal/service"
	"github.com/hackathonone/sentiment-backend/internal/store"
	"github.com/hackathonone/sentiment-backend/pkg/web"
)

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductCreateDto
	if !h.decode(w, r, &in) {
		return
	}
	created, err := h.services.Products.Create(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", slog.String("ID", created.ID.String()))
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// FindProducts lists products filtered by seller_id, category and a name fragment.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := web.QueryUUID(w, r, h.logger, "seller_id")
	if !ok {
		return
	}
	filter := store.ProductFilter{
		SellerID: sellerID,
		Category: r.URL.Query().Get("category"),
		Name:     r.URL.Query().Get("name"),
	}
	list, err := h.services.Products.FindAll(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

func (h *Handler) FindProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	found, err := h.services.Products.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to find product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	var in service.ProductCreateDto
	if !h.decode(w, r, &in) {
		return
	}
	updated, err := h.services.Products.Update(r.Context(), id, in)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	if err := h.services.Products.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
