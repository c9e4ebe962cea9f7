package rest

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hackathonone/sentiment-backend/internal/service"
	"github.com/hackathonone/sentiment-backend/internal/store"
	"github.com/hackathonone/sentiment-backend/pkg/web"
)

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in service.CustomerCreateDto
	if !h.decode(w, r, &in) {
		return
	}
	created, err := h.services.Customers.Create(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create customer")
		return
	}
	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.String("ID", created.ID.String()))
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// FindCustomers lists customers, optionally of a single kind.
func (h *Handler) FindCustomers(w http.ResponseWriter, r *http.Request) {
	var kind *store.CustomerKind
	if v := r.URL.Query().Get("kind"); v != "" {
		k := store.CustomerKind(v)
		switch k {
		case store.KindBuyer, store.KindSeller, store.KindAdmin:
			kind = &k
		default:
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid kind: %s", v))
			return
		}
	}
	list, err := h.services.Customers.FindAll(r.Context(), kind)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list customers")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

func (h *Handler) FindCustomerByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	found, err := h.services.Customers.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to find customer")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

func (h *Handler) FindCustomerByEmail(w http.ResponseWriter, r *http.Request) {
	found, err := h.services.Customers.FindByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to find customer by email")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	var in service.CustomerCreateDto
	if !h.decode(w, r, &in) {
		return
	}
	updated, err := h.services.Customers.Update(r.Context(), id, in)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update customer")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathUUID(w, r, h.logger, "id")
	if !ok {
		return
	}
	if err := h.services.Customers.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete customer")
		return
	}
	h.logger.InfoContext(r.Context(), "Customer deleted", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}
