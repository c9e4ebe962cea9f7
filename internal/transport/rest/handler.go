// Package rest provides the HTTP API of the sentiment backend.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/internal/service"
	"github.com/hackathonone/sentiment-backend/pkg/web"
)

// Services groups the business services the handlers delegate to.
type Services struct {
	Sentiment     service.SentimentService
	Stats         service.Aggregator
	Dashboard     service.DashboardService
	Customers     service.CustomerService
	Products      service.ProductService
	Comments      service.CommentService
	Notifications service.NotificationService
	Health        service.HealthService
}

type Handler struct {
	services Services
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(services Services, logger *slog.Logger) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		services: services,
		validate: validate,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes mounts the API under /api/v1 and the liveness probe at /healthz.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sentiment", h.Analyze)
		r.Post("/sentiment/batch", h.AnalyzeBatch)
		r.Get("/sentiment/results", h.ListResults)
		r.Get("/stats", h.Stats)
		r.Get("/health", h.Health)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats/{sellerId}", h.DashboardStats)
			r.Get("/export/{sellerId}", h.DashboardExport)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.FindCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/email/{email}", h.FindCustomerByEmail)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindCustomerByID)
				r.Put("/", h.UpdateCustomer)
				r.Delete("/", h.DeleteCustomer)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.FindProducts)
			r.Post("/", h.CreateProduct)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindProductByID)
				r.Put("/", h.UpdateProduct)
				r.Delete("/", h.DeleteProduct)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/", h.CreateComment)
			r.Get("/{id}", h.FindCommentByID)
			r.Get("/product/{id}", h.FindCommentsByProduct)
			r.Get("/seller/{id}", h.FindCommentsBySeller)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/seller/{id}", h.FindNotificationsBySeller)
			r.Get("/seller/{id}/count", h.CountPendingNotifications)
			r.Patch("/seller/{id}/read", h.MarkAllNotificationsRead)
			r.Patch("/{id}/read", h.MarkNotificationRead)
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck is the liveness probe.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decode reads the JSON body into dst and validates it, answering 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string, len(validationErrors))
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondValidationErrors(w, h.logger, errorResponse)
			return false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// mapError translates a service error into an HTTP status and a client-facing message.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrBusinessRule):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperrors.ErrClassifierUnavailable):
		return http.StatusServiceUnavailable, apperrors.ErrClassifierUnavailable.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), msg, "status", status, "error", err)
	} else {
		h.logger.WarnContext(r.Context(), msg, "status", status, "error", err)
	}
	web.RespondError(w, h.logger, status, message)
}
