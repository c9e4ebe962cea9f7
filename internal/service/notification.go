package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hackathonone/sentiment-backend/internal/store"
)

// NotificationService exposes the seller notifications raised by critical comments.
type NotificationService interface {
	FindBySeller(ctx context.Context, sellerID uuid.UUID, pendingOnly bool) ([]NotificationDto, error)
	CountPending(ctx context.Context, sellerID uuid.UUID) (int64, error)
	// MarkRead is idempotent. Returns ErrNotificationNotFound for an unknown id.
	MarkRead(ctx context.Context, id uuid.UUID) (*NotificationDto, error)
	// MarkAllRead returns the number of notifications that changed.
	MarkAllRead(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type NotificationDto struct {
	ID          uuid.UUID `json:"id"`
	Mensagem    string    `json:"mensagem"`
	Status      string    `json:"status"`
	Canal       string    `json:"canal"`
	DataCriacao string    `json:"data_criacao"`
	DataEnvio   *string   `json:"data_envio,omitempty"`
	VendedorID  uuid.UUID `json:"vendedor_id"`
	ResultadoID uuid.UUID `json:"resultado_id"`
}

type notificationService struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

func NewNotificationService(notifications store.NotificationStore, logger *slog.Logger) NotificationService {
	return &notificationService{notifications: notifications, logger: logger.With("component", "notification-service")}
}

func (s *notificationService) FindBySeller(ctx context.Context, sellerID uuid.UUID, pendingOnly bool) ([]NotificationDto, error) {
	list, err := s.notifications.FindNotificationsBySeller(ctx, sellerID, pendingOnly)
	if err != nil {
		return nil, err
	}
	dtos := make([]NotificationDto, len(list))
	for i := range list {
		dtos[i] = toNotificationDto(&list[i])
	}
	return dtos, nil
}

func (s *notificationService) CountPending(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	return s.notifications.CountPendingNotifications(ctx, sellerID)
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) (*NotificationDto, error) {
	n, err := s.notifications.MarkNotificationRead(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toNotificationDto(n)
	return &dto, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	changed, err := s.notifications.MarkAllNotificationsRead(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Notifications marked as read", "seller_id", sellerID, "count", changed)
	return changed, nil
}

func toNotificationDto(n *store.Notification) NotificationDto {
	return NotificationDto{
		ID:          n.ID,
		Mensagem:    n.Message,
		Status:      string(n.Status),
		Canal:       n.Channel,
		DataCriacao: n.CreatedAt.Format(time.RFC3339),
		DataEnvio:   formatTime(n.SentAt),
		VendedorID:  n.SellerID,
		ResultadoID: n.ResultID,
	}
}
