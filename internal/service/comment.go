package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/internal/sentiment"
	"github.com/hackathonone/sentiment-backend/internal/store"
	"github.com/hackathonone/sentiment-backend/pkg/messaging"
	"github.com/hackathonone/sentiment-backend/pkg/messaging/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultLanguage = "pt-BR"

	fallbackProbability = 0.5

	criticalMessage = "Comentário crítico detectado no produto '%s'. Sentimento: %s (%.0f%% de certeza)"
)

// CommentService accepts product reviews and classifies them as they arrive.
type CommentService interface {
	// Create stores the comment with its sentiment. When the classifier is unavailable the comment
	// is still stored with a neutral fallback result. A critical result raises a seller notification.
	Create(ctx context.Context, in CommentCreateDto) (*CommentDto, error)
	FindByID(ctx context.Context, id uuid.UUID) (*CommentDto, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]CommentDto, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]CommentDto, error)
}

type CommentCreateDto struct {
	Texto       string     `json:"texto" validate:"required,min=3"`
	Nota        *int       `json:"nota" validate:"omitempty,min=1,max=5"`
	Origem      string     `json:"origem" validate:"max=50"`
	Idioma      string     `json:"idioma" validate:"max=10"`
	ProdutoID   uuid.UUID  `json:"produto_id" validate:"required"`
	CompradorID *uuid.UUID `json:"comprador_id"`
}

type CommentDto struct {
	ID            uuid.UUID  `json:"id"`
	Texto         string     `json:"texto"`
	Nota          *int       `json:"nota,omitempty"`
	Origem        string     `json:"origem"`
	Idioma        string     `json:"idioma"`
	DataCriacao   string     `json:"data_criacao"`
	ProdutoID     uuid.UUID  `json:"produto_id"`
	ProdutoNome   string     `json:"produto_nome"`
	CompradorID   *uuid.UUID `json:"comprador_id,omitempty"`
	CompradorNome *string    `json:"comprador_nome,omitempty"`
	Sentimento    *string    `json:"sentimento,omitempty"`
	Probabilidade *float64   `json:"probabilidade,omitempty"`
	Critico       bool       `json:"eh_critico"`
}

type commentService struct {
	store         store.Store
	classifier    Classifier
	rule          sentiment.Rule
	publisher     messaging.Publisher
	logger        *slog.Logger
	comments      metric.Int64Counter
	notifications metric.Int64Counter
	now           func() time.Time
}

func NewCommentService(s store.Store, c Classifier, rule sentiment.Rule, publisher messaging.Publisher, logger *slog.Logger) CommentService {
	return &commentService{
		store:         s,
		classifier:    c,
		rule:          rule,
		publisher:     publisher,
		logger:        logger.With("component", "comment-service"),
		comments:      mustCounter("comments_created", "Total number of created comments"),
		notifications: mustCounter("critical_notifications_created", "Total number of notifications raised for critical comments"),
		now:           time.Now,
	}
}

func (s *commentService) Create(ctx context.Context, in CommentCreateDto) (*CommentDto, error) {
	text := strings.TrimSpace(in.Texto)
	if err := validateText(text); err != nil {
		return nil, err
	}

	product, err := s.store.FindProductByID(ctx, in.ProdutoID)
	if err != nil {
		return nil, err
	}
	buyerID, err := s.buyer(ctx, in.CompradorID)
	if err != nil {
		return nil, err
	}

	origin := orDefault(in.Origem, OriginSite)
	comment := store.Comment{
		Text:      text,
		Rating:    in.Nota,
		Origin:    origin,
		Language:  orDefault(in.Idioma, defaultLanguage),
		ProductID: product.ID,
		BuyerID:   buyerID,
	}
	result := s.classify(ctx, text, origin)

	var notification *store.Notification
	if result.Critical {
		notification = &store.Notification{
			ID:       uuid.New(),
			Message:  fmt.Sprintf(criticalMessage, product.Name, result.Sentiment.Label(), result.Probability*100),
			Status:   store.StatusPending,
			Channel:  store.ChannelDashboard,
			SellerID: product.SellerID,
		}
	}

	view, err := s.store.CreateComment(ctx, store.NewComment{Comment: comment, Result: result, Notification: notification})
	if err != nil {
		return nil, err
	}
	s.comments.Add(ctx, 1, metric.WithAttributes(attribute.String("origin", result.Origin)))

	if notification != nil {
		s.notifications.Add(ctx, 1)
		s.publish(ctx, view, notification)
	}

	dto := toCommentDto(view)
	return &dto, nil
}

// buyer drops a buyer id that does not resolve to a customer.
func (s *commentService) buyer(ctx context.Context, id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	_, err := s.store.FindCustomerByID(ctx, *id)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.InfoContext(ctx, "Ignoring unknown buyer", "buyer_id", id)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return id, nil
}

// classify never fails. A classifier error yields the neutral fallback result.
func (s *commentService) classify(ctx context.Context, text, origin string) store.SentimentResult {
	start := time.Now()
	p, err := s.classifier.Predict(ctx, text)
	if err != nil {
		s.logger.WarnContext(ctx, "Classifier unavailable, storing fallback sentiment", "error", err)
		return store.SentimentResult{
			Text:        text,
			Sentiment:   sentiment.Neutral,
			Probability: fallbackProbability,
			Origin:      OriginFallback,
		}
	}
	elapsed := elapsedMs(start)

	label := sentiment.Normalize(p.Label)
	return store.SentimentResult{
		Text:             text,
		Sentiment:        label,
		Probability:      p.Probability,
		Critical:         s.rule.IsCritical(label, p.Probability),
		ProcessingTimeMs: &elapsed,
		Origin:           origin,
	}
}

func (s *commentService) publish(ctx context.Context, view *store.CommentView, n *store.Notification) {
	event := events.CriticalCommentEvent{
		NotificationID: n.ID,
		SellerID:       n.SellerID,
		ProductID:      view.ProductID,
		CommentID:      view.ID,
		Sentiment:      view.Result.Sentiment.String(),
		Probability:    view.Result.Probability,
		Message:        n.Message,
		CreatedAt:      view.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish CriticalCommentEvent", "notification_id", n.ID, "error", err)
		return
	}
	if err := s.store.MarkNotificationSent(ctx, n.ID, s.now()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to mark notification as sent", "notification_id", n.ID, "error", err)
	}
}

func (s *commentService) FindByID(ctx context.Context, id uuid.UUID) (*CommentDto, error) {
	view, err := s.store.FindCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toCommentDto(view)
	return &dto, nil
}

func (s *commentService) FindByProduct(ctx context.Context, productID uuid.UUID) ([]CommentDto, error) {
	if _, err := s.store.FindProductByID(ctx, productID); err != nil {
		return nil, err
	}
	views, err := s.store.FindCommentsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toCommentDtos(views), nil
}

func (s *commentService) FindBySeller(ctx context.Context, sellerID uuid.UUID) ([]CommentDto, error) {
	if _, err := s.store.FindCustomerByID(ctx, sellerID); err != nil {
		return nil, err
	}
	views, err := s.store.FindCommentsBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return toCommentDtos(views), nil
}

func toCommentDtos(views []store.CommentView) []CommentDto {
	dtos := make([]CommentDto, len(views))
	for i := range views {
		dtos[i] = toCommentDto(&views[i])
	}
	return dtos
}

func toCommentDto(v *store.CommentView) CommentDto {
	dto := CommentDto{
		ID:            v.ID,
		Texto:         v.Text,
		Nota:          v.Rating,
		Origem:        v.Origin,
		Idioma:        v.Language,
		DataCriacao:   v.CreatedAt.Format(time.RFC3339),
		ProdutoID:     v.ProductID,
		ProdutoNome:   v.ProductName,
		CompradorID:   v.BuyerID,
		CompradorNome: v.BuyerName,
	}
	if v.Result != nil {
		label := v.Result.Sentiment.Label()
		probability := v.Result.Probability
		dto.Sentimento = &label
		dto.Probabilidade = &probability
		dto.Critico = v.Result.Critical
	}
	return dto
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
