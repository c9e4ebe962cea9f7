package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/hackathonone/sentiment-backend/internal/sentiment"
)

type CustomerKind string

const (
	KindBuyer  CustomerKind = "BUYER"
	KindSeller CustomerKind = "SELLER"
	KindAdmin  CustomerKind = "ADMIN"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "PENDING"
	StatusRead    NotificationStatus = "READ"
)

// ChannelDashboard is the only delivery channel for notifications.
const ChannelDashboard = "DASHBOARD"

type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Kind      CustomerKind
	CreatedAt time.Time
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Price       float64
	ImageURL    string
	Category    string
	Tags        string
	Description string
	SellerID    uuid.UUID
	CreatedAt   time.Time
}

type Comment struct {
	ID        uuid.UUID
	Text      string
	Rating    *int
	Origin    string
	Language  string
	CreatedAt time.Time
	ProductID uuid.UUID
	BuyerID   *uuid.UUID
}

// SentimentResult is one classification. It is never updated after creation.
type SentimentResult struct {
	ID               uuid.UUID
	Text             string
	Sentiment        sentiment.Sentiment
	Probability      float64
	Critical         bool
	AnalyzedAt       time.Time
	ProcessingTimeMs *int64
	Origin           string
	BatchID          *string
	CommentID        *uuid.UUID
}

type Notification struct {
	ID        uuid.UUID
	Message   string
	Status    NotificationStatus
	Channel   string
	CreatedAt time.Time
	SentAt    *time.Time
	SellerID  uuid.UUID
	ResultID  uuid.UUID
}

// CommentView is a comment joined with its product, buyer and sentiment result.
type CommentView struct {
	Comment
	ProductName string
	SellerID    uuid.UUID
	BuyerName   *string
	Result      *SentimentResult
}

// NewComment is everything persisted atomically when a comment is posted.
type NewComment struct {
	Comment      Comment
	Result       SentimentResult
	Notification *Notification
}

// ResultFilter narrows result queries. Nil fields do not filter.
type ResultFilter struct {
	SellerID  *uuid.UUID
	BatchID   *string
	Sentiment *sentiment.Sentiment
	From      *time.Time
	To        *time.Time
}

type ProductFilter struct {
	SellerID *uuid.UUID
	Category string
	// Name matches products whose name contains it, ignoring case.
	Name string
}
