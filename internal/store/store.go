// Package store provides the storage interfaces for sentiment results and the marketplace entities,
// with an in-memory implementation and a PostgreSQL one.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResultStore persists sentiment results. Results are append-only.
type ResultStore interface {
	// SaveResult stores a new result. A nil ID is generated and a zero AnalyzedAt is set to now.
	SaveResult(ctx context.Context, r SentimentResult) (*SentimentResult, error)

	// FindResultByID returns ErrResultNotFound for an unknown id.
	FindResultByID(ctx context.Context, id uuid.UUID) (*SentimentResult, error)

	// FindResults returns the newest results matching filter, at most limit of them.
	FindResults(ctx context.Context, filter ResultFilter, limit int) ([]SentimentResult, error)

	// Tally aggregates every result matching filter.
	Tally(ctx context.Context, filter ResultFilter) (Tally, error)
}

type CustomerStore interface {
	// CreateCustomer returns ErrEmailAlreadyExists when the email is taken.
	CreateCustomer(ctx context.Context, c Customer) (*Customer, error)
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	// FindCustomers lists customers ordered by name, optionally of one kind.
	FindCustomers(ctx context.Context, kind *CustomerKind) ([]Customer, error)
	// UpdateCustomer overwrites name, email and kind.
	UpdateCustomer(ctx context.Context, c Customer) (*Customer, error)
	// DeleteCustomer returns ErrCustomerInUse while products or comments reference the customer.
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p Product) (*Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, p Product) (*Product, error)
	// DeleteProduct returns ErrProductInUse while comments reference the product.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CountProductsBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type CommentStore interface {
	// CreateComment stores the comment, its result and the optional notification in one unit.
	CreateComment(ctx context.Context, in NewComment) (*CommentView, error)
	FindCommentByID(ctx context.Context, id uuid.UUID) (*CommentView, error)
	// FindCommentsByProduct and FindCommentsBySeller return newest first.
	FindCommentsByProduct(ctx context.Context, productID uuid.UUID) ([]CommentView, error)
	FindCommentsBySeller(ctx context.Context, sellerID uuid.UUID) ([]CommentView, error)
}

type NotificationStore interface {
	FindNotificationByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindNotificationsBySeller returns newest first.
	FindNotificationsBySeller(ctx context.Context, sellerID uuid.UUID, pendingOnly bool) ([]Notification, error)
	CountPendingNotifications(ctx context.Context, sellerID uuid.UUID) (int64, error)
	// MarkNotificationRead moves a pending notification to read. Marking a read one again is a no-op.
	MarkNotificationRead(ctx context.Context, id uuid.UUID) (*Notification, error)
	// MarkAllNotificationsRead moves every pending notification of the seller to read and returns how many changed.
	MarkAllNotificationsRead(ctx context.Context, sellerID uuid.UUID) (int64, error)
	// MarkNotificationSent records when the notification left through its channel.
	MarkNotificationSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Store is the complete persistence surface of the service.
type Store interface {
	ResultStore
	CustomerStore
	ProductStore
	CommentStore
	NotificationStore

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}
