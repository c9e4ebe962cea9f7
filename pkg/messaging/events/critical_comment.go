package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hackathonone/sentiment-backend/pkg/messaging"
)

// CriticalCommentEvent announces a notification raised for a seller.
type CriticalCommentEvent struct {
	NotificationID uuid.UUID `json:"notification_id"`
	SellerID       uuid.UUID `json:"seller_id"`
	ProductID      uuid.UUID `json:"product_id"`
	CommentID      uuid.UUID `json:"comment_id"`
	Sentiment      string    `json:"sentiment"`
	Probability    float64   `json:"probability"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e CriticalCommentEvent) Subject() string {
	return messaging.CriticalCommentsSubject
}

// ID is the notification id, so a retried publish of the same notification is stored once.
func (e CriticalCommentEvent) ID() string {
	return e.NotificationID.String()
}

func (e CriticalCommentEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
