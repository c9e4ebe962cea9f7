package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/internal/sentiment"
	"github.com/jackc/pgx/v5"
)

// --- results ---

const resultColumns = `r.id, r.text, r.sentiment, r.probability, r.critical, r.analyzed_at, r.processing_time_ms, r.origin, r.batch_id, r.comment_id`

func scanResult(row pgx.Row) (*SentimentResult, error) {
	var r SentimentResult
	var s string
	err := row.Scan(&r.ID, &r.Text, &s, &r.Probability, &r.Critical, &r.AnalyzedAt, &r.ProcessingTimeMs, &r.Origin, &r.BatchID, &r.CommentID)
	if err != nil {
		return nil, err
	}
	r.Sentiment = sentiment.Sentiment(s)
	return &r, nil
}

func insertResult(ctx context.Context, q querier, r SentimentResult) (*SentimentResult, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.AnalyzedAt.IsZero() {
		r.AnalyzedAt = time.Now().UTC()
	}
	row := q.QueryRow(ctx,
		`INSERT INTO sentiment_results AS r
		 (id, text, sentiment, probability, critical, analyzed_at, processing_time_ms, origin, batch_id, comment_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+resultColumns,
		r.ID, r.Text, r.Sentiment.String(), r.Probability, r.Critical, r.AnalyzedAt, r.ProcessingTimeMs, r.Origin, r.BatchID, r.CommentID)
	saved, err := scanResult(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save sentiment result: %w", err)
	}
	return saved, nil
}

func (p *PgStore) SaveResult(ctx context.Context, r SentimentResult) (*SentimentResult, error) {
	return insertResult(ctx, p.db, r)
}

func (p *PgStore) FindResultByID(ctx context.Context, id uuid.UUID) (*SentimentResult, error) {
	r, err := scanResult(p.db.QueryRow(ctx, `SELECT `+resultColumns+` FROM sentiment_results r WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to find sentiment result: %w", err)
	}
	return r, nil
}

// resultScope renders the FROM clause and conditions for filter.
func resultScope(f ResultFilter) (string, *whereBuilder) {
	from := ` FROM sentiment_results r`
	w := &whereBuilder{}
	if f.SellerID != nil {
		from += ` JOIN comments c ON c.id = r.comment_id JOIN products p ON p.id = c.product_id`
		w.add("p.seller_id = $%d", *f.SellerID)
	}
	if f.BatchID != nil {
		w.add("r.batch_id = $%d", *f.BatchID)
	}
	if f.Sentiment != nil {
		w.add("r.sentiment = $%d", f.Sentiment.String())
	}
	if f.From != nil {
		w.add("r.analyzed_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("r.analyzed_at <= $%d", *f.To)
	}
	return from, w
}

func (p *PgStore) FindResults(ctx context.Context, filter ResultFilter, limit int) ([]SentimentResult, error) {
	from, w := resultScope(filter)
	sql := `SELECT ` + resultColumns + from + w.String() + ` ORDER BY r.analyzed_at DESC, r.id`
	if limit > 0 {
		sql += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := p.db.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find sentiment results: %w", err)
	}
	defer rows.Close()

	list := make([]SentimentResult, 0)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sentiment result: %w", err)
		}
		list = append(list, *r)
	}
	return list, rows.Err()
}

func (p *PgStore) Tally(ctx context.Context, filter ResultFilter) (Tally, error) {
	from, w := resultScope(filter)
	sql := `SELECT count(*),
		count(*) FILTER (WHERE r.sentiment = 'POSITIVE'),
		count(*) FILTER (WHERE r.sentiment = 'NEGATIVE'),
		count(*) FILTER (WHERE r.sentiment = 'NEUTRAL'),
		coalesce(sum(r.probability) FILTER (WHERE r.sentiment = 'POSITIVE'), 0),
		coalesce(sum(r.probability) FILTER (WHERE r.sentiment = 'NEGATIVE'), 0),
		coalesce(sum(r.processing_time_ms), 0)::bigint,
		count(r.processing_time_ms)` + from + w.String()

	var t Tally
	err := p.db.QueryRow(ctx, sql, w.args...).Scan(
		&t.Total, &t.Positive, &t.Negative, &t.Neutral,
		&t.PositiveProbabilitySum, &t.NegativeProbabilitySum,
		&t.ProcessingTimeSumMs, &t.ProcessingTimeCount,
	)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to tally sentiment results: %w", err)
	}
	return t, nil
}

// --- comments ---

const commentViewQuery = `SELECT c.id, c.text, c.rating, c.origin, c.language, c.created_at, c.product_id, c.buyer_id,
	p.name, p.seller_id, b.name,
	r.id, r.text, r.sentiment, r.probability, r.critical, r.analyzed_at, r.processing_time_ms, r.origin, r.batch_id
FROM comments c
JOIN products p ON p.id = c.product_id
LEFT JOIN customers b ON b.id = c.buyer_id
LEFT JOIN sentiment_results r ON r.comment_id = c.id`

func scanCommentView(row pgx.Row) (*CommentView, error) {
	var v CommentView
	var rating *int32
	var (
		rID        *uuid.UUID
		rText      *string
		rSentiment *string
		rProb      *float64
		rCritical  *bool
		rAt        *time.Time
		rTime      *int64
		rOrigin    *string
		rBatch     *string
	)
	err := row.Scan(
		&v.ID, &v.Text, &rating, &v.Origin, &v.Language, &v.CreatedAt, &v.ProductID, &v.BuyerID,
		&v.ProductName, &v.SellerID, &v.BuyerName,
		&rID, &rText, &rSentiment, &rProb, &rCritical, &rAt, &rTime, &rOrigin, &rBatch,
	)
	if err != nil {
		return nil, err
	}
	if rating != nil {
		n := int(*rating)
		v.Rating = &n
	}
	if rID != nil {
		commentID := v.ID
		v.Result = &SentimentResult{
			ID:               *rID,
			Text:             *rText,
			Sentiment:        sentiment.Sentiment(*rSentiment),
			Probability:      *rProb,
			Critical:         *rCritical,
			AnalyzedAt:       *rAt,
			ProcessingTimeMs: rTime,
			Origin:           *rOrigin,
			BatchID:          rBatch,
			CommentID:        &commentID,
		}
	}
	return &v, nil
}

func findCommentView(ctx context.Context, q querier, id uuid.UUID) (*CommentView, error) {
	v, err := scanCommentView(q.QueryRow(ctx, commentViewQuery+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return v, nil
}

func (p *PgStore) CreateComment(ctx context.Context, in NewComment) (*CommentView, error) {
	c := in.Comment
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var rating *int32
	if c.Rating != nil {
		n := int32(*c.Rating)
		rating = &n
	}

	var view *CommentView
	err := p.withTransaction(ctx, func(q querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO comments (id, text, rating, origin, language, created_at, product_id, buyer_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.Text, rating, c.Origin, c.Language, c.CreatedAt, c.ProductID, c.BuyerID)
		if err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				return apperrors.ErrProductNotFound
			}
			return fmt.Errorf("failed to create comment: %w", err)
		}

		r := in.Result
		r.CommentID = &c.ID
		saved, err := insertResult(ctx, q, r)
		if err != nil {
			return err
		}

		if in.Notification != nil {
			if err := insertNotification(ctx, q, *in.Notification, saved.ID); err != nil {
				return err
			}
		}

		view, err = findCommentView(ctx, q, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (p *PgStore) FindCommentByID(ctx context.Context, id uuid.UUID) (*CommentView, error) {
	return findCommentView(ctx, p.db, id)
}

func (p *PgStore) FindCommentsByProduct(ctx context.Context, productID uuid.UUID) ([]CommentView, error) {
	return p.findComments(ctx, ` WHERE c.product_id = $1`, productID)
}

func (p *PgStore) FindCommentsBySeller(ctx context.Context, sellerID uuid.UUID) ([]CommentView, error) {
	return p.findComments(ctx, ` WHERE p.seller_id = $1`, sellerID)
}

func (p *PgStore) findComments(ctx context.Context, where string, arg any) ([]CommentView, error) {
	rows, err := p.db.Query(ctx, commentViewQuery+where+` ORDER BY c.created_at DESC, c.id`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	defer rows.Close()

	list := make([]CommentView, 0)
	for rows.Next() {
		v, err := scanCommentView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// --- notifications ---

const notificationColumns = `id, message, status, channel, created_at, sent_at, seller_id, result_id`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var status string
	if err := row.Scan(&n.ID, &n.Message, &status, &n.Channel, &n.CreatedAt, &n.SentAt, &n.SellerID, &n.ResultID); err != nil {
		return nil, err
	}
	n.Status = NotificationStatus(status)
	return &n, nil
}

func insertNotification(ctx context.Context, q querier, n Notification, resultID uuid.UUID) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx,
		`INSERT INTO notifications (id, message, status, channel, created_at, sent_at, seller_id, result_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Message, string(n.Status), n.Channel, n.CreatedAt, n.SentAt, n.SellerID, resultID)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (p *PgStore) FindNotificationByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := scanNotification(p.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return n, nil
}

func (p *PgStore) FindNotificationsBySeller(ctx context.Context, sellerID uuid.UUID, pendingOnly bool) ([]Notification, error) {
	sql := `SELECT ` + notificationColumns + ` FROM notifications WHERE seller_id = $1`
	if pendingOnly {
		sql += ` AND status = 'PENDING'`
	}
	sql += ` ORDER BY created_at DESC, id`

	rows, err := p.db.Query(ctx, sql, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer rows.Close()

	list := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

func (p *PgStore) CountPendingNotifications(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var n int64
	err := p.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE seller_id = $1 AND status = 'PENDING'`, sellerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return n, nil
}

func (p *PgStore) MarkNotificationRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, err := scanNotification(p.db.QueryRow(ctx,
		`UPDATE notifications SET status = 'READ' WHERE id = $1 RETURNING `+notificationColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}

func (p *PgStore) MarkAllNotificationsRead(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	tag, err := p.db.Exec(ctx, `UPDATE notifications SET status = 'READ' WHERE seller_id = $1 AND status = 'PENDING'`, sellerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *PgStore) MarkNotificationSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := p.db.Exec(ctx, `UPDATE notifications SET sent_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
