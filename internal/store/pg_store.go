package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*PgStore)(nil)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new PgStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(q querier) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTransactionBegin, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrTransactionCommit, err)
	}
	return nil
}

// --- customers ---

const customerColumns = `id, name, email, kind, created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var kind string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &kind, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Kind = CustomerKind(kind)
	return &c, nil
}

func (p *PgStore) CreateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	row := p.db.QueryRow(ctx,
		`INSERT INTO customers (id, name, email, kind, created_at) VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+customerColumns,
		c.ID, c.Name, c.Email, string(c.Kind), c.CreatedAt)
	created, err := scanCustomer(row)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return created, nil
}

func (p *PgStore) FindCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return p.findCustomer(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (p *PgStore) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	return p.findCustomer(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (p *PgStore) findCustomer(ctx context.Context, sql string, arg any) (*Customer, error) {
	c, err := scanCustomer(p.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

func (p *PgStore) FindCustomers(ctx context.Context, kind *CustomerKind) ([]Customer, error) {
	sql := `SELECT ` + customerColumns + ` FROM customers`
	var args []any
	if kind != nil {
		sql += ` WHERE kind = $1`
		args = append(args, string(*kind))
	}
	sql += ` ORDER BY name, id`

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find customers: %w", err)
	}
	defer rows.Close()

	list := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func (p *PgStore) UpdateCustomer(ctx context.Context, c Customer) (*Customer, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE customers SET name = $2, email = $3, kind = $4 WHERE id = $1 RETURNING `+customerColumns,
		c.ID, c.Name, c.Email, string(c.Kind))
	updated, err := scanCustomer(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrCustomerNotFound
		case pgCode(err) == pgUniqueViolation:
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return updated, nil
}

func (p *PgStore) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperrors.ErrCustomerInUse
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCustomerNotFound
	}
	return nil
}

// --- products ---

const productColumns = `id, name, price, image_url, category, tags, description, seller_id, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var pr Product
	err := row.Scan(&pr.ID, &pr.Name, &pr.Price, &pr.ImageURL, &pr.Category, &pr.Tags, &pr.Description, &pr.SellerID, &pr.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (p *PgStore) CreateProduct(ctx context.Context, pr Product) (*Product, error) {
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now().UTC()
	}
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+productColumns,
		pr.ID, pr.Name, pr.Price, pr.ImageURL, pr.Category, pr.Tags, pr.Description, pr.SellerID, pr.CreatedAt)
	created, err := scanProduct(row)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

func (p *PgStore) FindProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	pr, err := scanProduct(p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return pr, nil
}

func (p *PgStore) FindProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var w whereBuilder
	if filter.SellerID != nil {
		w.add("seller_id = $%d", *filter.SellerID)
	}
	if filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	if filter.Name != "" {
		w.add("strpos(lower(name), lower($%d)) > 0", filter.Name)
	}

	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products`+w.String()+` ORDER BY name, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	list := make([]Product, 0)
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, *pr)
	}
	return list, rows.Err()
}

func (p *PgStore) UpdateProduct(ctx context.Context, pr Product) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, price = $3, image_url = $4, category = $5, tags = $6, description = $7, seller_id = $8
		 WHERE id = $1
		 RETURNING `+productColumns,
		pr.ID, pr.Name, pr.Price, pr.ImageURL, pr.Category, pr.Tags, pr.Description, pr.SellerID)
	updated, err := scanProduct(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrProductNotFound
		case pgCode(err) == pgForeignKeyViolation:
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

func (p *PgStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperrors.ErrProductInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

func (p *PgStore) CountProductsBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var n int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE seller_id = $1`, sellerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// whereBuilder numbers placeholders as conditions are appended.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition whose single %d is replaced with the next placeholder index.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
