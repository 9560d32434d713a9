package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Query struct {
	Status string
	Limit  int
	Offset int
}

// PaymentUpdate is the reconciled state written back onto an order.
type PaymentUpdate struct {
	Status           string
	PaymentStatus    string
	PaymentReference string
	UpdatedAt        time.Time
}

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	GetByTrackingCode(ctx context.Context, code string) (*Order, []Item, error)
	List(ctx context.Context, q Query) ([]Order, error)
	// ApplyPaymentUpdate overwrites payment state on the order whose
	// payment_reference matches ref. Returns false when no row matched.
	ApplyPaymentUpdate(ctx context.Context, ref string, u PaymentUpdate) (bool, error)
	DeleteItemsForOrders(ctx context.Context, orderIDs []string) (int64, error)
	DeleteOrders(ctx context.Context, orderIDs []string) (int64, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO orders (id, tracking_code, status, payment_status, payment_reference,
                        total, customer_email, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
  `, o.ID, o.TrackingCode, o.Status, o.PaymentStatus, o.PaymentReference, o.Total, o.CustomerEmail); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, product_name, quantity, price)
      VALUES ($1,$2,$3,$4,$5)
    `, it.ID, o.ID, it.ProductName, it.Quantity, it.Price); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	if err := r.db.QueryRow(ctx, `
    SELECT id,tracking_code,status,payment_status,payment_reference,total::text,
           customer_email,created_at,updated_at
    FROM orders WHERE id=$1
  `, id).Scan(&o.ID, &o.TrackingCode, &o.Status, &o.PaymentStatus, &o.PaymentReference,
		&o.Total, &o.CustomerEmail, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, nil, ErrNotFound
	}
	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, nil, err
	}
	return &o, items, nil
}

// GetByTrackingCode looks up by the customer-facing code. Codes are stored
// uppercase; the input is normalized before the match so lookups are
// case-insensitive.
func (r *PGRepo) GetByTrackingCode(ctx context.Context, code string) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	code = strings.ToUpper(strings.TrimSpace(code))
	var o Order
	if err := r.db.QueryRow(ctx, `
    SELECT id,tracking_code,status,payment_status,payment_reference,total::text,
           customer_email,created_at,updated_at
    FROM orders WHERE UPPER(tracking_code)=$1
  `, code).Scan(&o.ID, &o.TrackingCode, &o.Status, &o.PaymentStatus, &o.PaymentReference,
		&o.Total, &o.CustomerEmail, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, nil, ErrNotFound
	}
	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, nil, err
	}
	return &o, items, nil
}

func (r *PGRepo) itemsFor(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id,order_id,product_name,quantity,price::text
    FROM order_items WHERE order_id=$1
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
    SELECT id,tracking_code,status,payment_status,payment_reference,total::text,
           customer_email,created_at,updated_at
    FROM orders
    WHERE ($1 = '' OR status = $1)
    ORDER BY created_at DESC LIMIT $2 OFFSET $3
  `, q.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.TrackingCode, &o.Status, &o.PaymentStatus, &o.PaymentReference,
			&o.Total, &o.CustomerEmail, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) ApplyPaymentUpdate(ctx context.Context, ref string, u PaymentUpdate) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders
    SET status = $2, payment_status = $3, payment_reference = $4, updated_at = $5
    WHERE payment_reference = $1
  `, ref, u.Status, u.PaymentStatus, u.PaymentReference, u.UpdatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) DeleteItemsForOrders(ctx context.Context, orderIDs []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    DELETE FROM order_items WHERE order_id = ANY($1)
  `, orderIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepo) DeleteOrders(ctx context.Context, orderIDs []string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    DELETE FROM orders WHERE id = ANY($1)
  `, orderIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
