// README: Order store backed by PostgreSQL; owner/rider identity joined in for display.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"breeze/internal/types"
)

// Store is the persistence boundary for orders. The status engine is its only
// writer for status, the paid/delivered flags, and the rider assignment.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	// UpdateStatus persists the status engine's mutations. Concurrency control
	// is last-writer-wins: the row is matched by id only, and the second of
	// two racing writes overwrites the first (validation happens against the
	// pre-read status).
	UpdateStatus(ctx context.Context, o *Order) error
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Order, error)
	ListByRider(ctx context.Context, riderID types.ID) ([]Order, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type pgStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, o *Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var txID, payStatus, payEmail *string
	var payTime *time.Time
	if o.PaymentResult != nil {
		txID = &o.PaymentResult.TransactionID
		payStatus = &o.PaymentResult.Status
		payEmail = &o.PaymentResult.PayerEmail
		t := o.PaymentResult.Timestamp
		payTime = &t
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, rider_id, status, payment_method,
			payment_tx_id, payment_status, payment_time, payment_email,
			total_price, currency, is_paid, paid_at, is_delivered, delivered_at,
			street, city, state, zip_code, country,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22
		)`,
		string(o.ID),
		string(o.UserID),
		idPtr(o.RiderID),
		string(o.Status),
		o.PaymentMethod,
		txID, payStatus, payTime, payEmail,
		o.TotalPrice.Amount, o.TotalPrice.Currency,
		o.IsPaid, o.PaidAt, o.IsDelivered, o.DeliveredAt,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State,
		o.ShippingAddress.ZipCode, o.ShippingAddress.Country,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for i, item := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (
				order_id, position, product_id, name, color, size, unit_price, quantity, image
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			string(o.ID), i, string(item.ProductID), item.Name, item.Color, item.Size,
			item.UnitPrice.Amount, item.Quantity, item.Image,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const orderSelect = `
	SELECT o.id, o.user_id, u.name, u.email,
	       o.rider_id, r.name, r.email,
	       o.status, o.payment_method,
	       o.payment_tx_id, o.payment_status, o.payment_time, o.payment_email,
	       o.total_price, o.currency,
	       o.is_paid, o.paid_at, o.is_delivered, o.delivered_at,
	       o.street, o.city, o.state, o.zip_code, o.country,
	       o.created_at, o.updated_at
	FROM orders o
	JOIN accounts u ON u.id = o.user_id
	LEFT JOIN accounts r ON r.id = o.rider_id`

func (s *pgStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, string(id))
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *pgStore) UpdateStatus(ctx context.Context, o *Order) error {
	_, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $2,
		    is_paid = $3, paid_at = $4,
		    is_delivered = $5, delivered_at = $6,
		    rider_id = $7,
		    updated_at = NOW()
		WHERE id = $1`,
		string(o.ID),
		string(o.Status),
		o.IsPaid, o.PaidAt,
		o.IsDelivered, o.DeliveredAt,
		idPtr(o.RiderID),
	)
	return err
}

func (s *pgStore) ListAll(ctx context.Context) ([]Order, error) {
	return s.list(ctx, orderSelect+` ORDER BY o.created_at DESC`)
}

func (s *pgStore) ListByUser(ctx context.Context, userID types.ID) ([]Order, error) {
	return s.list(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, string(userID))
}

func (s *pgStore) ListByRider(ctx context.Context, riderID types.ID) ([]Order, error) {
	return s.list(ctx, orderSelect+` WHERE o.rider_id = $1 ORDER BY o.created_at DESC`, string(riderID))
}

func (s *pgStore) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *pgStore) loadItems(ctx context.Context, o *Order) error {
	rows, err := s.db.Query(ctx, `
		SELECT product_id, name, color, size, unit_price, quantity, image
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`, string(o.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item LineItem
		if err := rows.Scan(
			&item.ProductID, &item.Name, &item.Color, &item.Size,
			&item.UnitPrice.Amount, &item.Quantity, &item.Image,
		); err != nil {
			return err
		}
		item.UnitPrice.Currency = o.TotalPrice.Currency
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (s *pgStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO order_status_events (
			order_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.OrderID), string(e.FromStatus), string(e.ToStatus),
		e.ActorType, idPtr(e.ActorID), e.CreatedAt,
	)
	return err
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var riderID, riderName, riderEmail *string
	var txID, payStatus, payEmail *string
	var payTime *time.Time

	err := row.Scan(
		&o.ID, &o.UserID, &o.UserName, &o.UserEmail,
		&riderID, &riderName, &riderEmail,
		&o.Status, &o.PaymentMethod,
		&txID, &payStatus, &payTime, &payEmail,
		&o.TotalPrice.Amount, &o.TotalPrice.Currency,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt,
		&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.ZipCode, &o.ShippingAddress.Country,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if riderID != nil {
		id := types.ID(*riderID)
		o.RiderID = &id
		if riderName != nil {
			o.RiderName = *riderName
		}
		if riderEmail != nil {
			o.RiderEmail = *riderEmail
		}
	}
	if txID != nil || payStatus != nil {
		pr := PaymentResult{}
		if txID != nil {
			pr.TransactionID = *txID
		}
		if payStatus != nil {
			pr.Status = *payStatus
		}
		if payEmail != nil {
			pr.PayerEmail = *payEmail
		}
		if payTime != nil {
			pr.Timestamp = *payTime
		}
		o.PaymentResult = &pr
	}
	return &o, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
