package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const orderColumns = `
	id, user_id, payment_status, payment_reference, payment_method,
	delivery_method, delivery_address, fulfillment_status,
	customer_email, customer_phone, promo_code, discount_amount,
	total_amount, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// PaymentPatch is the only mutation verification may apply to an order.
type PaymentPatch struct {
	Status    string
	Reference string
	UpdatedAt time.Time
}

type ListFilter struct {
	PaymentStatus string
	Limit         int
	Offset        int
}

type MySQLOrderRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db, now: time.Now}
}

// Insert stores a new pending order. The id is generated here when the caller
// leaves it empty.
func (r *MySQLOrderRepository) Insert(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	order.PaymentStatus = domain.PaymentStatusPending
	order.PaymentReference = nil
	if order.FulfillmentStatus == "" {
		order.FulfillmentStatus = domain.FulfillmentPending
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		order.ID, order.UserID, order.PaymentStatus, order.PaymentReference, order.PaymentMethod,
		order.DeliveryMethod, order.DeliveryAddress, order.FulfillmentStatus,
		order.CustomerEmail, order.CustomerPhone, order.PromoCode, order.DiscountAmount,
		order.TotalAmount, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	return &order, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

// UpdatePaymentStatus applies patch only while the order is still pending, or
// when it is already paid with the very same reference (an idempotent replay).
// scopeUserID restricts the update to orders owned by that user; guest orders
// never match a scoped update.
func (r *MySQLOrderRepository) UpdatePaymentStatus(ctx context.Context, id string, patch PaymentPatch, scopeUserID *string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = ?, payment_reference = ?, updated_at = ?
		WHERE id = ?
		  AND (payment_status = ? OR (payment_status = ? AND payment_reference = ?))
	`
	args := []any{
		patch.Status, patch.Reference, patch.UpdatedAt.UTC(),
		id,
		domain.PaymentStatusPending, patch.Status, patch.Reference,
	}
	if scopeUserID != nil {
		query += ` AND user_id = ?`
		args = append(args, *scopeUserID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating order payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		if scopeUserID != nil && !order.OwnedBy(*scopeUserID) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
		}
		if order.PaymentStatus == patch.Status && order.PaymentReference != nil && *order.PaymentReference == patch.Reference {
			return order, nil
		}
		return nil, errors.NewConflictError(fmt.Sprintf("order %s is already %s", id, order.PaymentStatus))
	}

	return order, nil
}

func (r *MySQLOrderRepository) UpdateFulfillmentStatus(ctx context.Context, id string, from string, to string) error {
	query := `
		UPDATE orders SET fulfillment_status = ?, updated_at = ?
		WHERE id = ? AND fulfillment_status = ?
	`

	result, err := r.db.ExecContext(ctx, query, to, r.now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("updating order fulfillment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("order %s fulfillment status changed concurrently", id))
	}

	return nil
}

func (r *MySQLOrderRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`

	return r.queryOrders(ctx, query, userID, limit)
}

func (r *MySQLOrderRepository) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var (
		where []string
		args  []any
	)
	if f.PaymentStatus != "" {
		where = append(where, "payment_status = ?")
		args = append(args, f.PaymentStatus)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	return r.queryOrders(ctx, query, args...)
}

// ListOrphaned returns pending orders created before cutoff that have no
// items, the trace left by a checkout whose item insert failed.
func (r *MySQLOrderRepository) ListOrphaned(ctx context.Context, cutoff time.Time) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.payment_status = ?
		  AND o.created_at < ?
		  AND NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id)
		ORDER BY o.created_at ASC`

	return r.queryOrders(ctx, query, domain.PaymentStatusPending, cutoff.UTC())
}

// ExpireStalePending moves immediate-settlement orders that stayed pending
// past cutoff to failed. Deferred-settlement orders are left alone, as are
// orders that reached the gateway; those go through ExpireAttempt.
func (r *MySQLOrderRepository) ExpireStalePending(ctx context.Context, tx *sql.Tx, cutoff time.Time) (int64, error) {
	query := `
		UPDATE orders SET payment_status = ?, updated_at = ?
		WHERE payment_status = ?
		  AND payment_method IN (?, ?)
		  AND created_at < ?
		  AND last_attempt_reference IS NULL
	`

	result, err := tx.ExecContext(ctx, query,
		domain.PaymentStatusFailed, r.now().UTC(),
		domain.PaymentStatusPending,
		domain.PaymentMethodCard, domain.PaymentMethodMobileMoney,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("expiring stale pending orders: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *MySQLOrderRepository) DeleteOrphaned(ctx context.Context, tx *sql.Tx, cutoff time.Time) (int64, error) {
	query := `
		DELETE o FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.id IS NULL
		  AND o.payment_status <> ?
		  AND o.created_at < ?
	`

	result, err := tx.ExecContext(ctx, query, domain.PaymentStatusPaid, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting orphaned orders: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *MySQLOrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o         domain.Order
		userID    sql.NullString
		reference sql.NullString
		address   sql.NullString
		promo     sql.NullString
	)

	err := row.Scan(
		&o.ID, &userID, &o.PaymentStatus, &reference, &o.PaymentMethod,
		&o.DeliveryMethod, &address, &o.FulfillmentStatus,
		&o.CustomerEmail, &o.CustomerPhone, &promo, &o.DiscountAmount,
		&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.UserID = nullableString(userID)
	o.PaymentReference = nullableString(reference)
	o.DeliveryAddress = nullableString(address)
	o.PromoCode = nullableString(promo)

	return &o, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// RecordAttempt stores the reference handed to the gateway for a pending
// order. The sweeper checks it with the gateway before failing the order.
func (r *MySQLOrderRepository) RecordAttempt(ctx context.Context, orderID string, reference string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET last_attempt_reference = ?, updated_at = ? WHERE id = ? AND payment_status = ?`,
		reference, r.now().UTC(), orderID, domain.PaymentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("recording payment attempt: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return errors.NewConflictError(fmt.Sprintf("order %s is no longer pending", orderID))
	}
	return nil
}

// ListStaleAttempts returns pending online orders older than cutoff that
// reached the gateway and still hold items.
func (r *MySQLOrderRepository) ListStaleAttempts(ctx context.Context, cutoff time.Time) ([]domain.PaymentAttempt, error) {
	query := `
		SELECT o.id, o.last_attempt_reference, o.total_amount
		FROM orders o
		WHERE o.payment_status = ?
		  AND o.payment_method IN (?, ?)
		  AND o.created_at < ?
		  AND o.last_attempt_reference IS NOT NULL
		  AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id)
		ORDER BY o.created_at
	`

	rows, err := r.db.QueryContext(ctx, query,
		domain.PaymentStatusPending,
		domain.PaymentMethodCard, domain.PaymentMethodMobileMoney,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying stale payment attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.PaymentAttempt
	for rows.Next() {
		var a domain.PaymentAttempt
		if err := rows.Scan(&a.OrderID, &a.Reference, &a.TotalAmount); err != nil {
			return nil, fmt.Errorf("scanning payment attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment attempt rows: %w", err)
	}
	return attempts, nil
}

// ExpireAttempt fails one pending order, provided no newer attempt replaced
// reference in the meantime.
func (r *MySQLOrderRepository) ExpireAttempt(ctx context.Context, tx *sql.Tx, orderID string, reference string) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET payment_status = ?, updated_at = ?
		WHERE id = ? AND payment_status = ? AND last_attempt_reference = ?`,
		domain.PaymentStatusFailed, r.now().UTC(), orderID, domain.PaymentStatusPending, reference,
	)
	if err != nil {
		return false, fmt.Errorf("expiring payment attempt: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return n == 1, nil
}
