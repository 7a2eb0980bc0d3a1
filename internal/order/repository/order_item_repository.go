package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

// InsertBatch writes all items of one order in a single statement, so either
// every snapshot lands or none does.
func (r *MySQLOrderItemRepository) InsertBatch(ctx context.Context, orderID string, items []domain.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("inserting order items: no items for order %s", orderID)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	placeholders := make([]string, len(items))
	args := make([]any, 0, len(items)*7)
	for i, item := range items {
		placeholders[i] = "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, orderID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity, item.VendorID, now)
	}

	query := `INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity, vendor_id, created_at) VALUES ` +
		strings.Join(placeholders, ", ")

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting order items: %w", err)
	}

	return nil
}

func (r *MySQLOrderItemRepository) ListByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_price, quantity, vendor_id, created_at
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity, &it.VendorID, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}

func (r *MySQLOrderItemRepository) CountByOrderID(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE order_id = ?`, orderID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting order items: %w", err)
	}
	return n, nil
}
