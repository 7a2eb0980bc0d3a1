package review

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const mysqlDuplicateEntry = 1062

type MySQLRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db, now: time.Now}
}

// Insert stores a review. One review per user and product.
func (r *MySQLRepository) Insert(ctx context.Context, rv domain.Review) (*domain.Review, error) {
	rv.ID = uuid.NewString()
	rv.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, product_id, order_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rv.ID, rv.UserID, rv.ProductID, rv.OrderID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if stderrors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, errors.NewConflictError("you have already reviewed this product")
		}
		return nil, fmt.Errorf("inserting review: %w", err)
	}

	return &rv, nil
}

// ListByProduct returns a product's reviews newest first.
func (r *MySQLRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, order_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = ?
		ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var orderID sql.NullString
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &orderID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		if orderID.Valid {
			rv.OrderID = &orderID.String
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review rows: %w", err)
	}
	return reviews, nil
}
