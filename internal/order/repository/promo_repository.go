package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type MySQLPromoRepository struct {
	db *sql.DB
}

func NewMySQLPromoRepository(db *sql.DB) *MySQLPromoRepository {
	return &MySQLPromoRepository{db: db}
}

// FindActive looks a code up case-insensitively; codes are stored upper-case.
func (r *MySQLPromoRepository) FindActive(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `
		SELECT code, discount_percentage, active
		FROM promo_codes
		WHERE code = ? AND active = 1
	`

	var p domain.PromoCode
	err := r.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&p.Code, &p.DiscountPercentage, &p.Active,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("promo code %s not found", code))
	}
	if err != nil {
		return nil, fmt.Errorf("querying promo code: %w", err)
	}

	return &p, nil
}

type MySQLRoleRepository struct {
	db *sql.DB
}

func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

func (r *MySQLRoleRepository) HasRole(ctx context.Context, userID string, role string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ?`, userID, role,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying user role: %w", err)
	}
	return n > 0, nil
}
