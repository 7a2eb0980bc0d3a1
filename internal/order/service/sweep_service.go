package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payment/paystack"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type SweepRepository interface {
	ExpireStalePending(ctx context.Context, tx *sql.Tx, cutoff time.Time) (int64, error)
	DeleteOrphaned(ctx context.Context, tx *sql.Tx, cutoff time.Time) (int64, error)
	ListOrphaned(ctx context.Context, cutoff time.Time) ([]domain.Order, error)
	ListStaleAttempts(ctx context.Context, cutoff time.Time) ([]domain.PaymentAttempt, error)
	ExpireAttempt(ctx context.Context, tx *sql.Tx, orderID string, reference string) (bool, error)
}

type PaymentGateway interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error)
}

// SweepResult counts what one sweep did. Held orders reached the gateway and
// either paid there or could not be checked; they stay pending.
type SweepResult struct {
	Cutoff  time.Time
	Expired int64
	Deleted int64
	Held    int64
}

// SweepService closes out orders abandoned mid-checkout: card and mobile-money
// orders still pending after the TTL become failed, and orders left without
// items are removed. Paid orders are never touched. An order that reached the
// gateway is failed only once the gateway confirms it was not paid.
type SweepService struct {
	db         TransactionManager
	orderRepo  SweepRepository
	gateway    PaymentGateway
	logger     *zap.Logger
	pendingTTL time.Duration
	txTimeout  time.Duration
	now        func() time.Time
}

func NewSweepService(
	db TransactionManager,
	orderRepo SweepRepository,
	gateway PaymentGateway,
	logger *zap.Logger,
	pendingTTL time.Duration,
	txTimeout time.Duration,
) *SweepService {
	return &SweepService{
		db:         db,
		orderRepo:  orderRepo,
		gateway:    gateway,
		logger:     logger,
		pendingTTL: pendingTTL,
		txTimeout:  txTimeout,
		now:        time.Now,
	}
}

func (s *SweepService) cutoff() time.Time {
	return s.now().UTC().Add(-s.pendingTTL)
}

func (s *SweepService) Sweep(ctx context.Context) (*SweepResult, error) {
	if s.pendingTTL <= 0 {
		return nil, fmt.Errorf("sweep: pending TTL must be positive, got %s", s.pendingTTL)
	}
	cutoff := s.cutoff()

	attempts, err := s.orderRepo.ListStaleAttempts(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to list stale payment attempts", zap.Error(err))
		return nil, err
	}
	unpaid, held := s.checkAttempts(ctx, attempts)

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// MySQL ignores rollback if already committed.
	defer tx.Rollback()

	deleted, err := s.orderRepo.DeleteOrphaned(txCtx, tx, cutoff)
	if err != nil {
		s.logger.Error("failed to delete orphaned orders", zap.Error(err))
		return nil, err
	}

	expired, err := s.orderRepo.ExpireStalePending(txCtx, tx, cutoff)
	if err != nil {
		s.logger.Error("failed to expire stale orders", zap.Error(err))
		return nil, err
	}

	for _, a := range unpaid {
		ok, err := s.orderRepo.ExpireAttempt(txCtx, tx, a.OrderID, a.Reference)
		if err != nil {
			s.logger.Error("failed to expire payment attempt", zap.String("orderId", a.OrderID), zap.Error(err))
			return nil, err
		}
		if ok {
			expired++
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Error(err))
		return nil, err
	}

	s.logger.Info("sweep committed",
		zap.Time("cutoff", cutoff),
		zap.Int64("expired", expired),
		zap.Int64("deleted", deleted),
		zap.Int64("held", held),
	)

	return &SweepResult{Cutoff: cutoff, Expired: expired, Deleted: deleted, Held: held}, nil
}

// checkAttempts asks the gateway about each stale attempt and returns the
// ones it reports unpaid. Paid or unreachable ones are held for the next run.
func (s *SweepService) checkAttempts(ctx context.Context, attempts []domain.PaymentAttempt) ([]domain.PaymentAttempt, int64) {
	var unpaid []domain.PaymentAttempt
	var held int64
	for _, a := range attempts {
		logger := s.logger.With(zap.String("orderId", a.OrderID), zap.String("reference", a.Reference))

		v, err := s.gateway.VerifyTransaction(ctx, a.Reference)
		if err != nil {
			logger.Warn("gateway check failed, order kept pending", zap.Error(err))
			held++
			continue
		}
		if v.Succeeded {
			logger.Error("stale order was paid at the gateway, left pending for verification",
				zap.Bool("reconciliation_gap", true),
				zap.Int64("gatewayAmount", v.Transaction.Amount),
			)
			held++
			continue
		}
		unpaid = append(unpaid, a)
	}
	return unpaid, held
}

// Orphans lists pending orders older than the TTL that have no items.
func (s *SweepService) Orphans(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.ListOrphaned(ctx, s.cutoff())
}
