// Package ledger owns the authoritative quantity-on-hand per drug batch.
// Quantity is mutated only through Receive, Increment and Decrement, and
// never goes negative: decrements are applied as a single conditional
// update so that concurrent dispense attempts against the same batch have
// at-most-one-winner semantics without explicit row locking.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"druginv/m/domain"
)

var (
	// ErrBatchNotFound reports a batch id with no backing row.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrInsufficientStock reports a decrement larger than quantity-on-hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrBatchUnavailable reports a batch whose status blocks dispensing.
	ErrBatchUnavailable = errors.New("batch not available")
	// ErrInvalidQuantity reports a non-positive adjustment amount.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Store reads and adjusts batch quantities. Mutations take a sqlx.ExtContext
// so they can join the caller's transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Receipt describes a goods-receipt line creating a new batch.
type Receipt struct {
	DrugID          int64
	BatchNo         string
	Quantity        int64
	ManufactureDate *string
	ExpiryDate      *string
	UnitCost        float64
	LocationID      *int64
}

// Available returns the current quantity-on-hand for a batch.
func (s *Store) Available(ctx context.Context, batchID int64) (int64, error) {
	var qty int64
	err := s.db.GetContext(ctx, &qty, `SELECT quantity FROM drug_batch WHERE id = $1`, batchID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBatchNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load batch %d: %w", batchID, err)
	}
	return qty, nil
}

// Receive inserts a new batch with the given opening quantity and returns
// its id. New batches start in the available status.
func (s *Store) Receive(ctx context.Context, r Receipt) (int64, error) {
	if r.Quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO drug_batch (drug_id, batch_no, quantity, manufacture_date, expiry_date, unit_cost, location_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		r.DrugID, r.BatchNo, r.Quantity, r.ManufactureDate, r.ExpiryDate, r.UnitCost, r.LocationID, domain.BatchAvailable).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("receive batch: %w", err)
	}
	return id, nil
}

// Decrement removes amount units from a batch. The update only matches when
// the batch is available and holds at least amount units, so the quantity
// invariant survives concurrent callers; a miss is resolved into the
// specific failure afterwards.
func (s *Store) Decrement(ctx context.Context, ext sqlx.ExtContext, batchID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}
	res, err := ext.ExecContext(ctx,
		`UPDATE drug_batch SET quantity = quantity - $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND status = $3 AND quantity >= $1`,
		amount, batchID, domain.BatchAvailable)
	if err != nil {
		return fmt.Errorf("decrement batch %d: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement batch %d: %w", batchID, err)
	}
	if n == 1 {
		return nil
	}

	var row struct {
		Quantity int64  `db:"quantity"`
		Status   string `db:"status"`
	}
	err = sqlx.GetContext(ctx, ext, &row, `SELECT quantity, status FROM drug_batch WHERE id = $1`, batchID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBatchNotFound
	}
	if err != nil {
		return fmt.Errorf("load batch %d: %w", batchID, err)
	}
	if row.Status != domain.BatchAvailable {
		return ErrBatchUnavailable
	}
	return ErrInsufficientStock
}

// Increment adds amount units back to a batch (goods receipt against an
// existing batch, or a reversal).
func (s *Store) Increment(ctx context.Context, ext sqlx.ExtContext, batchID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}
	res, err := ext.ExecContext(ctx,
		`UPDATE drug_batch SET quantity = quantity + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		amount, batchID)
	if err != nil {
		return fmt.Errorf("increment batch %d: %w", batchID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment batch %d: %w", batchID, err)
	}
	if n == 0 {
		return ErrBatchNotFound
	}
	return nil
}
