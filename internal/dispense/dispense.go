// Package dispense records point-of-sale dispensing events. A dispense is
// one consumption row plus one batch decrement, applied in a single
// transaction: either both land or neither does.
package dispense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"druginv/m/domain"
	"druginv/m/internal/ledger"
)

var (
	// ErrInvalidInput reports a request that failed validation. The wrapped
	// message carries the offending field.
	ErrInvalidInput = errors.New("invalid dispense input")
	// ErrDrugNotFound reports an unknown drug id.
	ErrDrugNotFound = errors.New("drug not found")
	// ErrLocationNotFound reports an unknown location id.
	ErrLocationNotFound = errors.New("location not found")
)

// Request carries one dispense attempt. LocationID is a required, explicit
// input: dispensing against "whichever location happens to exist" is not
// supported.
type Request struct {
	DrugID      int64
	BatchID     int64
	PatientID   string
	PatientName string
	Quantity    int64
	DispensedBy int64
	LocationID  int64
	Timestamp   time.Time
}

// Validate checks the request without touching storage.
func (r Request) Validate() error {
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrInvalidInput)
	}
	if r.DrugID <= 0 {
		return fmt.Errorf("%w: drug_id is required", ErrInvalidInput)
	}
	if r.BatchID <= 0 {
		return fmt.Errorf("%w: batch_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.PatientID) == "" {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	if r.DispensedBy <= 0 {
		return fmt.Errorf("%w: dispensed_by is required", ErrInvalidInput)
	}
	if r.LocationID <= 0 {
		return fmt.Errorf("%w: location_id is required", ErrInvalidInput)
	}
	return nil
}

// Recorder applies dispense requests against the batch ledger.
type Recorder struct {
	db     *sqlx.DB
	ledger *ledger.Store
	log    *zap.Logger
}

func NewRecorder(db *sqlx.DB, lg *ledger.Store, log *zap.Logger) *Recorder {
	return &Recorder{db: db, ledger: lg, log: log}
}

// Record validates and applies a dispense, returning the consumption row id.
// Failures surface as ErrInvalidInput, ErrDrugNotFound, ErrLocationNotFound,
// ledger.ErrBatchNotFound, ledger.ErrBatchUnavailable or
// ledger.ErrInsufficientStock; anything else is a storage failure. No
// partial state survives a failure.
func (rec *Recorder) Record(ctx context.Context, req Request) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	tx, err := rec.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin dispense: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM drugs WHERE id = $1)`, req.DrugID); err != nil {
		return 0, fmt.Errorf("check drug %d: %w", req.DrugID, err)
	}
	if !exists {
		return 0, ErrDrugNotFound
	}
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)`, req.LocationID); err != nil {
		return 0, fmt.Errorf("check location %d: %w", req.LocationID, err)
	}
	if !exists {
		return 0, ErrLocationNotFound
	}

	// The decrement carries the no-oversell invariant; run it before the
	// audit insert so its typed failures short-circuit the attempt.
	if err := rec.ledger.Decrement(ctx, tx, req.BatchID, req.Quantity); err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO consumption (drug_id, drug_batch_id, patient_id, patient_name, reason, quantity, dispensed_by, timestamp, location_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		req.DrugID, req.BatchID, strings.TrimSpace(req.PatientID), strings.TrimSpace(req.PatientName),
		domain.ReasonDispense, req.Quantity, req.DispensedBy, ts, req.LocationID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("record consumption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit dispense: %w", err)
	}

	rec.log.Info("dispense recorded",
		zap.Int64("consumption_id", id),
		zap.Int64("batch_id", req.BatchID),
		zap.Int64("quantity", req.Quantity))
	return id, nil
}
