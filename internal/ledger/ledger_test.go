package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A pool of one keeps every connection on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := []string{
		`CREATE TABLE drugs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			generic_name TEXT,
			code TEXT UNIQUE,
			unit TEXT NOT NULL,
			reorder_level INTEGER NOT NULL DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE locations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			address TEXT,
			contact TEXT
		);`,
		`CREATE TABLE drug_batch (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			drug_id INTEGER NOT NULL,
			batch_no TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			manufacture_date TEXT,
			expiry_date TEXT,
			unit_cost REAL NOT NULL DEFAULT 0,
			location_id INTEGER,
			status TEXT NOT NULL DEFAULT 'available',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	if _, err := db.Exec(`INSERT INTO drugs (name, unit) VALUES ('Paracetamol', 'tablet')`); err != nil {
		t.Fatalf("seed drug: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO locations (name, type) VALUES ('Main Store', 'store')`); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	return db
}

func newBatch(t *testing.T, s *Store, qty int64) int64 {
	t.Helper()
	id, err := s.Receive(context.Background(), Receipt{DrugID: 1, BatchNo: "B-001", Quantity: qty})
	if err != nil {
		t.Fatalf("receive batch: %v", err)
	}
	return id
}

func quantityOf(t *testing.T, db *sqlx.DB, batchID int64) int64 {
	t.Helper()
	var qty int64
	if err := db.Get(&qty, `SELECT quantity FROM drug_batch WHERE id = $1`, batchID); err != nil {
		t.Fatalf("load quantity: %v", err)
	}
	return qty
}

func TestReceiveAndAvailable(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	id := newBatch(t, s, 10)
	got, err := s.Available(context.Background(), id)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if got != 10 {
		t.Fatalf("available = %d, want 10", got)
	}

	if _, err := s.Available(context.Background(), 9999); !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("available(missing) = %v, want ErrBatchNotFound", err)
	}
	if _, err := s.Receive(context.Background(), Receipt{DrugID: 1, BatchNo: "B-002", Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("receive(0) = %v, want ErrInvalidQuantity", err)
	}
}

func TestDecrement(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	id := newBatch(t, s, 10)

	if err := s.Decrement(context.Background(), db, id, 4); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if got := quantityOf(t, db, id); got != 6 {
		t.Fatalf("quantity = %d, want 6", got)
	}

	// Draining to exactly zero is allowed.
	if err := s.Decrement(context.Background(), db, id, 6); err != nil {
		t.Fatalf("decrement to zero: %v", err)
	}
	if got := quantityOf(t, db, id); got != 0 {
		t.Fatalf("quantity = %d, want 0", got)
	}
}

func TestDecrementInsufficient(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	id := newBatch(t, s, 3)

	err := s.Decrement(context.Background(), db, id, 4)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("decrement = %v, want ErrInsufficientStock", err)
	}
	if got := quantityOf(t, db, id); got != 3 {
		t.Fatalf("quantity changed to %d after failed decrement", got)
	}
}

func TestDecrementMissingBatch(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	if err := s.Decrement(context.Background(), db, 9999, 1); !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("decrement(missing) = %v, want ErrBatchNotFound", err)
	}
}

func TestDecrementUnavailableBatch(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	id := newBatch(t, s, 10)

	if _, err := db.Exec(`UPDATE drug_batch SET status = 'quarantined' WHERE id = $1`, id); err != nil {
		t.Fatalf("quarantine batch: %v", err)
	}
	if err := s.Decrement(context.Background(), db, id, 1); !errors.Is(err, ErrBatchUnavailable) {
		t.Fatalf("decrement(quarantined) = %v, want ErrBatchUnavailable", err)
	}
	if got := quantityOf(t, db, id); got != 10 {
		t.Fatalf("quantity changed to %d for quarantined batch", got)
	}
}

func TestDecrementInvalidQuantity(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	id := newBatch(t, s, 10)

	for _, amount := range []int64{0, -5} {
		if err := s.Decrement(context.Background(), db, id, amount); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("decrement(%d) = %v, want ErrInvalidQuantity", amount, err)
		}
	}
}

func TestIncrement(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	id := newBatch(t, s, 2)

	if err := s.Increment(context.Background(), db, id, 8); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if got := quantityOf(t, db, id); got != 10 {
		t.Fatalf("quantity = %d, want 10", got)
	}

	if err := s.Increment(context.Background(), db, 9999, 1); !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("increment(missing) = %v, want ErrBatchNotFound", err)
	}
	if err := s.Increment(context.Background(), db, id, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("increment(0) = %v, want ErrInvalidQuantity", err)
	}
}

// Quantity-on-hand never drops below zero, whatever sequence of adjustments
// is attempted.
func TestQuantityNeverNegative(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	id := newBatch(t, s, 5)

	ops := []struct {
		decrement bool
		amount    int64
	}{
		{true, 3}, {true, 3}, {false, 2}, {true, 4}, {true, 1}, {true, 1}, {false, 10}, {true, 7}, {true, 4},
	}
	for i, op := range ops {
		var err error
		if op.decrement {
			err = s.Decrement(context.Background(), db, id, op.amount)
		} else {
			err = s.Increment(context.Background(), db, id, op.amount)
		}
		if err != nil && !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("op %d: unexpected error %v", i, err)
		}
		if got := quantityOf(t, db, id); got < 0 {
			t.Fatalf("op %d: quantity went negative (%d)", i, got)
		}
	}
	if got := quantityOf(t, db, id); got != 3 {
		t.Fatalf("final quantity = %d, want 3", got)
	}
}
