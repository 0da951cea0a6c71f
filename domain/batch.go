package domain

import "time"

// BatchAvailable marks a batch as eligible for dispensing. Batches in any
// other status are excluded from stock views and cannot be decremented.
const BatchAvailable = "available"

type DrugBatch struct {
	ID              int64      `db:"id" json:"id"`
	DrugID          int64      `db:"drug_id" json:"drug_id"`
	BatchNo         string     `db:"batch_no" json:"batch_no"`
	Quantity        int64      `db:"quantity" json:"quantity"`
	ManufactureDate *time.Time `db:"manufacture_date" json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	UnitCost        float64    `db:"unit_cost" json:"unit_cost"`
	LocationID      *int64     `db:"location_id" json:"location_id,omitempty"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       string     `db:"created_at" json:"created_at"`
	UpdatedAt       string     `db:"updated_at" json:"updated_at"`
}
