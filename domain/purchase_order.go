package domain

import "time"

type PurchaseOrder struct {
	ID                   int64      `db:"id" json:"id"`
	PONumber             string     `db:"po_number" json:"po_number"`
	CreatedBy            int64      `db:"created_by" json:"created_by"`
	VendorID             *int64     `db:"vendor_id" json:"vendor_id,omitempty"`
	LocationID           *int64     `db:"location_id" json:"location_id,omitempty"`
	Status               string     `db:"status" json:"status"`
	TotalAmount          float64    `db:"total_amount" json:"total_amount"`
	ExpectedDeliveryDate *time.Time `db:"expected_delivery_date" json:"expected_delivery_date,omitempty"`
	CreatedAt            string     `db:"created_at" json:"created_at"`
}
