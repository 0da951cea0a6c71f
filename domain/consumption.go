package domain

// ReasonDispense is the consumption reason recorded for point-of-sale
// dispensing. Other reasons (wastage, transfer) share the same table.
const ReasonDispense = "dispense"

// ConsumptionRecord is an immutable audit row: one stock-reducing event
// against one batch. Rows are only ever inserted.
type ConsumptionRecord struct {
	ID          int64  `db:"id" json:"id"`
	DrugID      int64  `db:"drug_id" json:"drug_id"`
	DrugBatchID int64  `db:"drug_batch_id" json:"drug_batch_id"`
	PatientID   string `db:"patient_id" json:"patient_id"`
	PatientName string `db:"patient_name" json:"patient_name"`
	Reason      string `db:"reason" json:"reason"`
	Quantity    int64  `db:"quantity" json:"quantity"`
	DispensedBy int64  `db:"dispensed_by" json:"dispensed_by"`
	Timestamp   string `db:"timestamp" json:"timestamp"`
	LocationID  int64  `db:"location_id" json:"location_id"`
}
