package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"druginv/m/domain"
	"druginv/m/internal/dispense"
	"druginv/m/internal/ledger"
)

type saleRequest struct {
	DrugID      int64  `json:"drug_id"`
	BatchID     int64  `json:"batch_id"`
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name,omitempty"`
	Quantity    int64  `json:"quantity"`
	LocationID  int64  `json:"location_id"`
}

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.dispenser.Record(r.Context(), dispense.Request{
		DrugID:      req.DrugID,
		BatchID:     req.BatchID,
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Quantity:    req.Quantity,
		DispensedBy: userIDFromContext(r),
		LocationID:  req.LocationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, dispense.ErrInvalidInput), errors.Is(err, ledger.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrBatchNotFound):
			respondError(w, http.StatusNotFound, "batch not found")
		case errors.Is(err, dispense.ErrDrugNotFound):
			respondError(w, http.StatusNotFound, "drug not found")
		case errors.Is(err, dispense.ErrLocationNotFound):
			respondError(w, http.StatusNotFound, "location not found")
		case errors.Is(err, ledger.ErrInsufficientStock):
			respondError(w, http.StatusConflict, "not enough stock available")
		case errors.Is(err, ledger.ErrBatchUnavailable):
			respondError(w, http.StatusConflict, "batch is not available for dispensing")
		default:
			h.log.Error("record sale failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "unable to record sale")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"consumption_id": id, "status": "sale recorded"})
}

type saleHistoryRow struct {
	domain.ConsumptionRecord
	DrugName string `db:"drug_name" json:"drug_name"`
	BatchNo  string `db:"batch_no" json:"batch_no"`
}

func (h *Handler) salesHistory(w http.ResponseWriter, r *http.Request) {
	var rows []saleHistoryRow
	err := h.db.Select(&rows,
		`SELECT c.id, c.drug_id, c.drug_batch_id, c.patient_id, c.patient_name, c.reason,
		        c.quantity, c.dispensed_by, c.timestamp, c.location_id,
		        d.name AS drug_name, b.batch_no
		 FROM consumption c
		 JOIN drugs d ON c.drug_id = d.id
		 JOIN drug_batch b ON c.drug_batch_id = b.id
		 WHERE c.reason = $1
		 ORDER BY c.timestamp DESC
		 LIMIT 500`, domain.ReasonDispense)
	if err != nil {
		h.log.Error("sales history failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to fetch sales history")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) dailyDispense(w http.ResponseWriter, r *http.Request) {
	var units, count int64
	err := h.db.QueryRow(
		`SELECT COALESCE(SUM(quantity), 0), COUNT(*) FROM consumption
		 WHERE reason = $1 AND DATE(timestamp) = CURRENT_DATE`, domain.ReasonDispense).Scan(&units, &count)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch daily dispense summary")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"units_dispensed": units, "dispense_count": count})
}

func (h *Handler) monthlyDispense(w http.ResponseWriter, r *http.Request) {
	var units, count int64
	err := h.db.QueryRow(
		`SELECT COALESCE(SUM(quantity), 0), COUNT(*) FROM consumption
		 WHERE reason = $1 AND DATE(timestamp) >= date_trunc('month', CURRENT_DATE)`, domain.ReasonDispense).Scan(&units, &count)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch monthly dispense summary")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"units_dispensed": units, "dispense_count": count})
}
