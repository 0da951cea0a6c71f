package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"druginv/m/domain"
	"druginv/m/internal/ledger"
)

type stockRow struct {
	ID              int64      `db:"id" json:"id"`
	DrugName        string     `db:"drug_name" json:"drug_name"`
	BatchNo         string     `db:"batch_no" json:"batch_no"`
	Quantity        int64      `db:"quantity" json:"quantity"`
	ManufactureDate *time.Time `db:"manufacture_date" json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	UnitCost        float64    `db:"unit_cost" json:"unit_cost"`
	LocationName    *string    `db:"location_name" json:"location_name,omitempty"`
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	var rows []stockRow
	err := h.db.Select(&rows,
		`SELECT b.id, d.name AS drug_name, b.batch_no, b.quantity, b.manufacture_date,
		        b.expiry_date, b.unit_cost, l.name AS location_name
		 FROM drug_batch b
		 JOIN drugs d ON b.drug_id = d.id
		 LEFT JOIN locations l ON b.location_id = l.id
		 WHERE b.status = $1
		 ORDER BY d.name`, domain.BatchAvailable)
	if err != nil {
		h.log.Error("list stock failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to list stock")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

type receiptRequest struct {
	DrugID          int64   `json:"drug_id"`
	BatchNo         string  `json:"batch_no"`
	Quantity        int64   `json:"quantity"`
	ManufactureDate string  `json:"manufacture_date,omitempty"`
	ExpiryDate      string  `json:"expiry_date,omitempty"`
	UnitCost        float64 `json:"unit_cost,omitempty"`
	LocationID      *int64  `json:"location_id,omitempty"`
}

func (h *Handler) receiveStock(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DrugID <= 0 || strings.TrimSpace(req.BatchNo) == "" {
		respondError(w, http.StatusBadRequest, "drug_id and batch_no are required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}
	for _, date := range []string{req.ManufactureDate, req.ExpiryDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			respondError(w, http.StatusBadRequest, "dates must be in YYYY-MM-DD format")
			return
		}
	}

	var exists bool
	if err := h.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM drugs WHERE id = $1)`, req.DrugID); err != nil || !exists {
		respondError(w, http.StatusNotFound, "drug not found")
		return
	}

	id, err := h.ledger.Receive(r.Context(), ledger.Receipt{
		DrugID:          req.DrugID,
		BatchNo:         strings.TrimSpace(req.BatchNo),
		Quantity:        req.Quantity,
		ManufactureDate: nullIfEmpty(req.ManufactureDate),
		ExpiryDate:      nullIfEmpty(req.ExpiryDate),
		UnitCost:        req.UnitCost,
		LocationID:      req.LocationID,
	})
	if err != nil {
		h.log.Error("receive stock failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to receive stock")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "status": "stock received"})
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	var payload struct {
		Quantity int64 `json:"quantity"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.Increment(r.Context(), h.db, id, payload.Quantity); err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, "quantity must be a positive integer")
		case errors.Is(err, ledger.ErrBatchNotFound):
			respondError(w, http.StatusNotFound, "batch not found")
		default:
			h.log.Error("adjust stock failed", zap.Int64("batch_id", id), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "unable to adjust stock")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "stock adjusted"})
}
