package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"druginv/m/domain"
)

type drugRequest struct {
	Name         string `json:"name"`
	GenericName  string `json:"generic_name,omitempty"`
	Code         string `json:"code,omitempty"`
	Unit         string `json:"unit"`
	ReorderLevel int64  `json:"reorder_level,omitempty"`
}

func (h *Handler) listDrugs(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var drugs []domain.Drug
	var err error
	if query == "" {
		err = h.db.Select(&drugs,
			`SELECT id, name, generic_name, code, unit, reorder_level, created_at FROM drugs ORDER BY name LIMIT 100`)
	} else {
		like := "%" + strings.ToLower(query) + "%"
		err = h.db.Select(&drugs,
			`SELECT id, name, generic_name, code, unit, reorder_level, created_at FROM drugs
			 WHERE LOWER(name) LIKE $1 OR LOWER(COALESCE(generic_name, '')) LIKE $1
			 ORDER BY name LIMIT 100`, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list drugs")
		return
	}
	respondJSON(w, http.StatusOK, drugs)
}

func (h *Handler) createDrug(w http.ResponseWriter, r *http.Request) {
	var req drugRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Unit == "" {
		respondError(w, http.StatusBadRequest, "name and unit are required")
		return
	}
	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO drugs (name, generic_name, code, unit, reorder_level) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.Name, nullIfEmpty(req.GenericName), nullIfEmpty(req.Code), req.Unit, req.ReorderLevel).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "drug code already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create drug")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

// listDrugBatches feeds the dispensing form: batches of one drug that still
// hold stock, soonest expiry first.
func (h *Handler) listDrugBatches(w http.ResponseWriter, r *http.Request) {
	drugID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid drug id")
		return
	}
	var batches []domain.DrugBatch
	err = h.db.Select(&batches,
		`SELECT id, drug_id, batch_no, quantity, manufacture_date, expiry_date,
		        unit_cost, location_id, status, created_at, updated_at
		 FROM drug_batch
		 WHERE drug_id = $1 AND quantity > 0 AND status = $2
		 ORDER BY expiry_date NULLS LAST, id`, drugID, domain.BatchAvailable)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list batches")
		return
	}
	respondJSON(w, http.StatusOK, batches)
}
