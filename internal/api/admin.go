package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"druginv/m/domain"
)

// Role handlers

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	var roles []domain.Role
	if err := h.db.Select(&roles, `SELECT id, name FROM roles ORDER BY id`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list roles")
		return
	}
	respondJSON(w, http.StatusOK, roles)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO roles (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "role already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create role")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Role{ID: id, Name: name})
}

// User handlers

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "admin") {
		return
	}
	var users []domain.User
	err := h.db.Select(&users,
		`SELECT id, username, email, full_name, role_id, organization_id, created_at, last_login FROM users ORDER BY id`)
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Vendor handlers

type vendorRequest struct {
	Name          string  `json:"name"`
	ContactPerson string  `json:"contact_person,omitempty"`
	ContactEmail  string  `json:"contact_email,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	var vendors []domain.Vendor
	err := h.db.Select(&vendors,
		`SELECT id, name, contact_person, contact_email, rating, created_at FROM vendors ORDER BY name`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list vendors")
		return
	}
	respondJSON(w, http.StatusOK, vendors)
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	var req vendorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO vendors (name, contact_person, contact_email, rating) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Name, nullIfEmpty(req.ContactPerson), nullIfEmpty(req.ContactEmail), req.Rating).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create vendor")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

// Location handlers

type locationRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	Contact string `json:"contact,omitempty"`
}

func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	var locations []domain.Location
	if err := h.db.Select(&locations, `SELECT id, name, type, address, contact FROM locations ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list locations")
		return
	}
	respondJSON(w, http.StatusOK, locations)
}

func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Type == "" {
		respondError(w, http.StatusBadRequest, "name and type are required")
		return
	}
	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO locations (name, type, address, contact) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.Name, req.Type, nullIfEmpty(req.Address), nullIfEmpty(req.Contact)).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create location")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

// Purchase order handlers

type purchaseOrderRequest struct {
	PONumber             string  `json:"po_number"`
	VendorID             *int64  `json:"vendor_id,omitempty"`
	LocationID           *int64  `json:"location_id,omitempty"`
	Status               string  `json:"status,omitempty"`
	TotalAmount          float64 `json:"total_amount,omitempty"`
	ExpectedDeliveryDate string  `json:"expected_delivery_date,omitempty"`
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	var orders []domain.PurchaseOrder
	err := h.db.Select(&orders,
		`SELECT id, po_number, created_by, vendor_id, location_id, status, total_amount, expected_delivery_date, created_at
		 FROM purchase_orders ORDER BY created_at DESC`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list purchase orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req purchaseOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PONumber) == "" {
		respondError(w, http.StatusBadRequest, "po_number is required")
		return
	}
	if req.ExpectedDeliveryDate != "" {
		if _, err := time.Parse("2006-01-02", req.ExpectedDeliveryDate); err != nil {
			respondError(w, http.StatusBadRequest, "expected_delivery_date must be in YYYY-MM-DD format")
			return
		}
	}
	status := req.Status
	if status == "" {
		status = "CREATED"
	}
	createdBy := userIDFromContext(r)
	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO purchase_orders (po_number, created_by, vendor_id, location_id, status, total_amount, expected_delivery_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		req.PONumber, createdBy, req.VendorID, req.LocationID, status, req.TotalAmount,
		nullIfEmpty(req.ExpectedDeliveryDate)).Scan(&id)
	if err != nil {
		h.log.Error("create purchase order failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to create purchase order")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "po_number": req.PONumber, "status": status})
}
