package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func testHandler(t *testing.T) (*Handler, http.Handler, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
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
		`CREATE TABLE consumption (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			drug_id INTEGER NOT NULL,
			drug_batch_id INTEGER NOT NULL,
			patient_id TEXT NOT NULL,
			patient_name TEXT,
			reason TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			dispensed_by INTEGER NOT NULL,
			timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			location_id INTEGER NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	if _, err := db.Exec(`INSERT INTO drugs (name, unit) VALUES ('Ibuprofen', 'tablet')`); err != nil {
		t.Fatalf("seed drug: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO locations (name, type) VALUES ('Front Counter', 'pharmacy')`); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO drug_batch (drug_id, batch_no, quantity, status) VALUES (1, 'IBU-3', 10, 'available')`); err != nil {
		t.Fatalf("seed batch: %v", err)
	}

	h := New(db, "test_secret", zap.NewNop())
	return h, h.Router(), db
}

func postSale(t *testing.T, router http.Handler, token string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func saleBody(batchID, quantity int64) map[string]any {
	return map[string]any{
		"drug_id":      1,
		"batch_id":     batchID,
		"patient_id":   "P20250101080000",
		"patient_name": "Ravi Kumar",
		"quantity":     quantity,
		"location_id":  1,
	}
}

func TestRecordSaleEndpoint(t *testing.T) {
	h, router, db := testHandler(t)
	token, err := h.generateToken(7, "pharmacist")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rr := postSale(t, router, token, saleBody(1, 4))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var qty int64
	if err := db.Get(&qty, `SELECT quantity FROM drug_batch WHERE id = 1`); err != nil {
		t.Fatalf("load quantity: %v", err)
	}
	if qty != 6 {
		t.Fatalf("quantity = %d, want 6", qty)
	}

	var dispensedBy int64
	if err := db.Get(&dispensedBy, `SELECT dispensed_by FROM consumption LIMIT 1`); err != nil {
		t.Fatalf("load consumption: %v", err)
	}
	if dispensedBy != 7 {
		t.Fatalf("dispensed_by = %d, want actor from token", dispensedBy)
	}
}

func TestRecordSaleErrors(t *testing.T) {
	h, router, _ := testHandler(t)
	token, err := h.generateToken(7, "pharmacist")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"oversell", saleBody(1, 11), http.StatusConflict},
		{"zero quantity", saleBody(1, 0), http.StatusBadRequest},
		{"missing batch", saleBody(9999, 1), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postSale(t, router, token, tc.body)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestRecordSaleRequiresToken(t *testing.T) {
	_, router, _ := testHandler(t)
	rr := postSale(t, router, "", saleBody(1, 1))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestSalesHistoryEndpoint(t *testing.T) {
	h, router, _ := testHandler(t)
	token, err := h.generateToken(7, "pharmacist")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if rr := postSale(t, router, token, saleBody(1, 2)); rr.Code != http.StatusCreated {
		t.Fatalf("seed sale failed: %d %s", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var rows []saleHistoryRow
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("history rows = %d, want 1", len(rows))
	}
	if rows[0].Quantity != 2 || rows[0].DrugName != "Ibuprofen" {
		t.Fatalf("history row = %+v", rows[0])
	}
}

func TestStockEndpoints(t *testing.T) {
	h, router, _ := testHandler(t)
	token, err := h.generateToken(3, "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"drug_id":  1,
		"batch_no": "IBU-4",
		"quantity": 25,
	})
	req := httptest.NewRequest(http.MethodPost, "/stock/receipts", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("receipt status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}

	adjust, _ := json.Marshal(map[string]any{"quantity": 5})
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/stock/batches/%d/adjust", created.ID), bytes.NewReader(adjust))
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("adjust status = %d, body %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/stock", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("stock status = %d, body %s", rr.Code, rr.Body.String())
	}
	var rows []stockRow
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode stock: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("stock rows = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.BatchNo == "IBU-4" && row.Quantity != 30 {
			t.Fatalf("adjusted batch quantity = %d, want 30", row.Quantity)
		}
	}
}
