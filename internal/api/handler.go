package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"druginv/m/internal/dispense"
	"druginv/m/internal/ledger"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db        *sqlx.DB
	secret    string
	log       *zap.Logger
	ledger    *ledger.Store
	dispenser *dispense.Recorder
}

// New constructs a Handler.
func New(db *sqlx.DB, secret string, log *zap.Logger) *Handler {
	lg := ledger.NewStore(db)
	return &Handler{
		db:        db,
		secret:    secret,
		log:       log,
		ledger:    lg,
		dispenser: dispense.NewRecorder(db, lg, log),
	}
}

// Router wires up the HTTP API. Each route group replaces one screen of the
// old desktop app.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/roles", func(r chi.Router) {
			r.Get("/", h.listRoles)
			r.Post("/", h.createRole)
		})

		pr.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
		})

		pr.Route("/drugs", func(r chi.Router) {
			r.Get("/", h.listDrugs)
			r.Post("/", h.createDrug)
			r.Get("/{id}/batches", h.listDrugBatches)
		})

		pr.Route("/vendors", func(r chi.Router) {
			r.Get("/", h.listVendors)
			r.Post("/", h.createVendor)
		})

		pr.Route("/locations", func(r chi.Router) {
			r.Get("/", h.listLocations)
			r.Post("/", h.createLocation)
		})

		pr.Route("/patients", func(r chi.Router) {
			r.Get("/", h.listPatients)
			r.Post("/", h.createPatient)
			r.Put("/{id}", h.updatePatient)
			r.Delete("/{id}", h.deletePatient)
		})

		pr.Route("/purchase-orders", func(r chi.Router) {
			r.Get("/", h.listPurchaseOrders)
			r.Post("/", h.createPurchaseOrder)
		})

		pr.Route("/stock", func(r chi.Router) {
			r.Get("/", h.listStock)
			r.Post("/receipts", h.receiveStock)
			r.Post("/batches/{id}/adjust", h.adjustStock)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.recordSale)
			r.Get("/", h.salesHistory)
			r.Get("/daily", h.dailyDispense)
			r.Get("/monthly", h.monthlyDispense)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
