package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"druginv/m/domain"
)

var (
	emailRE = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	phoneRE = regexp.MustCompile(`^\+?\d{7,15}$`)
)

// validatePatientInputs mirrors the intake form rules: name is mandatory,
// phone/email/dob are optional but checked when present.
func validatePatientInputs(name, phone, email, dob string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return errors.New("full name is required (min 2 characters)")
	}
	if phone != "" && !phoneRE.MatchString(strings.TrimSpace(phone)) {
		return errors.New("phone must contain only digits (7-15 digits)")
	}
	if email != "" && !emailRE.MatchString(strings.TrimSpace(email)) {
		return errors.New("enter a valid email address")
	}
	if dob != "" {
		if _, err := time.Parse("2006-01-02", dob); err != nil {
			return errors.New("dob must be in YYYY-MM-DD format")
		}
	}
	return nil
}

func generatePatientCode(now time.Time) string {
	return "P" + now.Format("20060102150405")
}

type patientRequest struct {
	PatientCode string `json:"patient_code,omitempty"`
	FullName    string `json:"full_name"`
	Gender      string `json:"gender,omitempty"`
	DOB         string `json:"dob,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var patients []domain.Patient
	var err error
	if query == "" {
		err = h.db.Select(&patients,
			`SELECT id, patient_code, full_name, gender, dob, phone, email, address, created_at
			 FROM patients ORDER BY id DESC LIMIT 200`)
	} else {
		like := "%" + strings.ToLower(query) + "%"
		err = h.db.Select(&patients,
			`SELECT id, patient_code, full_name, gender, dob, phone, email, address, created_at
			 FROM patients
			 WHERE LOWER(full_name) LIKE $1 OR LOWER(patient_code) LIKE $1 OR COALESCE(phone, '') LIKE $1
			 ORDER BY id DESC LIMIT 200`, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list patients")
		return
	}
	respondJSON(w, http.StatusOK, patients)
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePatientInputs(req.FullName, req.Phone, req.Email, req.DOB); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	code := strings.TrimSpace(req.PatientCode)
	if code == "" {
		code = generatePatientCode(time.Now())
	}
	gender := req.Gender
	if gender == "" {
		gender = "Male"
	}
	var id int64
	err := h.db.QueryRowx(
		`INSERT INTO patients (patient_code, full_name, gender, dob, phone, email, address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		code, strings.TrimSpace(req.FullName), gender, nullIfEmpty(req.DOB),
		nullIfEmpty(req.Phone), nullIfEmpty(req.Email), nullIfEmpty(req.Address)).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "patient code must be unique")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create patient")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "patient_code": code})
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	var req patientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePatientInputs(req.FullName, req.Phone, req.Email, req.DOB); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PatientCode) == "" {
		respondError(w, http.StatusBadRequest, "patient_code is required")
		return
	}
	res, err := h.db.Exec(
		`UPDATE patients SET patient_code = $1, full_name = $2, gender = $3, dob = $4, phone = $5, email = $6, address = $7
		 WHERE id = $8`,
		strings.TrimSpace(req.PatientCode), strings.TrimSpace(req.FullName), req.Gender,
		nullIfEmpty(req.DOB), nullIfEmpty(req.Phone), nullIfEmpty(req.Email), nullIfEmpty(req.Address), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update patient")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "patient not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete patient")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "patient not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
