package api

import (
	"strings"
	"testing"
	"time"
)

func TestValidatePatientInputs(t *testing.T) {
	cases := []struct {
		name    string
		full    string
		phone   string
		email   string
		dob     string
		wantErr bool
	}{
		{"all valid", "Asha Rao", "+919876543210", "asha@example.com", "1990-04-12", false},
		{"optional fields empty", "Asha Rao", "", "", "", false},
		{"name too short", "A", "", "", "", true},
		{"phone with letters", "Asha Rao", "98x76543", "", "", true},
		{"phone too short", "Asha Rao", "12345", "", "", true},
		{"bad email", "Asha Rao", "", "not-an-email", "", true},
		{"bad dob", "Asha Rao", "", "", "12-04-1990", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePatientInputs(tc.full, tc.phone, tc.email, tc.dob)
			if (err != nil) != tc.wantErr {
				t.Fatalf("validatePatientInputs() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestGeneratePatientCode(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	code := generatePatientCode(now)
	if code != "P20250314092653" {
		t.Fatalf("generatePatientCode = %q", code)
	}
	if !strings.HasPrefix(code, "P") {
		t.Fatalf("code %q missing prefix", code)
	}
}
