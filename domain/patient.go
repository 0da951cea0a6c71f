package domain

import "time"

type Patient struct {
	ID          int64      `db:"id" json:"id"`
	PatientCode string     `db:"patient_code" json:"patient_code"`
	FullName    string     `db:"full_name" json:"full_name"`
	Gender      string     `db:"gender" json:"gender"`
	DOB         *time.Time `db:"dob" json:"dob,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	CreatedAt   string     `db:"created_at" json:"created_at"`
}
