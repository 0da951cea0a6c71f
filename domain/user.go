package domain

import "time"

type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type User struct {
	ID             int64      `db:"id" json:"id"`
	Username       string     `db:"username" json:"username"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FullName       *string    `db:"full_name" json:"full_name,omitempty"`
	RoleID         int64      `db:"role_id" json:"role_id"`
	OrganizationID *int64     `db:"organization_id" json:"organization_id,omitempty"`
	CreatedAt      string     `db:"created_at" json:"created_at,omitempty"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
}
