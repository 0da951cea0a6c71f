package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the inventory backend.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS roles (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT,
			role_id INTEGER NOT NULL REFERENCES roles(id),
			organization_id INTEGER,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			last_login TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS drugs (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			generic_name TEXT,
			code TEXT UNIQUE,
			unit TEXT NOT NULL,
			reorder_level INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS vendors (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			contact_person TEXT,
			contact_email TEXT,
			rating DOUBLE PRECISION DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS locations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			address TEXT,
			contact TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS patients (
			id SERIAL PRIMARY KEY,
			patient_code TEXT UNIQUE,
			full_name TEXT NOT NULL,
			gender TEXT DEFAULT 'Male',
			dob DATE,
			phone TEXT,
			email TEXT,
			address TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS purchase_orders (
			id SERIAL PRIMARY KEY,
			po_number TEXT NOT NULL,
			created_by INTEGER NOT NULL REFERENCES users(id),
			vendor_id INTEGER REFERENCES vendors(id),
			location_id INTEGER REFERENCES locations(id),
			status TEXT NOT NULL DEFAULT 'CREATED',
			total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			expected_delivery_date DATE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS drug_batch (
			id SERIAL PRIMARY KEY,
			drug_id INTEGER NOT NULL REFERENCES drugs(id),
			batch_no TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			manufacture_date DATE,
			expiry_date DATE,
			unit_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			location_id INTEGER REFERENCES locations(id),
			status TEXT NOT NULL DEFAULT 'available',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS consumption (
			id SERIAL PRIMARY KEY,
			drug_id INTEGER NOT NULL REFERENCES drugs(id),
			drug_batch_id INTEGER NOT NULL REFERENCES drug_batch(id),
			patient_id TEXT NOT NULL,
			patient_name TEXT,
			reason TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			dispensed_by INTEGER NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			location_id INTEGER NOT NULL REFERENCES locations(id)
		);`,
		`INSERT INTO roles (name) VALUES ('admin'), ('pharmacist'), ('storekeeper')
		 ON CONFLICT (name) DO NOTHING;`,
		`CREATE INDEX IF NOT EXISTS idx_drug_batch_drug ON drug_batch(drug_id);`,
		`CREATE INDEX IF NOT EXISTS idx_consumption_batch ON consumption(drug_batch_id);`,
		`CREATE INDEX IF NOT EXISTS idx_consumption_timestamp ON consumption(timestamp);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
