package domain

type Drug struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	GenericName  *string `db:"generic_name" json:"generic_name,omitempty"`
	Code         *string `db:"code" json:"code,omitempty"`
	Unit         string  `db:"unit" json:"unit"`
	ReorderLevel int64   `db:"reorder_level" json:"reorder_level"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
}
