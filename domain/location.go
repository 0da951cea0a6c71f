package domain

type Location struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Type    string  `db:"type" json:"type"`
	Address *string `db:"address" json:"address,omitempty"`
	Contact *string `db:"contact" json:"contact,omitempty"`
}
