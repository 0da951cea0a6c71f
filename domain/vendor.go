package domain

type Vendor struct {
	ID            int64   `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	ContactPerson *string `db:"contact_person" json:"contact_person,omitempty"`
	ContactEmail  *string `db:"contact_email" json:"contact_email,omitempty"`
	Rating        float64 `db:"rating" json:"rating"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
}
