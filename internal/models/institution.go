package models

import "time"

// Institution is a tenant of the platform, addressed by slug.
type Institution struct {
	ID        string    `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	Nombre    string    `db:"nombre" json:"nombre"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
