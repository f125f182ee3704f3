package models

import "time"

// EmailSubscription is the lightweight pre-enrollment signup. It flips to
// converted once the same address completes a full submission.
type EmailSubscription struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	InstitucionSlug string    `db:"institucion_slug" json:"institucion_slug"`
	SubscribedAt    time.Time `db:"subscribed_at" json:"subscribed_at"`
	Converted       bool      `db:"converted" json:"converted_to_enrollment"`
}
