package models

import "fmt"

// AvailabilityStatus describes what the coordinator knows about a key.
type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "AVAILABLE"
	AvailabilityReserved  AvailabilityStatus = "RESERVED"
	AvailabilityEnrolled  AvailabilityStatus = "ENROLLED"
)

// EnrollmentKey is the uniqueness scope for admissions: a national ID may be
// admitted into a given carrera at a given institution at most once.
type EnrollmentKey struct {
	DNI             string
	Carrera         string
	InstitucionSlug string
}

// MarkerKey is the permanent confirmation entry for the key.
func (k EnrollmentKey) MarkerKey() string {
	return fmt.Sprintf("enrollment:%s:%s:%s", k.DNI, k.Carrera, k.InstitucionSlug)
}

// ReservationKey is the TTL-bounded reservation entry for the key.
func (k EnrollmentKey) ReservationKey() string {
	return fmt.Sprintf("reservation:%s:%s:%s", k.DNI, k.Carrera, k.InstitucionSlug)
}

func (k EnrollmentKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.DNI, k.Carrera, k.InstitucionSlug)
}

// InstitutionStats aggregates enrollment counts for one institution.
type InstitutionStats struct {
	InstitucionSlug      string `json:"institucion_slug"`
	InstitucionNombre    string `json:"institucion_nombre,omitempty"`
	TotalEnrollments     int    `json:"total_enrollments"`
	PendingEnrollments   int    `json:"pending_enrollments"`
	ConfirmedEnrollments int    `json:"confirmed_enrollments"`
	RejectedEnrollments  int    `json:"rejected_enrollments"`
}
