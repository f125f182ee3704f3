package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ApplicantStatus tracks the admission lifecycle of a scholarship application.
type ApplicantStatus string

// Lifecycle statuses. INTERES and ENTREVISTA are in-flight; ACEPTADO and
// RECHAZADO are terminal and stamp a resolution date.
const (
	StatusInteres    ApplicantStatus = "INTERES"
	StatusEntrevista ApplicantStatus = "ENTREVISTA"
	StatusAceptado   ApplicantStatus = "ACEPTADO"
	StatusRechazado  ApplicantStatus = "RECHAZADO"
)

// Valid reports whether the status is a known lifecycle state.
func (s ApplicantStatus) Valid() bool {
	switch s {
	case StatusInteres, StatusEntrevista, StatusAceptado, StatusRechazado:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s ApplicantStatus) Terminal() bool {
	return s == StatusAceptado || s == StatusRechazado
}

// CommitteeDecision is the review block attached once a committee rules on an
// application. Persisted as JSONB.
type CommitteeDecision struct {
	ComiteID      string     `json:"comite_id"`
	FechaRevision *time.Time `json:"fecha_revision,omitempty"`
	Decision      string     `json:"decision"`
	Comentarios   string     `json:"comentarios"`
}

// Value marshals the decision block to JSON for persistence.
func (d CommitteeDecision) Value() (driver.Value, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal committee decision: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the decision block.
func (d *CommitteeDecision) Scan(value interface{}) error {
	return scanJSON(value, d, "CommitteeDecision")
}

// ApplicantDocuments holds references to the uploaded identity paperwork.
// Persisted as JSONB.
type ApplicantDocuments struct {
	DNIImg       string `json:"dni_img"`
	AnaliticoImg string `json:"analitico_img"`
}

// Value marshals the document block to JSON for persistence.
func (d ApplicantDocuments) Value() (driver.Value, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal applicant documents: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the document block.
func (d *ApplicantDocuments) Scan(value interface{}) error {
	return scanJSON(value, d, "ApplicantDocuments")
}

// Applicant is the durable enrollment record. It is created exactly once per
// (dni, carrera_interes, institucion_slug) by the enrollment workflow and
// mutated afterwards only through status updates.
type Applicant struct {
	ID                  string              `db:"id" json:"id_postulante"`
	Nombre              string              `db:"nombre" json:"nombre"`
	Apellido            string              `db:"apellido" json:"apellido"`
	Sexo                string              `db:"sexo" json:"sexo"`
	DNI                 string              `db:"dni" json:"dni"`
	Mail                string              `db:"mail" json:"mail"`
	DepartamentoInteres string              `db:"departamento_interes" json:"departamento_interes"`
	CarreraInteres      string              `db:"carrera_interes" json:"carrera_interes"`
	FechaInteres        time.Time           `db:"fecha_interes" json:"fecha_interes"`
	FechaEntrevista     *time.Time          `db:"fecha_entrevista" json:"fecha_entrevista,omitempty"`
	Estado              ApplicantStatus     `db:"estado" json:"estado"`
	Documentos          *ApplicantDocuments `db:"documentos" json:"documentos,omitempty"`
	Comite              *CommitteeDecision  `db:"comite" json:"comite,omitempty"`
	FechaResolucion     *time.Time          `db:"fecha_resolucion" json:"fecha_resolucion,omitempty"`
	InstitucionSlug     string              `db:"institucion_slug" json:"institucion_slug"`
}

// Key returns the uniqueness scope this record occupies.
func (a *Applicant) Key() EnrollmentKey {
	return EnrollmentKey{DNI: a.DNI, Carrera: a.CarreraInteres, InstitucionSlug: a.InstitucionSlug}
}

// ArchiveYear is the partition year used by the scholarship archive:
// resolution date when the record is resolved, interest date otherwise.
func (a *Applicant) ArchiveYear() int {
	if a.FechaResolucion != nil {
		return a.FechaResolucion.Year()
	}
	return a.FechaInteres.Year()
}

func scanJSON(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
