package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/becaslatam/becas-api/internal/models"
)

// ApplicantRepository handles persistence of scholarship applicants.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository constructs the repository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

const applicantColumns = `id, nombre, apellido, sexo, dni, mail, departamento_interes, carrera_interes,
        fecha_interes, fecha_entrevista, estado, documentos, comite, fecha_resolucion, institucion_slug`

// Create persists a new applicant record.
func (r *ApplicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	if applicant.ID == "" {
		applicant.ID = uuid.NewString()
	}
	if applicant.FechaInteres.IsZero() {
		applicant.FechaInteres = time.Now().UTC()
	}
	if applicant.Estado == "" {
		applicant.Estado = models.StatusInteres
	}
	const query = `INSERT INTO postulantes (id, nombre, apellido, sexo, dni, mail, departamento_interes,
        carrera_interes, fecha_interes, fecha_entrevista, estado, documentos, comite, fecha_resolucion, institucion_slug)
        VALUES (:id, :nombre, :apellido, :sexo, :dni, :mail, :departamento_interes,
        :carrera_interes, :fecha_interes, :fecha_entrevista, :estado, :documentos, :comite, :fecha_resolucion, :institucion_slug)`
	if _, err := r.db.NamedExecContext(ctx, query, applicant); err != nil {
		return fmt.Errorf("create applicant: %w", err)
	}
	return nil
}

// FindByID returns an applicant by its ID.
func (r *ApplicantRepository) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	query := fmt.Sprintf(`SELECT %s FROM postulantes WHERE id = $1`, applicantColumns)
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, id); err != nil {
		return nil, err
	}
	return &applicant, nil
}

// Update persists the full applicant record.
func (r *ApplicantRepository) Update(ctx context.Context, applicant *models.Applicant) error {
	const query = `UPDATE postulantes SET nombre = :nombre, apellido = :apellido, sexo = :sexo, dni = :dni,
        mail = :mail, departamento_interes = :departamento_interes, carrera_interes = :carrera_interes,
        fecha_interes = :fecha_interes, fecha_entrevista = :fecha_entrevista, estado = :estado,
        documentos = :documentos, comite = :comite, fecha_resolucion = :fecha_resolucion,
        institucion_slug = :institucion_slug
        WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, applicant)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an applicant record.
func (r *ApplicantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM postulantes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete applicant: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByInstitution returns an institution's applicants, most recently
// resolved first.
func (r *ApplicantRepository) ListByInstitution(ctx context.Context, institucionSlug string) ([]models.Applicant, error) {
	query := fmt.Sprintf(`SELECT %s FROM postulantes WHERE institucion_slug = $1
        ORDER BY fecha_resolucion DESC NULLS LAST, fecha_interes DESC`, applicantColumns)
	var applicants []models.Applicant
	if err := r.db.SelectContext(ctx, &applicants, query, institucionSlug); err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return applicants, nil
}

// FindByDNI returns all records held by a DNI, optionally scoped to one
// institution.
func (r *ApplicantRepository) FindByDNI(ctx context.Context, dni, institucionSlug string) ([]models.Applicant, error) {
	query := fmt.Sprintf(`SELECT %s FROM postulantes WHERE dni = $1`, applicantColumns)
	args := []interface{}{dni}
	if institucionSlug != "" {
		query += " AND institucion_slug = $2"
		args = append(args, institucionSlug)
	}
	var applicants []models.Applicant
	if err := r.db.SelectContext(ctx, &applicants, query, args...); err != nil {
		return nil, fmt.Errorf("find applicants by dni: %w", err)
	}
	return applicants, nil
}

// ExistsRecord checks for a committed record occupying the enrollment key.
func (r *ApplicantRepository) ExistsRecord(ctx context.Context, key models.EnrollmentKey) (bool, error) {
	const query = `SELECT 1 FROM postulantes WHERE dni = $1 AND carrera_interes = $2 AND institucion_slug = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, key.DNI, key.Carrera, key.InstitucionSlug); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment record: %w", err)
	}
	return true, nil
}

// CarrerasFor enumerates the carreras a DNI holds records for, optionally
// scoped to one institution. This is the indexed enumeration path backing the
// coordinator.
func (r *ApplicantRepository) CarrerasFor(ctx context.Context, dni, institucionSlug string) ([]string, error) {
	query := `SELECT carrera_interes FROM postulantes WHERE dni = $1`
	args := []interface{}{dni}
	if institucionSlug != "" {
		query += " AND institucion_slug = $2"
		args = append(args, institucionSlug)
	}
	var carreras []string
	if err := r.db.SelectContext(ctx, &carreras, query, args...); err != nil {
		return nil, fmt.Errorf("list carreras for dni: %w", err)
	}
	return carreras, nil
}

// StatsByInstitution aggregates applicant counts by lifecycle status.
func (r *ApplicantRepository) StatsByInstitution(ctx context.Context, institucionSlug string) (*models.InstitutionStats, error) {
	const query = `SELECT estado, COUNT(*) AS count FROM postulantes WHERE institucion_slug = $1 GROUP BY estado`
	rows, err := r.db.QueryxContext(ctx, query, institucionSlug)
	if err != nil {
		return nil, fmt.Errorf("aggregate applicant stats: %w", err)
	}
	defer rows.Close()

	stats := &models.InstitutionStats{InstitucionSlug: institucionSlug}
	for rows.Next() {
		var estado models.ApplicantStatus
		var count int
		if err := rows.Scan(&estado, &count); err != nil {
			return nil, fmt.Errorf("scan applicant stats: %w", err)
		}
		stats.TotalEnrollments += count
		switch estado {
		case models.StatusAceptado:
			stats.ConfirmedEnrollments += count
		case models.StatusRechazado:
			stats.RejectedEnrollments += count
		default:
			stats.PendingEnrollments += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate applicant stats: %w", err)
	}
	return stats, nil
}
