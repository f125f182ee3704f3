package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/becaslatam/becas-api/internal/models"
)

// archiveTable is partitioned by (institucion_slug, anio) and clustered by
// dni, so per-institution yearly sweeps stay single-partition reads.
const archiveTable = "estudiantes_becados"

// ArchiveNotifier writes final scholarship decisions to Cassandra.
type ArchiveNotifier struct {
	session *gocql.Session
}

// NewArchiveNotifier constructs the notifier over an established session.
func NewArchiveNotifier(session *gocql.Session) *ArchiveNotifier {
	return &ArchiveNotifier{session: session}
}

// RegisterFinalDecision inserts the archival row for a record reaching a
// terminal status for the first time.
func (a *ArchiveNotifier) RegisterFinalDecision(ctx context.Context, applicant *models.Applicant) error {
	resolved := time.Now().UTC()
	if applicant.FechaResolucion != nil {
		resolved = *applicant.FechaResolucion
	}

	documentos, err := marshalOptional(applicant.Documentos)
	if err != nil {
		return err
	}
	comite, err := marshalOptional(applicant.Comite)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s
        (institucion_slug, anio, dni, nombre, apellido, mail, carrera, departamento,
         estado, documentos, comite, fecha_interes, fecha_resolucion)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, archiveTable)

	return a.session.Query(query,
		applicant.InstitucionSlug,
		applicant.ArchiveYear(),
		applicant.DNI,
		applicant.Nombre,
		applicant.Apellido,
		applicant.Mail,
		applicant.CarreraInteres,
		applicant.DepartamentoInteres,
		string(applicant.Estado),
		documentos,
		comite,
		applicant.FechaInteres,
		resolved,
	).WithContext(ctx).Exec()
}

// UpdateFinalDecision patches an already-archived row in place. Only the
// fields present in the patch are touched.
func (a *ArchiveNotifier) UpdateFinalDecision(ctx context.Context, institucionSlug string, year int, dni string, patch ArchivePatch) error {
	assignments := make([]string, 0, 4)
	args := make([]interface{}, 0, 7)

	if patch.Mail != "" {
		assignments = append(assignments, "mail = ?")
		args = append(args, patch.Mail)
	}
	if patch.Documentos != nil {
		documentos, err := marshalOptional(patch.Documentos)
		if err != nil {
			return err
		}
		assignments = append(assignments, "documentos = ?")
		args = append(args, documentos)
	}
	if patch.Comite != nil {
		comite, err := marshalOptional(patch.Comite)
		if err != nil {
			return err
		}
		assignments = append(assignments, "comite = ?")
		args = append(args, comite)
	}
	if patch.Estado != "" {
		assignments = append(assignments, "estado = ?")
		args = append(args, string(patch.Estado))
	}
	if len(assignments) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE institucion_slug = ? AND anio = ? AND dni = ?`,
		archiveTable, strings.Join(assignments, ", "))
	args = append(args, institucionSlug, year, dni)

	return a.session.Query(query, args...).WithContext(ctx).Exec()
}

// marshalOptional renders a JSONB-style block as text for the archive, with
// nil pointers stored as NULL.
func marshalOptional(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case *models.ApplicantDocuments:
		if value == nil {
			return nil, nil
		}
	case *models.CommitteeDecision:
		if value == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal archive block: %w", err)
	}
	return string(data), nil
}
