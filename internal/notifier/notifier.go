// Package notifier propagates enrollment facts to the graph and archive
// stores. Every call is best-effort: failures are logged with context and
// never surface to the workflow that triggered them.
package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/becaslatam/becas-api/internal/models"
)

// EntityKind labels the graph node types the platform tracks.
type EntityKind string

const (
	KindEstudiante  EntityKind = "Estudiante"
	KindInstitucion EntityKind = "Institucion"
	KindCarrera     EntityKind = "Carrera"
)

// RelationOffers links an institution to a carrera it offers. Lifecycle
// statuses double as relation types between Estudiante and Carrera.
const RelationOffers = "OFRECE"

// GraphStore is the relationship-store contract.
type GraphStore interface {
	UpsertEntity(ctx context.Context, kind EntityKind, id string, attrs map[string]any) error
	UpsertRelationship(ctx context.Context, from, to EntityRef, relType string, attrs map[string]any) error
	ReplaceRelationship(ctx context.Context, from, to EntityRef, oldType, newType string) error
}

// EntityRef addresses a graph node by kind and key value.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

// ArchivePatch carries correction fields forwarded to the archive after a
// record already holds a final decision.
type ArchivePatch struct {
	Mail       string
	Documentos *models.ApplicantDocuments
	Comite     *models.CommitteeDecision
	Estado     models.ApplicantStatus
}

// ArchiveStore is the final-decision archive contract, partitioned by
// (institución, año, dni).
type ArchiveStore interface {
	RegisterFinalDecision(ctx context.Context, applicant *models.Applicant) error
	UpdateFinalDecision(ctx context.Context, institucionSlug string, year int, dni string, patch ArchivePatch) error
}

// Events is the single best-effort seam the workflows call after each durable
// transition. Either store may be nil when its sync is disabled.
type Events struct {
	graph   GraphStore
	archive ArchiveStore
	logger  *zap.Logger
}

// NewEvents constructs the seam.
func NewEvents(graph GraphStore, archive ArchiveStore, logger *zap.Logger) *Events {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Events{graph: graph, archive: archive, logger: logger}
}

// ApplicantEnrolled mirrors a freshly committed enrollment into the graph:
// student, institution and carrera nodes plus the status relation.
func (e *Events) ApplicantEnrolled(ctx context.Context, applicant *models.Applicant, institucionNombre string) {
	if e.graph == nil {
		return
	}
	log := e.logger.With(zap.String("dni", applicant.DNI), zap.String("carrera", applicant.CarreraInteres))

	if err := e.graph.UpsertEntity(ctx, KindEstudiante, applicant.DNI, map[string]any{
		"nombre":   applicant.Nombre,
		"apellido": applicant.Apellido,
	}); err != nil {
		log.Warn("graph sync failed for estudiante node", zap.Error(err))
		return
	}
	if err := e.graph.UpsertEntity(ctx, KindInstitucion, applicant.InstitucionSlug, map[string]any{
		"nombre": institucionNombre,
	}); err != nil {
		log.Warn("graph sync failed for institucion node", zap.Error(err))
		return
	}
	if err := e.graph.UpsertEntity(ctx, KindCarrera, applicant.CarreraInteres, map[string]any{
		"departamento": applicant.DepartamentoInteres,
	}); err != nil {
		log.Warn("graph sync failed for carrera node", zap.Error(err))
		return
	}
	if err := e.graph.UpsertRelationship(ctx,
		EntityRef{Kind: KindInstitucion, ID: applicant.InstitucionSlug},
		EntityRef{Kind: KindCarrera, ID: applicant.CarreraInteres},
		RelationOffers, nil); err != nil {
		log.Warn("graph sync failed for offers relation", zap.Error(err))
	}

	attrs := map[string]any{"fecha_inscripcion": applicant.FechaInteres}
	if applicant.FechaEntrevista != nil {
		attrs["fecha_entrevista"] = *applicant.FechaEntrevista
	}
	if err := e.graph.UpsertRelationship(ctx,
		EntityRef{Kind: KindEstudiante, ID: applicant.DNI},
		EntityRef{Kind: KindCarrera, ID: applicant.CarreraInteres},
		string(applicant.Estado), attrs); err != nil {
		log.Warn("graph sync failed for enrollment relation", zap.Error(err))
	}
}

// StatusChanged swaps the status relation between a student and a carrera.
func (e *Events) StatusChanged(ctx context.Context, applicant *models.Applicant, old models.ApplicantStatus) {
	if e.graph == nil {
		return
	}
	if err := e.graph.ReplaceRelationship(ctx,
		EntityRef{Kind: KindEstudiante, ID: applicant.DNI},
		EntityRef{Kind: KindCarrera, ID: applicant.CarreraInteres},
		string(old), string(applicant.Estado)); err != nil {
		e.logger.Warn("graph sync failed for status transition",
			zap.String("dni", applicant.DNI),
			zap.String("carrera", applicant.CarreraInteres),
			zap.String("from", string(old)),
			zap.String("to", string(applicant.Estado)),
			zap.Error(err))
	}
}

// DecisionFinalized registers a first-time terminal decision with the archive.
func (e *Events) DecisionFinalized(ctx context.Context, applicant *models.Applicant) {
	if e.archive == nil {
		return
	}
	if err := e.archive.RegisterFinalDecision(ctx, applicant); err != nil {
		e.logger.Warn("archive registration failed",
			zap.String("dni", applicant.DNI),
			zap.String("institucion", applicant.InstitucionSlug),
			zap.Error(err))
	}
}

// DecisionCorrected forwards post-decision corrections to the archive without
// re-registering the record.
func (e *Events) DecisionCorrected(ctx context.Context, applicant *models.Applicant, patch ArchivePatch) {
	if e.archive == nil {
		return
	}
	if err := e.archive.UpdateFinalDecision(ctx, applicant.InstitucionSlug, applicant.ArchiveYear(), applicant.DNI, patch); err != nil {
		e.logger.Warn("archive correction failed",
			zap.String("dni", applicant.DNI),
			zap.String("institucion", applicant.InstitucionSlug),
			zap.Error(err))
	}
}
