package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Becas Enrollment API",
        "description": "Admission-control API for the scholarship enrollment platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Enrollment", "description": "Admission workflow and availability checks"},
        {"name": "Applicants", "description": "Applicant records and decisions"},
        {"name": "Institutions", "description": "Platform tenants"}
    ],
    "paths": {
        "/enrollment/check/{dni}": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Check carrera availability for a DNI",
                "parameters": [
                    {"name": "dni", "in": "path", "required": true, "type": "string"},
                    {"name": "carrera_interes", "in": "query", "required": true, "type": "string"},
                    {"name": "institucion_slug", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment/submit": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Submit an enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown institution", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate or concurrent enrollment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment/subscribe": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Subscribe an email for enrollment news",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubscribeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already subscribed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment/status/{institucion_slug}": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Aggregate enrollment counts for one institution",
                "parameters": [
                    {"name": "institucion_slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment/stats": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Aggregate enrollment counts across all institutions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/estudiantes": {
            "post": {
                "tags": ["Applicants"],
                "summary": "Create an applicant record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/estudiantes/{id}": {
            "get": {
                "tags": ["Applicants"],
                "summary": "Get an applicant record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Applicants"],
                "summary": "Update an applicant record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateApplicantRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Applicants"],
                "summary": "Delete an applicant record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/estudiantes/institucion/{slug}": {
            "get": {
                "tags": ["Applicants"],
                "summary": "List an institution's applicants",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/estudiantes/institucion/{slug}/export": {
            "get": {
                "tags": ["Applicants"],
                "summary": "Export an institution's roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/instituciones": {
            "get": {
                "tags": ["Institutions"],
                "summary": "List institutions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Institutions"],
                "summary": "Register an institution",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstitutionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instituciones/{slug}": {
            "get": {
                "tags": ["Institutions"],
                "summary": "Get an institution",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Applicant": {
            "type": "object",
            "properties": {
                "id_postulante": {"type": "string"},
                "nombre": {"type": "string"},
                "apellido": {"type": "string"},
                "sexo": {"type": "string", "enum": ["masculino", "femenino"]},
                "dni": {"type": "string"},
                "mail": {"type": "string"},
                "departamento_interes": {"type": "string"},
                "carrera_interes": {"type": "string"},
                "fecha_interes": {"type": "string"},
                "fecha_entrevista": {"type": "string"},
                "estado": {"type": "string", "enum": ["INTERES", "ENTREVISTA", "ACEPTADO", "RECHAZADO"]},
                "documentos": {"$ref": "#/definitions/ApplicantDocuments"},
                "comite": {"$ref": "#/definitions/CommitteeDecision"},
                "fecha_resolucion": {"type": "string"},
                "institucion_slug": {"type": "string"}
            }
        },
        "ApplicantDocuments": {
            "type": "object",
            "properties": {
                "dni_img": {"type": "string"},
                "analitico_img": {"type": "string"}
            }
        },
        "CommitteeDecision": {
            "type": "object",
            "properties": {
                "comite_id": {"type": "string"},
                "fecha_revision": {"type": "string"},
                "decision": {"type": "string"},
                "comentarios": {"type": "string"}
            }
        },
        "SubmitEnrollmentRequest": {
            "type": "object",
            "properties": {
                "nombre": {"type": "string"},
                "apellido": {"type": "string"},
                "sexo": {"type": "string", "enum": ["masculino", "femenino"]},
                "dni": {"type": "string"},
                "mail": {"type": "string"},
                "departamento_interes": {"type": "string"},
                "carrera_interes": {"type": "string"},
                "institucion_slug": {"type": "string"},
                "documentos": {"$ref": "#/definitions/ApplicantDocuments"}
            },
            "required": ["nombre", "apellido", "sexo", "dni", "mail", "departamento_interes", "carrera_interes", "institucion_slug"]
        },
        "UpdateApplicantRequest": {
            "type": "object",
            "properties": {
                "nombre": {"type": "string"},
                "apellido": {"type": "string"},
                "mail": {"type": "string"},
                "fecha_entrevista": {"type": "string"},
                "estado": {"type": "string", "enum": ["INTERES", "ENTREVISTA", "ACEPTADO", "RECHAZADO"]},
                "documentos": {"$ref": "#/definitions/ApplicantDocuments"},
                "comite": {"$ref": "#/definitions/CommitteeDecision"}
            }
        },
        "SubscribeRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "institucion_slug": {"type": "string"}
            },
            "required": ["email", "institucion_slug"]
        },
        "CreateInstitutionRequest": {
            "type": "object",
            "properties": {
                "slug": {"type": "string"},
                "nombre": {"type": "string"}
            },
            "required": ["slug", "nombre"]
        },
        "InstitutionStats": {
            "type": "object",
            "properties": {
                "institucion_slug": {"type": "string"},
                "institucion_nombre": {"type": "string"},
                "total_enrollments": {"type": "integer"},
                "pending_enrollments": {"type": "integer"},
                "confirmed_enrollments": {"type": "integer"},
                "rejected_enrollments": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
