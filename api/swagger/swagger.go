package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Records API",
        "description": "CRUD, search and export for student records",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student record management"},
        {"name": "Health", "description": "Liveness and readiness probes"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/Envelope"}},
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List or search students",
                "description": "Newest first. Passing id returns a single student instead.",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer", "minimum": 1, "default": 1},
                    {"name": "per_page", "in": "query", "type": "integer", "minimum": 1, "maximum": 100, "default": 50},
                    {"name": "id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentListEnvelope"}},
                    "404": {"description": "No students found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "400": {"description": "Invalid JSON payload", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/Envelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export students",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "No students found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Replace student fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "400": {"description": "Invalid id or payload", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/Envelope"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentPayload": {
            "type": "object",
            "required": ["first_name", "last_name", "email"],
            "properties": {
                "id": {"type": "integer"},
                "first_name": {"type": "string", "maxLength": 100},
                "last_name": {"type": "string", "maxLength": 100},
                "email": {"type": "string", "format": "email", "maxLength": 100},
                "phone": {"type": "string", "maxLength": 20},
                "date_of_birth": {"type": "string", "format": "date"},
                "gender": {"type": "string", "enum": ["Male", "Female", "Other"]},
                "address": {"type": "string", "maxLength": 1000},
                "enrollment_date": {"type": "string", "format": "date"}
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string", "x-nullable": true},
                "date_of_birth": {"type": "string", "format": "date", "x-nullable": true},
                "gender": {"type": "string", "x-nullable": true},
                "address": {"type": "string", "x-nullable": true},
                "enrollment_date": {"type": "string", "format": "date", "x-nullable": true},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time", "x-nullable": true}
            }
        },
        "StudentList": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/Student"}}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "error": {"type": "string"}
            }
        },
        "StudentEnvelope": {
            "allOf": [
                {"$ref": "#/definitions/Envelope"},
                {"properties": {"data": {"$ref": "#/definitions/Student"}}}
            ]
        },
        "StudentListEnvelope": {
            "allOf": [
                {"$ref": "#/definitions/Envelope"},
                {"properties": {"data": {"$ref": "#/definitions/StudentList"}}}
            ]
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
